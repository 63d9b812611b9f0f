// Copyright (C) 2025 veil-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later


// Package metrics exposes Prometheus instrumentation for the VEIL engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "veil"

// Registry is the process-wide registry all VEIL collectors attach to.
var Registry = prometheus.NewRegistry()

var (
	// AnnouncementsScanned counts announcements fed through the scanner.
	AnnouncementsScanned = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "announcements_total",
			Help:      "Total number of announcements scanned",
		},
	)

	// ViewTagMatches counts announcements passing the view-tag pre-filter.
	ViewTagMatches = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "view_tag_matches_total",
			Help:      "Total number of view-tag pre-filter matches",
		},
	)

	// PaymentsDiscovered counts announcements that survived the full
	// address equality check.
	PaymentsDiscovered = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "payments_discovered_total",
			Help:      "Total number of discovered stealth payments",
		},
	)

	// AnnouncementsPublished counts announcements sent to the chain.
	AnnouncementsPublished = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "announcements_published_total",
			Help:      "Total number of published announcements",
		},
	)

	// ScanDuration tracks wall time of whole scan batches.
	ScanDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scan_duration_seconds",
			Help:      "Scan batch duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to 3.2s
		},
	)
)
