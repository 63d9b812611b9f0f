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


// Package scanner walks announcement streams on behalf of a recipient:
// view-tag pre-filter, full address recomputation, balance lookup, and
// signing-key derivation for every match.
package scanner

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veil-x-project/veil/announce"
	"github.com/veil-x-project/veil/crypto/stealth"
	"github.com/veil-x-project/veil/internal/logger"
	"github.com/veil-x-project/veil/internal/metrics"
)

// BalanceReader is the narrow chain capability the scanner consumes. Calls
// must honor ctx cancellation.
type BalanceReader interface {
	Balance(ctx context.Context, address []byte) (uint64, error)
}

// Discovered is one payment found for the scanned recipient, including the
// signing capability for its one-time account.
type Discovered struct {
	Announcement *announce.Announcement
	Lamports     uint64
	Keypair      *stealth.Keypair
}

// Scanner applies a recipient's viewing capability over announcement
// batches. The zero parallelism defaults to 4 concurrent announcements.
type Scanner struct {
	keys        *stealth.StealthKeys
	chain       BalanceReader
	log         logger.Logger
	parallelism int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithParallelism bounds concurrent announcement processing.
func WithParallelism(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// New creates a scanner for a key bundle. chain may be nil, in which case
// discovered payments report a zero balance and no chain call is made.
func New(keys *stealth.StealthKeys, chain BalanceReader, opts ...Option) *Scanner {
	s := &Scanner{
		keys:        keys,
		chain:       chain,
		log:         logger.GetDefaultLogger().WithFields(logger.String("component", "scanner")),
		parallelism: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan filters a batch of announcements down to this recipient's payments.
// Announcements are processed concurrently; results come back in input
// order. View-tag misses, address mismatches, and undecodable ephemeral
// keys are silent negatives. Balance lookup errors abort the scan so a
// flaky RPC node cannot silently hide funds.
func (s *Scanner) Scan(ctx context.Context, anns []*announce.Announcement) ([]*Discovered, error) {
	start := time.Now()
	defer func() { metrics.ScanDuration.Observe(time.Since(start).Seconds()) }()

	type indexed struct {
		idx int
		d   *Discovered
	}

	var mu sync.Mutex
	var found []indexed

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, ann := range anns {
		g.Go(func() error {
			metrics.AnnouncementsScanned.Inc()

			d, err := s.inspect(ctx, ann)
			if err != nil {
				return err
			}
			if d == nil {
				return nil
			}
			mu.Lock()
			found = append(found, indexed{idx: i, d: d})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].idx < found[j].idx })
	out := make([]*Discovered, 0, len(found))
	for _, f := range found {
		out = append(out, f.d)
	}

	s.log.Info("scan finished",
		logger.Int("announcements", len(anns)),
		logger.Int("discovered", len(out)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// ScanStore pages through a persistent announcement store.
func (s *Scanner) ScanStore(ctx context.Context, store announce.Store, batchSize int) ([]*Discovered, error) {
	if batchSize <= 0 {
		batchSize = 256
	}

	var out []*Discovered
	for offset := 0; ; offset += batchSize {
		batch, err := store.List(ctx, offset, batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return out, nil
		}
		found, err := s.Scan(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
}

// inspect runs the per-announcement pipeline. A nil result with nil error
// is a negative.
func (s *Scanner) inspect(ctx context.Context, ann *announce.Announcement) (*Discovered, error) {
	if !stealth.CheckViewTag(s.keys.ViewingPrivkey, ann.EphemeralPubkey, ann.ViewTag) {
		return nil, nil
	}
	metrics.ViewTagMatches.Inc()

	// A tag match is a 1-in-256 event for unrelated traffic; only the full
	// recomputation proves the announcement is ours.
	expected, err := stealth.ComputeExpectedAddress(s.keys.ViewingPrivkey, s.keys.SpendingPubkey, ann.EphemeralPubkey)
	if err != nil {
		return nil, nil
	}
	if !bytes.Equal(expected, ann.StealthAddress) {
		return nil, nil
	}

	var lamports uint64
	if s.chain != nil {
		lamports, err = s.chain.Balance(ctx, ann.StealthAddress)
		if err != nil {
			return nil, err
		}
	}

	kp, err := stealth.DeriveStealthKeypair(s.keys.ViewingPrivkey, s.keys.SpendingPrivkey, ann.EphemeralPubkey)
	if err != nil {
		return nil, err
	}

	metrics.PaymentsDiscovered.Inc()
	return &Discovered{
		Announcement: ann,
		Lamports:     lamports,
		Keypair:      kp,
	}, nil
}
