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


// Package payment is the sender-side façade: one Payment per transfer,
// computed eagerly from the recipient's meta-address.
package payment

import (
	"io"

	"github.com/google/uuid"

	"github.com/veil-x-project/veil/announce"
	"github.com/veil-x-project/veil/crypto/formats"
	"github.com/veil-x-project/veil/crypto/stealth"
)

// Payment holds everything a sender needs to fund one stealth transfer:
// the one-time address to pay, and the announcement making it
// discoverable. The ephemeral secret is already wiped by the time a
// Payment exists.
type Payment struct {
	// ID labels the payment in logs and sender-side bookkeeping. It never
	// appears on chain.
	ID string

	// Recipient is the meta-address this payment was computed for.
	Recipient *stealth.MetaAddress

	// StealthAddress is the one-time account to fund.
	StealthAddress []byte

	// EphemeralPubkey is the announced per-payment public key.
	EphemeralPubkey []byte

	// ViewTag is the recipient's scan pre-filter byte.
	ViewTag byte
}

// New computes a payment for a meta-address. A nil rng uses the host RNG.
func New(meta *stealth.MetaAddress, rng io.Reader) (*Payment, error) {
	p, err := stealth.ComputeStealthAddress(meta, rng)
	if err != nil {
		return nil, err
	}
	return &Payment{
		ID:              uuid.NewString(),
		Recipient:       meta,
		StealthAddress:  p.StealthAddress,
		EphemeralPubkey: p.EphemeralPubkey,
		ViewTag:         p.ViewTag,
	}, nil
}

// NewFromString computes a payment from the textual st:sol: meta-address.
func NewFromString(metaAddress string, rng io.Reader) (*Payment, error) {
	meta, err := formats.DecodeMetaAddress(metaAddress)
	if err != nil {
		return nil, err
	}
	return New(meta, rng)
}

// Announcement returns the public record to publish alongside the funding
// transaction.
func (p *Payment) Announcement() *announce.Announcement {
	return &announce.Announcement{
		EphemeralPubkey: p.EphemeralPubkey,
		ViewTag:         p.ViewTag,
		StealthAddress:  p.StealthAddress,
	}
}
