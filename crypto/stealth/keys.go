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


// Package stealth implements the stealth-address derivation for Ed25519
// account chains: an additive tweak on the recipient's spending key, with
// the shared secret agreed over X25519 between a per-payment ephemeral key
// and the recipient's viewing key.
package stealth

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/curve"
)

// GenerateKeys draws two independent seeds from rng and computes their
// Ed25519 public keys. A nil rng uses the host cryptographic RNG; tests may
// inject a deterministic reader.
func GenerateKeys(rng io.Reader) (*StealthKeys, error) {
	if rng == nil {
		rng = rand.Reader
	}

	viewingPriv, viewingPub, err := newSeed(rng)
	if err != nil {
		return nil, err
	}
	spendingPriv, spendingPub, err := newSeed(rng)
	if err != nil {
		curve.Zeroize(viewingPriv)
		return nil, err
	}

	return &StealthKeys{
		ViewingPrivkey:  viewingPriv,
		SpendingPrivkey: spendingPriv,
		ViewingPubkey:   viewingPub,
		SpendingPubkey:  spendingPub,
	}, nil
}

func newSeed(rng io.Reader) (seed, pub []byte, err error) {
	seed = make([]byte, veilcrypto.SeedSize)
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return seed, priv.Public().(ed25519.PublicKey), nil
}
