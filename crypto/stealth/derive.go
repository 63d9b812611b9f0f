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


package stealth

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"filippo.io/edwards25519"

	"github.com/veil-x-project/veil/crypto/curve"
)

// ComputeStealthAddress derives a one-time payment target for meta. A fresh
// ephemeral Ed25519 keypair is generated from rng (host RNG when nil) and
// its secret half is wiped before returning; retaining it would let the
// sender link this payment later, not spend it.
func ComputeStealthAddress(meta *MetaAddress, rng io.Reader) (*Payment, error) {
	if rng == nil {
		rng = rand.Reader
	}

	// Validate the spending key up front so a bad meta-address fails before
	// any ephemeral material exists.
	spendPoint, err := curve.DecodePoint(meta.SpendingPubkey)
	if err != nil {
		return nil, err
	}

	ephemeralPriv, ephemeralPub, err := newSeed(rng)
	if err != nil {
		return nil, err
	}
	defer curve.Zeroize(ephemeralPriv)

	tweak, viewTag, err := sharedTweak(ephemeralPriv, meta.ViewingPubkey)
	if err != nil {
		return nil, err
	}

	stealthPoint := new(edwards25519.Point).Add(
		spendPoint,
		new(edwards25519.Point).ScalarBaseMult(tweak),
	)

	return &Payment{
		StealthAddress:  stealthPoint.Bytes(),
		EphemeralPubkey: ephemeralPub,
		ViewTag:         viewTag,
	}, nil
}

// ComputeExpectedAddress is the receiver's recomputation of the sender's
// output. It needs only the viewing seed and the public spending key, so a
// delegated scanner can run it without spending capability.
func ComputeExpectedAddress(viewingPriv, spendingPub, ephemeralPub []byte) ([]byte, error) {
	spendPoint, err := curve.DecodePoint(spendingPub)
	if err != nil {
		return nil, err
	}

	tweak, _, err := sharedTweak(viewingPriv, ephemeralPub)
	if err != nil {
		return nil, err
	}

	stealthPoint := new(edwards25519.Point).Add(
		spendPoint,
		new(edwards25519.Point).ScalarBaseMult(tweak),
	)
	return stealthPoint.Bytes(), nil
}

// DeriveStealthKeypair reconstructs the scalar-form signing key for a
// payment: s = (clamped(spendingPriv) + tweak) mod L, with the public key
// recomputed as s·B. For any payment produced by ComputeStealthAddress the
// returned public key equals the announced stealth address byte for byte.
func DeriveStealthKeypair(viewingPriv, spendingPriv, ephemeralPub []byte) (*Keypair, error) {
	tweak, _, err := sharedTweak(viewingPriv, ephemeralPub)
	if err != nil {
		return nil, err
	}

	spendScalar, err := curve.ScalarFromSeed(spendingPriv)
	if err != nil {
		return nil, err
	}

	s := curve.AddScalars(spendScalar, tweak)
	pub := new(edwards25519.Point).ScalarBaseMult(s)

	return &Keypair{
		Scalar:    s.Bytes(),
		PublicKey: pub.Bytes(),
	}, nil
}

// CheckViewTag is the constant-cost announcement pre-filter. A match is
// necessary but not sufficient: about one unrelated announcement in 256
// passes, so a positive must be followed by ComputeExpectedAddress and an
// equality check. Any failure, including an undecodable ephemeral key, is a
// silent negative.
func CheckViewTag(viewingPriv, ephemeralPub []byte, viewTag byte) bool {
	_, tag, err := sharedTweak(viewingPriv, ephemeralPub)
	if err != nil {
		return false
	}
	return tag == viewTag
}

// sharedTweak runs the ECDH half of the derivation from either side: the
// seed is the local Ed25519 seed (ephemeral for the sender, viewing for the
// receiver), peerPub the remote Ed25519 public key. The tweak scalar is the
// big-endian reduction of SHA-256 of the shared secret; its first byte is
// the view tag.
func sharedTweak(seed, peerPub []byte) (*edwards25519.Scalar, byte, error) {
	peerMontgomery, err := curve.PublicKeyToMontgomery(peerPub)
	if err != nil {
		return nil, 0, err
	}

	xPriv := curve.SeedToX25519(seed)
	defer curve.Zeroize(xPriv)

	ss, err := curve.X25519(xPriv, peerMontgomery)
	if err != nil {
		return nil, 0, err
	}
	defer curve.Zeroize(ss)

	tweak := sha256.Sum256(ss)
	defer curve.Zeroize(tweak[:])

	return curve.ScalarFromBigEndian(tweak), tweak[0], nil
}
