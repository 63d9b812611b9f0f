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


// Package curve bridges the twisted-Edwards form of Curve25519 used by
// Ed25519 signing keys and the Montgomery form used by X25519 key agreement.
// It also centralizes the two scalar byte conventions the stealth derivation
// depends on: tweak scalars enter big-endian and are reduced mod L, while
// Ed25519 spending scalars are clamped little-endian SHA-512 output.
package curve

import (
	"bytes"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"

	veilcrypto "github.com/veil-x-project/veil/crypto"
)

// DecodePoint parses 32 bytes as a canonical compressed Ed25519 point.
// The identity and the small-order points are rejected: every public input
// to the derivation must generate the prime-order subgroup.
func DecodePoint(b []byte) (*edwards25519.Point, error) {
	if len(b) != veilcrypto.PublicKeySize {
		return nil, fmt.Errorf("%w: point must be %d bytes, got %d",
			veilcrypto.ErrInvalidPoint, veilcrypto.PublicKeySize, len(b))
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidPoint, err)
	}
	// SetBytes accepts unreduced y coordinates; re-encoding detects them.
	if !bytes.Equal(p.Bytes(), b) {
		return nil, fmt.Errorf("%w: non-canonical encoding", veilcrypto.ErrInvalidPoint)
	}
	// [8]P is the identity exactly for the identity and the seven other
	// torsion points.
	if new(edwards25519.Point).MultByCofactor(p).Equal(edwards25519.NewIdentityPoint()) == 1 {
		return nil, fmt.Errorf("%w: small-order point", veilcrypto.ErrInvalidPoint)
	}
	return p, nil
}

// PublicKeyToMontgomery converts a compressed Ed25519 public key to its
// X25519 form, u = (1+y)/(1-y) as 32 little-endian bytes.
func PublicKeyToMontgomery(pub []byte) ([]byte, error) {
	p, err := DecodePoint(pub)
	if err != nil {
		return nil, err
	}
	return p.BytesMontgomery(), nil
}

// SeedToX25519 derives the X25519 private scalar from an Ed25519 seed:
// SHA-512(seed)[0..32] with Curve25519 clamping. This is the same expansion
// RFC 8032 applies when producing the Ed25519 public key, so sender- and
// receiver-computed ECDH outputs agree.
//
// The caller owns the returned buffer and should wipe it after use.
func SeedToX25519(seed []byte) []byte {
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	x := make([]byte, 32)
	copy(x, h[:32])
	Zeroize(h[:])
	return x
}

// ScalarFromSeed expands an Ed25519 seed into its clamped signing scalar,
// little-endian per RFC 8032.
func ScalarFromSeed(seed []byte) (*edwards25519.Scalar, error) {
	h := sha512.Sum512(seed)
	defer Zeroize(h[:])
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidScalar, err)
	}
	return s, nil
}

// ScalarFromBigEndian interprets 32 bytes as a big-endian integer and
// reduces it mod L. The tweak derivation feeds SHA-256 output through here.
func ScalarFromBigEndian(b [32]byte) *edwards25519.Scalar {
	var wide [64]byte
	for i, v := range b {
		wide[31-i] = v
	}
	// SetUniformBytes only fails on a length mismatch.
	s, _ := edwards25519.NewScalar().SetUniformBytes(wide[:])
	Zeroize(wide[:])
	return s
}

// ScalarFromCanonical parses a 32-byte little-endian scalar already reduced
// mod L, as produced by Scalar.Bytes.
func ScalarFromCanonical(b []byte) (*edwards25519.Scalar, error) {
	if len(b) != veilcrypto.ScalarSize {
		return nil, fmt.Errorf("%w: scalar must be %d bytes, got %d",
			veilcrypto.ErrInvalidScalar, veilcrypto.ScalarSize, len(b))
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidScalar, err)
	}
	return s, nil
}

// AddScalars returns (a + b) mod L. edwards25519.Scalar arithmetic is
// constant-time.
func AddScalars(a, b *edwards25519.Scalar) *edwards25519.Scalar {
	return edwards25519.NewScalar().Add(a, b)
}

// X25519 performs the Montgomery-ladder scalar multiplication between a
// clamped private scalar and a peer's u-coordinate. The all-zero output of
// a low-order peer point is rejected.
func X25519(scalar, point []byte) ([]byte, error) {
	ss, err := curve25519.X25519(scalar, point)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidPoint, err)
	}
	return ss, nil
}
