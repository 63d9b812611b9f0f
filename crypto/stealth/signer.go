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
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/curve"
)

// Sign produces a standard Ed25519 signature from a scalar-form private
// key. Derived stealth scalars are sums mod L, so no seed exists whose
// RFC 8032 expansion yields them; the seed-in APIs of crypto/ed25519 cannot
// sign for them. The nonce is deterministic without a seed: the prefix is
// the upper half of SHA-512 over the little-endian scalar bytes, giving
//
//	r = SHA-512(prefix || message) mod L
//	R = r·B
//	k = SHA-512(R || publicKey || message) mod L
//	S = (k·s + r) mod L
//
// which verifies under the ordinary Ed25519 rule and is indistinguishable
// from a seed-based signature to any verifier.
func Sign(scalar, publicKey, message []byte) ([]byte, error) {
	s, err := curve.ScalarFromCanonical(scalar)
	if err != nil {
		return nil, err
	}
	if len(publicKey) != veilcrypto.PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d",
			veilcrypto.ErrInvalidPoint, veilcrypto.PublicKeySize, len(publicKey))
	}

	prefix := sha512.Sum512(scalar)
	defer curve.Zeroize(prefix[:])

	rh := sha512.New()
	rh.Write(prefix[32:])
	rh.Write(message)
	rDigest := rh.Sum(nil)
	defer curve.Zeroize(rDigest)

	r, err := edwards25519.NewScalar().SetUniformBytes(rDigest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidScalar, err)
	}
	R := new(edwards25519.Point).ScalarBaseMult(r)

	kh := sha512.New()
	kh.Write(R.Bytes())
	kh.Write(publicKey)
	kh.Write(message)
	k, err := edwards25519.NewScalar().SetUniformBytes(kh.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidScalar, err)
	}

	S := edwards25519.NewScalar().MultiplyAdd(k, s, r)

	sig := make([]byte, 0, veilcrypto.SignatureSize)
	sig = append(sig, R.Bytes()...)
	sig = append(sig, S.Bytes()...)
	return sig, nil
}

// Sign signs a message with the derived keypair.
func (kp *Keypair) Sign(message []byte) ([]byte, error) {
	return Sign(kp.Scalar, kp.PublicKey, message)
}

// Verify checks a signature under the standard Ed25519 verification rule.
func Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize ||
		!ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return veilcrypto.ErrInvalidSignature
	}
	return nil
}
