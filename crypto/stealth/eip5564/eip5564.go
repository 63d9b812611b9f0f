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


// Package eip5564 is the secp256k1 profile of the additive-tweak stealth
// scheme, for EVM-style chains. It mirrors the Ed25519 engine's shape —
// viewing key for discovery, spending key for control, one-byte view tag —
// on the curve EIP-5564 targets. It shares no code with the Ed25519 path;
// everything curve-specific lives here.
package eip5564

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"

	veilcrypto "github.com/veil-x-project/veil/crypto"
)

// CompressedPubkeySize is the size of a compressed secp256k1 point.
const CompressedPubkeySize = 33

// MetaAddress is the recipient's published pair, both compressed
// secp256k1 points.
type MetaAddress struct {
	ViewingPubkey  []byte
	SpendingPubkey []byte
}

// Keys is the recipient's private bundle on secp256k1.
type Keys struct {
	ViewingPrivkey  []byte
	SpendingPrivkey []byte
	ViewingPubkey   []byte
	SpendingPubkey  []byte
}

// MetaAddress returns the public half of the bundle.
func (k *Keys) MetaAddress() *MetaAddress {
	return &MetaAddress{
		ViewingPubkey:  k.ViewingPubkey,
		SpendingPubkey: k.SpendingPubkey,
	}
}

// Payment is the sender-side output for one stealth payment.
type Payment struct {
	StealthPubkey   []byte
	EphemeralPubkey []byte
	ViewTag         byte
}

// GenerateKeys draws two independent secp256k1 private keys.
func GenerateKeys() (*Keys, error) {
	viewingPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}
	spendingPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}

	return &Keys{
		ViewingPrivkey:  viewingPriv.Serialize(),
		SpendingPrivkey: spendingPriv.Serialize(),
		ViewingPubkey:   viewingPriv.PubKey().SerializeCompressed(),
		SpendingPubkey:  spendingPriv.PubKey().SerializeCompressed(),
	}, nil
}

// ComputeStealthAddress derives a one-time key for meta: an ephemeral
// keypair, S = r·P_view, tweak = SHA-256(compress(S)), and
// P_stealth = P_spend + tweak·G.
func ComputeStealthAddress(meta *MetaAddress) (*Payment, error) {
	ephemeralPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}

	viewingPub, err := secp256k1.ParsePubKey(meta.ViewingPubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: viewing key: %v", veilcrypto.ErrInvalidPoint, err)
	}
	spendingPub, err := secp256k1.ParsePubKey(meta.SpendingPubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: spending key: %v", veilcrypto.ErrInvalidPoint, err)
	}

	tweak, viewTag := sharedTweak(&ephemeralPriv.Key, viewingPub)

	stealthPub := addTweakPoint(spendingPub, tweak)

	return &Payment{
		StealthPubkey:   stealthPub.SerializeCompressed(),
		EphemeralPubkey: ephemeralPriv.PubKey().SerializeCompressed(),
		ViewTag:         viewTag,
	}, nil
}

// DeriveStealthPrivateKey reconstructs the one-time private key:
// s = (s_spend + tweak) mod n with the tweak from s_view·R.
func DeriveStealthPrivateKey(keys *Keys, ephemeralPub []byte) ([]byte, error) {
	R, err := secp256k1.ParsePubKey(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", veilcrypto.ErrInvalidPoint, err)
	}

	viewingPriv := secp256k1.PrivKeyFromBytes(keys.ViewingPrivkey)
	tweak, _ := sharedTweak(&viewingPriv.Key, R)

	spendingPriv := secp256k1.PrivKeyFromBytes(keys.SpendingPrivkey)
	s := new(secp256k1.ModNScalar).Set(&spendingPriv.Key)
	s.Add(tweak)

	b := s.Bytes()
	return b[:], nil
}

// CheckStealthAddress verifies an announcement against the bundle: quick
// view-tag filter, then the full stealth key recomputation. Failures are
// silent negatives.
func CheckStealthAddress(keys *Keys, ephemeralPub []byte, viewTag byte, claimed []byte) bool {
	R, err := secp256k1.ParsePubKey(ephemeralPub)
	if err != nil {
		return false
	}

	viewingPriv := secp256k1.PrivKeyFromBytes(keys.ViewingPrivkey)
	tweak, tag := sharedTweak(&viewingPriv.Key, R)
	if tag != viewTag {
		return false
	}

	spendingPub, err := secp256k1.ParsePubKey(keys.SpendingPubkey)
	if err != nil {
		return false
	}
	expected := addTweakPoint(spendingPub, tweak)

	claimedPub, err := secp256k1.ParsePubKey(claimed)
	if err != nil {
		return false
	}
	return expected.IsEqual(claimedPub)
}

// EthereumAddress renders a secp256k1 public key as an EIP-55
// checksummed address: Keccak-256 of the uncompressed point minus its
// prefix, last 20 bytes.
func EthereumAddress(pub []byte) (string, error) {
	parsed, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", veilcrypto.ErrInvalidPoint, err)
	}

	uncompressed := parsed.SerializeUncompressed()
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(uncompressed[1:])
	addressHex := fmt.Sprintf("%x", hasher.Sum(nil)[12:])

	checksumHasher := sha3.NewLegacyKeccak256()
	checksumHasher.Write([]byte(addressHex))
	checksumHash := checksumHasher.Sum(nil)

	var out strings.Builder
	out.WriteString("0x")
	for i, c := range addressHex {
		if c >= 'a' && c <= 'f' && (checksumHash[i/2]>>(4*(1-uint(i%2))))&0x0f >= 8 {
			out.WriteByte(byte(c - 32))
		} else {
			out.WriteByte(byte(c))
		}
	}
	return out.String(), nil
}

// sharedTweak computes tweak and view tag from scalar·point: the ECDH
// output compressed, hashed with SHA-256, reduced mod n.
func sharedTweak(scalar *secp256k1.ModNScalar, point *secp256k1.PublicKey) (*secp256k1.ModNScalar, byte) {
	var pointJac, sharedJac secp256k1.JacobianPoint
	point.AsJacobian(&pointJac)
	secp256k1.ScalarMultNonConst(scalar, &pointJac, &sharedJac)
	sharedJac.ToAffine()

	shared := secp256k1.NewPublicKey(&sharedJac.X, &sharedJac.Y)
	digest := sha256.Sum256(shared.SerializeCompressed())

	tweak := new(secp256k1.ModNScalar)
	tweak.SetByteSlice(digest[:])
	return tweak, digest[0]
}

// addTweakPoint returns base + tweak·G in affine form.
func addTweakPoint(base *secp256k1.PublicKey, tweak *secp256k1.ModNScalar) *secp256k1.PublicKey {
	var tweakJac secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(tweak, &tweakJac)

	var baseJac, sumJac secp256k1.JacobianPoint
	base.AsJacobian(&baseJac)
	secp256k1.AddNonConst(&baseJac, &tweakJac, &sumJac)
	sumJac.ToAffine()

	return secp256k1.NewPublicKey(&sumJac.X, &sumJac.Y)
}
