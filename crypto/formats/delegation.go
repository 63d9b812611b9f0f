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


package formats

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/cloudflare/circl/hpke"
	"github.com/mr-tron/base58"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/curve"
	"github.com/veil-x-project/veil/crypto/stealth"
)

// Delegation hands a scanning service what it needs to discover payments
// and nothing more: the viewing seed and the public spending key. The
// spending seed never leaves the account holder.
type Delegation struct {
	ViewingPrivkey []byte
	SpendingPubkey []byte
}

// delegationPayload is the sealed JSON body.
type delegationPayload struct {
	ViewingPrivkey string `json:"viewingPrivkey"`
	SpendingPubkey string `json:"spendingPubkey"`
}

const delegationInfo = "veil/delegation v1"

func delegationSuite() hpke.Suite {
	return hpke.NewSuite(
		hpke.KEM_X25519_HKDF_SHA256,
		hpke.KDF_HKDF_SHA256,
		hpke.AEAD_ChaCha20Poly1305,
	)
}

// GenerateDelegateKeyPair creates the X25519 keypair a scanning service
// publishes to receive delegations. Both halves are raw 32-byte strings.
func GenerateDelegateKeyPair() (pub, priv []byte, err error) {
	scheme := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	pk, sk, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}
	pub, err = pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("hpke marshal pub: %w", err)
	}
	priv, err = sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("hpke marshal priv: %w", err)
	}
	return pub, priv, nil
}

// SealDelegation encrypts the viewing capability of keys to the service's
// X25519 public key. The packet is enc || ciphertext.
func SealDelegation(keys *stealth.StealthKeys, servicePub []byte) ([]byte, error) {
	plaintext, err := json.Marshal(&delegationPayload{
		ViewingPrivkey: base58.Encode(keys.ViewingPrivkey),
		SpendingPubkey: base58.Encode(keys.SpendingPubkey),
	})
	if err != nil {
		return nil, err
	}
	defer curve.Zeroize(plaintext)

	scheme := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	pk, err := scheme.UnmarshalBinaryPublicKey(servicePub)
	if err != nil {
		return nil, fmt.Errorf("hpke unmarshal pub: %w", err)
	}

	sender, err := delegationSuite().NewSender(pk, []byte(delegationInfo))
	if err != nil {
		return nil, fmt.Errorf("hpke new sender: %w", err)
	}
	enc, sealer, err := sender.Setup(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("hpke setup: %w", err)
	}

	ct, err := sealer.Seal(plaintext, []byte(delegationInfo))
	if err != nil {
		return nil, fmt.Errorf("hpke seal: %w", err)
	}

	return append(append([]byte{}, enc...), ct...), nil
}

// OpenDelegation decrypts a delegation packet with the service's X25519
// private key.
func OpenDelegation(packet, servicePriv []byte) (*Delegation, error) {
	const encLen = 32
	if len(packet) < encLen {
		return nil, fmt.Errorf("%w: packet too short: %d", veilcrypto.ErrInvalidEncoding, len(packet))
	}
	enc := packet[:encLen]
	ct := packet[encLen:]

	scheme := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	sk, err := scheme.UnmarshalBinaryPrivateKey(servicePriv)
	if err != nil {
		return nil, fmt.Errorf("hpke unmarshal priv: %w", err)
	}

	receiver, err := delegationSuite().NewReceiver(sk, []byte(delegationInfo))
	if err != nil {
		return nil, fmt.Errorf("hpke new receiver: %w", err)
	}
	opener, err := receiver.Setup(enc)
	if err != nil {
		return nil, fmt.Errorf("hpke receiver setup: %w", err)
	}

	plaintext, err := opener.Open(ct, []byte(delegationInfo))
	if err != nil {
		return nil, fmt.Errorf("hpke open: %w", err)
	}
	defer curve.Zeroize(plaintext)

	var payload delegationPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidEncoding, err)
	}

	viewing, err := base58.Decode(payload.ViewingPrivkey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad viewing key: %v", veilcrypto.ErrInvalidEncoding, err)
	}
	spending, err := base58.Decode(payload.SpendingPubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad spending key: %v", veilcrypto.ErrInvalidEncoding, err)
	}
	if len(viewing) != veilcrypto.SeedSize || len(spending) != veilcrypto.PublicKeySize {
		return nil, fmt.Errorf("%w: wrong key length", veilcrypto.ErrInvalidEncoding)
	}

	return &Delegation{ViewingPrivkey: viewing, SpendingPubkey: spending}, nil
}
