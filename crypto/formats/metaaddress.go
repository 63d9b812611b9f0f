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


// Package formats implements the textual and persisted encodings around the
// stealth engine: the meta-address string, the keystore file, and the
// viewing-key delegation envelope.
package formats

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/stealth"
)

// MetaAddressPrefix marks a Solana stealth meta-address. The body is
// Base58 (Bitcoin alphabet) over viewingPubkey || spendingPubkey.
const MetaAddressPrefix = "st:sol:"

// EncodeMetaAddress renders a meta-address in its canonical textual form.
// Encoding is deterministic: one meta-address, one string.
func EncodeMetaAddress(meta *stealth.MetaAddress) string {
	payload := make([]byte, 0, veilcrypto.MetaAddressSize)
	payload = append(payload, meta.ViewingPubkey...)
	payload = append(payload, meta.SpendingPubkey...)
	return MetaAddressPrefix + base58.Encode(payload)
}

// DecodeMetaAddress parses the canonical textual form. It checks the
// prefix, the Base58 body and the 64-byte payload length, but not point
// validity; the derivation validates points when it uses them.
func DecodeMetaAddress(s string) (*stealth.MetaAddress, error) {
	if !strings.HasPrefix(s, MetaAddressPrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", veilcrypto.ErrInvalidEncoding, MetaAddressPrefix)
	}
	body := strings.TrimPrefix(s, MetaAddressPrefix)
	if body == "" {
		return nil, fmt.Errorf("%w: empty body", veilcrypto.ErrInvalidEncoding)
	}

	payload, err := base58.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidEncoding, err)
	}
	if len(payload) != veilcrypto.MetaAddressSize {
		return nil, fmt.Errorf("%w: payload must be %d bytes, got %d",
			veilcrypto.ErrInvalidEncoding, veilcrypto.MetaAddressSize, len(payload))
	}

	return &stealth.MetaAddress{
		ViewingPubkey:  payload[:veilcrypto.PublicKeySize],
		SpendingPubkey: payload[veilcrypto.PublicKeySize:],
	}, nil
}
