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


// Package announce defines the public payment announcement, its memo wire
// encoding, and announcement storage.
package announce

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	veilcrypto "github.com/veil-x-project/veil/crypto"
)

const (
	// FormatVersion is the wire version this package emits.
	FormatVersion = 1

	// TypeTag discriminates stealth announcements in mixed memo streams.
	TypeTag = "STEALTH"
)

// Announcement is the public record that lets a recipient discover a
// payment: the sender's ephemeral public key, the one-byte view tag, and
// the claimed stealth address. Immutable once emitted.
type Announcement struct {
	EphemeralPubkey []byte
	ViewTag         byte
	StealthAddress  []byte
}

// wireAnnouncement is the memo JSON shape. Field order is fixed so that
// re-encoding a decoded announcement is byte-identical.
type wireAnnouncement struct {
	Version int    `json:"v"`
	Type    string `json:"t"`
	E       string `json:"e"`
	VT      int    `json:"vt"`
	S       string `json:"s"`
}

// Marshal renders the announcement as its memo JSON.
func (a *Announcement) Marshal() ([]byte, error) {
	if len(a.EphemeralPubkey) != veilcrypto.PublicKeySize || len(a.StealthAddress) != veilcrypto.PublicKeySize {
		return nil, fmt.Errorf("%w: keys must be %d bytes", veilcrypto.ErrInvalidAnnouncement, veilcrypto.PublicKeySize)
	}
	return json.Marshal(&wireAnnouncement{
		Version: FormatVersion,
		Type:    TypeTag,
		E:       base58.Encode(a.EphemeralPubkey),
		VT:      int(a.ViewTag),
		S:       base58.Encode(a.StealthAddress),
	})
}

// Unmarshal parses a memo payload. It returns ErrInvalidAnnouncement for
// anything that is not a stealth announcement: non-JSON, a missing or
// different type tag, malformed Base58, or a view tag out of range.
// Unknown extra fields are ignored, and higher versions are accepted as
// long as the four named fields are present.
func Unmarshal(data []byte) (*Announcement, error) {
	var wire wireAnnouncement
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidAnnouncement, err)
	}
	if wire.Type != TypeTag {
		return nil, fmt.Errorf("%w: type %q", veilcrypto.ErrInvalidAnnouncement, wire.Type)
	}
	if wire.Version < FormatVersion {
		return nil, fmt.Errorf("%w: version %d", veilcrypto.ErrInvalidAnnouncement, wire.Version)
	}
	if wire.VT < 0 || wire.VT > 255 {
		return nil, fmt.Errorf("%w: view tag %d out of range", veilcrypto.ErrInvalidAnnouncement, wire.VT)
	}

	ephemeral, err := base58.Decode(wire.E)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", veilcrypto.ErrInvalidAnnouncement, err)
	}
	stealthAddr, err := base58.Decode(wire.S)
	if err != nil {
		return nil, fmt.Errorf("%w: stealth address: %v", veilcrypto.ErrInvalidAnnouncement, err)
	}
	if len(ephemeral) != veilcrypto.PublicKeySize || len(stealthAddr) != veilcrypto.PublicKeySize {
		return nil, fmt.Errorf("%w: keys must be %d bytes", veilcrypto.ErrInvalidAnnouncement, veilcrypto.PublicKeySize)
	}

	return &Announcement{
		EphemeralPubkey: ephemeral,
		ViewTag:         byte(wire.VT),
		StealthAddress:  stealthAddr,
	}, nil
}

// Decode is the scan-path variant of Unmarshal: a nil result is a soft
// negative, never an error, so mixed memo streams can be filtered without
// error handling at every record.
func Decode(data []byte) *Announcement {
	a, err := Unmarshal(data)
	if err != nil {
		return nil
	}
	return a
}
