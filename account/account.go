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


// Package account is the recipient-side façade over the stealth engine:
// one long-lived key bundle, its published meta-address, and the discovery
// and derivation operations a wallet needs.
package account

import (
	"io"

	"github.com/veil-x-project/veil/crypto/formats"
	"github.com/veil-x-project/veil/crypto/stealth"
)

// Account owns a recipient's stealth key bundle. Methods other than Close
// only read the bundle (the sealed-keystore and delegation exports also draw
// randomness); an Account is safe to share across goroutines until Close.
type Account struct {
	keys *stealth.StealthKeys
}

// Generate creates a fresh account. A nil rng uses the host RNG.
func Generate(rng io.Reader) (*Account, error) {
	keys, err := stealth.GenerateKeys(rng)
	if err != nil {
		return nil, err
	}
	return &Account{keys: keys}, nil
}

// New wraps an existing key bundle.
func New(keys *stealth.StealthKeys) *Account {
	return &Account{keys: keys}
}

// FromKeystore parses a plaintext keystore file.
func FromKeystore(data []byte) (*Account, error) {
	keys, err := formats.UnmarshalKeys(data)
	if err != nil {
		return nil, err
	}
	return &Account{keys: keys}, nil
}

// FromSealedKeystore opens an encrypted keystore file.
func FromSealedKeystore(data, passphrase []byte) (*Account, error) {
	keys, err := formats.OpenKeys(data, passphrase)
	if err != nil {
		return nil, err
	}
	return &Account{keys: keys}, nil
}

// Keys returns the underlying bundle. Callers borrow it; the account
// retains ownership.
func (a *Account) Keys() *stealth.StealthKeys {
	return a.keys
}

// MetaAddress returns the public meta-address pair.
func (a *Account) MetaAddress() *stealth.MetaAddress {
	return a.keys.MetaAddress()
}

// MetaAddressString returns the canonical st:sol: textual form.
func (a *Account) MetaAddressString() string {
	return formats.EncodeMetaAddress(a.keys.MetaAddress())
}

// CheckViewTag runs the constant-cost announcement pre-filter.
func (a *Account) CheckViewTag(ephemeralPub []byte, viewTag byte) bool {
	return stealth.CheckViewTag(a.keys.ViewingPrivkey, ephemeralPub, viewTag)
}

// ExpectedAddress recomputes the stealth address a payment with this
// ephemeral key would have landed at.
func (a *Account) ExpectedAddress(ephemeralPub []byte) ([]byte, error) {
	return stealth.ComputeExpectedAddress(a.keys.ViewingPrivkey, a.keys.SpendingPubkey, ephemeralPub)
}

// DeriveKeypair reconstructs the scalar-form signing key for a payment.
func (a *Account) DeriveKeypair(ephemeralPub []byte) (*stealth.Keypair, error) {
	return stealth.DeriveStealthKeypair(a.keys.ViewingPrivkey, a.keys.SpendingPrivkey, ephemeralPub)
}

// ExportKeystore renders the plaintext keystore JSON.
func (a *Account) ExportKeystore() ([]byte, error) {
	return formats.MarshalKeys(a.keys)
}

// ExportSealedKeystore renders the passphrase-encrypted keystore JSON.
func (a *Account) ExportSealedKeystore(passphrase []byte) ([]byte, error) {
	return formats.SealKeys(a.keys, passphrase)
}

// Delegate seals the viewing capability to a scanning service's X25519
// public key.
func (a *Account) Delegate(servicePub []byte) ([]byte, error) {
	return formats.SealDelegation(a.keys, servicePub)
}

// Close wipes the private seeds. The account must not be used afterwards.
func (a *Account) Close() {
	a.keys.Zeroize()
}
