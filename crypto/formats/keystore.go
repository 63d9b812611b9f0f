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
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/curve"
	"github.com/veil-x-project/veil/crypto/stealth"
)

// keystoreFile is the plaintext persisted account format: the four key
// fields, each Base58.
type keystoreFile struct {
	ViewingPrivkey  string `json:"viewingPrivkey"`
	SpendingPrivkey string `json:"spendingPrivkey"`
	ViewingPubkey   string `json:"viewingPubkey"`
	SpendingPubkey  string `json:"spendingPubkey"`
}

// sealedKeystore wraps the plaintext keystore JSON in ChaCha20-Poly1305
// under an HKDF-SHA256 key, so an edited or corrupted file fails to open
// instead of loading silently wrong key material.
type sealedKeystore struct {
	Version int    `json:"v"`
	KDF     string `json:"kdf"`
	Salt    string `json:"salt"`
	Nonce   string `json:"nonce"`
	Data    string `json:"data"`
}

const sealedKeystoreVersion = 1

// MarshalKeys renders a key bundle as the plaintext keystore JSON.
func MarshalKeys(keys *stealth.StealthKeys) ([]byte, error) {
	return json.Marshal(&keystoreFile{
		ViewingPrivkey:  base58.Encode(keys.ViewingPrivkey),
		SpendingPrivkey: base58.Encode(keys.SpendingPrivkey),
		ViewingPubkey:   base58.Encode(keys.ViewingPubkey),
		SpendingPubkey:  base58.Encode(keys.SpendingPubkey),
	})
}

// UnmarshalKeys parses the plaintext keystore JSON and checks field sizes.
func UnmarshalKeys(data []byte) (*stealth.StealthKeys, error) {
	var file keystoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidEncoding, err)
	}

	keys := &stealth.StealthKeys{}
	for _, f := range []struct {
		name string
		src  string
		dst  *[]byte
		size int
	}{
		{"viewingPrivkey", file.ViewingPrivkey, &keys.ViewingPrivkey, veilcrypto.SeedSize},
		{"spendingPrivkey", file.SpendingPrivkey, &keys.SpendingPrivkey, veilcrypto.SeedSize},
		{"viewingPubkey", file.ViewingPubkey, &keys.ViewingPubkey, veilcrypto.PublicKeySize},
		{"spendingPubkey", file.SpendingPubkey, &keys.SpendingPubkey, veilcrypto.PublicKeySize},
	} {
		b, err := base58.Decode(f.src)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", veilcrypto.ErrInvalidEncoding, f.name, err)
		}
		if len(b) != f.size {
			return nil, fmt.Errorf("%w: field %s must be %d bytes, got %d",
				veilcrypto.ErrInvalidEncoding, f.name, f.size, len(b))
		}
		*f.dst = b
	}
	return keys, nil
}

// SealKeys encrypts the keystore under a passphrase. The output is a JSON
// envelope carrying the KDF salt and AEAD nonce alongside the ciphertext.
func SealKeys(keys *stealth.StealthKeys, passphrase []byte) ([]byte, error) {
	plaintext, err := MarshalKeys(keys)
	if err != nil {
		return nil, err
	}
	defer curve.Zeroize(plaintext)

	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}

	key, err := deriveKeystoreKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer curve.Zeroize(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrRandomSource, err)
	}

	ct := aead.Seal(nil, nonce, plaintext, salt)

	return json.Marshal(&sealedKeystore{
		Version: sealedKeystoreVersion,
		KDF:     "hkdf-sha256",
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Data:    base64.StdEncoding.EncodeToString(ct),
	})
}

// OpenKeys decrypts a sealed keystore. A wrong passphrase or a tampered
// envelope fails the AEAD open.
func OpenKeys(data, passphrase []byte) (*stealth.StealthKeys, error) {
	var env sealedKeystore
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", veilcrypto.ErrInvalidEncoding, err)
	}
	if env.Version != sealedKeystoreVersion {
		return nil, fmt.Errorf("%w: unsupported keystore version %d", veilcrypto.ErrInvalidEncoding, env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt: %v", veilcrypto.ErrInvalidEncoding, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce: %v", veilcrypto.ErrInvalidEncoding, err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext: %v", veilcrypto.ErrInvalidEncoding, err)
	}

	key, err := deriveKeystoreKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer curve.Zeroize(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ct, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}
	defer curve.Zeroize(plaintext)

	return UnmarshalKeys(plaintext)
}

// deriveKeystoreKey maps passphrase+salt to a 32-byte AEAD key with
// HKDF-SHA256.
func deriveKeystoreKey(passphrase, salt []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, passphrase, salt, []byte("veil/keystore v1"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}
