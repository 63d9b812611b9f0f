package crypto

import "errors"

// Byte lengths of the fixed-size values exchanged between the engine's
// components. All keys and points travel as raw 32-byte strings.
const (
	// SeedSize is the size of an Ed25519 private seed.
	SeedSize = 32

	// PublicKeySize is the size of a compressed Ed25519 point.
	PublicKeySize = 32

	// ScalarSize is the size of a canonical little-endian scalar mod L.
	ScalarSize = 32

	// SharedSecretSize is the size of an X25519 ECDH output.
	SharedSecretSize = 32

	// SignatureSize is the size of an Ed25519 signature.
	SignatureSize = 64

	// MetaAddressSize is the size of a decoded meta-address payload:
	// viewing public key followed by spending public key.
	MetaAddressSize = 2 * PublicKeySize
)

// Common errors
var (
	ErrInvalidPoint        = errors.New("invalid edwards25519 point")
	ErrInvalidEncoding     = errors.New("invalid meta-address encoding")
	ErrInvalidAnnouncement = errors.New("not a stealth announcement")
	ErrInvalidScalar       = errors.New("invalid scalar")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRandomSource        = errors.New("random source failure")
)
