package stealth

import (
	"github.com/veil-x-project/veil/crypto/curve"
)

// MetaAddress is the long-lived public pair a recipient publishes once.
// Both fields are compressed Ed25519 points.
type MetaAddress struct {
	ViewingPubkey  []byte
	SpendingPubkey []byte
}

// StealthKeys is the recipient's private bundle: two independent Ed25519
// seeds and their public keys. The viewing seed may be handed to a scanning
// service; it confers discovery, not spending, capability.
type StealthKeys struct {
	ViewingPrivkey  []byte
	SpendingPrivkey []byte
	ViewingPubkey   []byte
	SpendingPubkey  []byte
}

// MetaAddress returns the public half of the bundle.
func (k *StealthKeys) MetaAddress() *MetaAddress {
	return &MetaAddress{
		ViewingPubkey:  k.ViewingPubkey,
		SpendingPubkey: k.SpendingPubkey,
	}
}

// Zeroize wipes the private seeds. The bundle must not be used afterwards.
func (k *StealthKeys) Zeroize() {
	curve.Zeroize(k.ViewingPrivkey, k.SpendingPrivkey)
}

// Payment is the sender-side output for one stealth payment.
type Payment struct {
	// StealthAddress is the one-time account, a compressed Ed25519 point.
	StealthAddress []byte

	// EphemeralPubkey is the public half of the per-payment keypair.
	EphemeralPubkey []byte

	// ViewTag is the first byte of SHA-256 of the shared secret.
	ViewTag byte
}

// Keypair is a derived stealth signing capability. Scalar is the canonical
// little-endian scalar mod L; no seed exists that would expand to it, so it
// must be used through Sign, never through seed-based Ed25519 APIs.
type Keypair struct {
	Scalar    []byte
	PublicKey []byte
}

// Zeroize wipes the private scalar.
func (kp *Keypair) Zeroize() {
	curve.Zeroize(kp.Scalar)
}
