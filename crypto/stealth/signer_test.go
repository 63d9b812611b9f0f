package stealth

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	veilcrypto "github.com/veil-x-project/veil/crypto"
)

func deriveKeypair(t *testing.T) *Keypair {
	t.Helper()
	keys := mustKeys(t)
	p := mustPayment(t, keys)
	kp, err := DeriveStealthKeypair(keys.ViewingPrivkey, keys.SpendingPrivkey, p.EphemeralPubkey)
	require.NoError(t, err)
	return kp
}

// Signatures from the scalar-form signer must verify under the ordinary
// Ed25519 rule keyed by the derived public key.
func TestSignVerifiesUnderStandardEd25519(t *testing.T) {
	kp := deriveKeypair(t)

	message := make([]byte, 32)
	_, err := rand.Read(message)
	require.NoError(t, err)

	sig, err := kp.Sign(message)
	require.NoError(t, err)
	require.Len(t, sig, veilcrypto.SignatureSize)

	assert.True(t, ed25519.Verify(ed25519.PublicKey(kp.PublicKey), message, sig))
	assert.NoError(t, Verify(kp.PublicKey, message, sig))
}

func TestSignDeterministicNonce(t *testing.T) {
	kp := deriveKeypair(t)
	message := []byte("same message, same signature")

	a, err := kp.Sign(message)
	require.NoError(t, err)
	b, err := kp.Sign(message)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Distinct messages must never share a nonce, hence never share R.
	c, err := kp.Sign([]byte("a different message"))
	require.NoError(t, err)
	assert.NotEqual(t, a[:32], c[:32])
}

func TestSignRejectsBadInputs(t *testing.T) {
	kp := deriveKeypair(t)

	t.Run("ShortScalar", func(t *testing.T) {
		_, err := Sign(kp.Scalar[:16], kp.PublicKey, []byte("m"))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidScalar)
	})

	t.Run("NonCanonicalScalar", func(t *testing.T) {
		bad := make([]byte, 32)
		for i := range bad {
			bad[i] = 0xff
		}
		_, err := Sign(bad, kp.PublicKey, []byte("m"))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidScalar)
	})

	t.Run("ShortPublicKey", func(t *testing.T) {
		_, err := Sign(kp.Scalar, kp.PublicKey[:8], []byte("m"))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
	})
}

func TestVerifyRejectsTampering(t *testing.T) {
	kp := deriveKeypair(t)
	message := []byte("payment authorization")

	sig, err := kp.Sign(message)
	require.NoError(t, err)

	t.Run("FlippedMessage", func(t *testing.T) {
		assert.ErrorIs(t, Verify(kp.PublicKey, []byte("payment authorizatioN"), sig), veilcrypto.ErrInvalidSignature)
	})

	t.Run("FlippedSignature", func(t *testing.T) {
		bad := append([]byte(nil), sig...)
		bad[0] ^= 0x01
		assert.ErrorIs(t, Verify(kp.PublicKey, message, bad), veilcrypto.ErrInvalidSignature)
	})

	t.Run("WrongKey", func(t *testing.T) {
		other := deriveKeypair(t)
		assert.ErrorIs(t, Verify(other.PublicKey, message, sig), veilcrypto.ErrInvalidSignature)
	})
}
