package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/stealth"
)

func TestKeystore(t *testing.T) {
	keys, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)

	t.Run("PlaintextRoundTrip", func(t *testing.T) {
		data, err := MarshalKeys(keys)
		require.NoError(t, err)

		loaded, err := UnmarshalKeys(data)
		require.NoError(t, err)
		assert.Equal(t, keys.ViewingPrivkey, loaded.ViewingPrivkey)
		assert.Equal(t, keys.SpendingPrivkey, loaded.SpendingPrivkey)
		assert.Equal(t, keys.ViewingPubkey, loaded.ViewingPubkey)
		assert.Equal(t, keys.SpendingPubkey, loaded.SpendingPubkey)
	})

	t.Run("UnmarshalRejectsGarbage", func(t *testing.T) {
		_, err := UnmarshalKeys([]byte("not json"))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidEncoding)

		_, err = UnmarshalKeys([]byte(`{"viewingPrivkey":"abc"}`))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidEncoding)
	})

	t.Run("SealedRoundTrip", func(t *testing.T) {
		sealed, err := SealKeys(keys, []byte("correct horse"))
		require.NoError(t, err)

		loaded, err := OpenKeys(sealed, []byte("correct horse"))
		require.NoError(t, err)
		assert.Equal(t, keys.SpendingPrivkey, loaded.SpendingPrivkey)
	})

	t.Run("WrongPassphrase", func(t *testing.T) {
		sealed, err := SealKeys(keys, []byte("correct horse"))
		require.NoError(t, err)

		_, err = OpenKeys(sealed, []byte("battery staple"))
		assert.Error(t, err)
	})

	t.Run("TamperedEnvelope", func(t *testing.T) {
		sealed, err := SealKeys(keys, []byte("correct horse"))
		require.NoError(t, err)

		// Flip a byte inside the base64 ciphertext.
		bad := append([]byte(nil), sealed...)
		for i := len(bad) - 10; i > 0; i-- {
			if bad[i] == 'A' {
				bad[i] = 'B'
				break
			} else if bad[i] == 'B' {
				bad[i] = 'A'
				break
			}
		}
		if string(bad) != string(sealed) {
			_, err = OpenKeys(bad, []byte("correct horse"))
			assert.Error(t, err)
		}
	})

	t.Run("FreshSaltPerSeal", func(t *testing.T) {
		a, err := SealKeys(keys, []byte("pw"))
		require.NoError(t, err)
		b, err := SealKeys(keys, []byte("pw"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestDelegation(t *testing.T) {
	keys, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)

	pub, priv, err := GenerateDelegateKeyPair()
	require.NoError(t, err)
	require.Len(t, pub, 32)

	t.Run("RoundTrip", func(t *testing.T) {
		packet, err := SealDelegation(keys, pub)
		require.NoError(t, err)

		d, err := OpenDelegation(packet, priv)
		require.NoError(t, err)
		assert.Equal(t, keys.ViewingPrivkey, d.ViewingPrivkey)
		assert.Equal(t, keys.SpendingPubkey, d.SpendingPubkey)
	})

	t.Run("WrongServiceKey", func(t *testing.T) {
		packet, err := SealDelegation(keys, pub)
		require.NoError(t, err)

		_, otherPriv, err := GenerateDelegateKeyPair()
		require.NoError(t, err)

		_, err = OpenDelegation(packet, otherPriv)
		assert.Error(t, err)
	})

	t.Run("ShortPacket", func(t *testing.T) {
		_, err := OpenDelegation([]byte{1, 2, 3}, priv)
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidEncoding)
	})

	// The delegation can actually scan: the opened viewing capability
	// recomputes a payment's address without the spending seed.
	t.Run("DelegateCanDiscover", func(t *testing.T) {
		packet, err := SealDelegation(keys, pub)
		require.NoError(t, err)
		d, err := OpenDelegation(packet, priv)
		require.NoError(t, err)

		p, err := stealth.ComputeStealthAddress(keys.MetaAddress(), nil)
		require.NoError(t, err)

		assert.True(t, stealth.CheckViewTag(d.ViewingPrivkey, p.EphemeralPubkey, p.ViewTag))
		expected, err := stealth.ComputeExpectedAddress(d.ViewingPrivkey, d.SpendingPubkey, p.EphemeralPubkey)
		require.NoError(t, err)
		assert.Equal(t, p.StealthAddress, expected)
	})
}
