package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veil-x-project/veil/announce"
	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/formats"
	"github.com/veil-x-project/veil/crypto/stealth"
)

func recipient(t *testing.T) *stealth.StealthKeys {
	t.Helper()
	keys, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	return keys
}

func TestNew(t *testing.T) {
	keys := recipient(t)

	p, err := New(keys.MetaAddress(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Len(t, p.StealthAddress, veilcrypto.PublicKeySize)
	assert.Len(t, p.EphemeralPubkey, veilcrypto.PublicKeySize)

	// The recipient can find and spend it.
	assert.True(t, stealth.CheckViewTag(keys.ViewingPrivkey, p.EphemeralPubkey, p.ViewTag))
	kp, err := stealth.DeriveStealthKeypair(keys.ViewingPrivkey, keys.SpendingPrivkey, p.EphemeralPubkey)
	require.NoError(t, err)
	assert.Equal(t, p.StealthAddress, kp.PublicKey)
}

func TestNewFromString(t *testing.T) {
	keys := recipient(t)
	s := formats.EncodeMetaAddress(keys.MetaAddress())

	p, err := NewFromString(s, nil)
	require.NoError(t, err)
	assert.True(t, stealth.CheckViewTag(keys.ViewingPrivkey, p.EphemeralPubkey, p.ViewTag))

	_, err = NewFromString("st:eth:ABC", nil)
	assert.ErrorIs(t, err, veilcrypto.ErrInvalidEncoding)
}

// S3: repeated payments to one recipient are unlinkable on chain.
func TestThreePaymentsThreeAddresses(t *testing.T) {
	keys := recipient(t)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		p, err := New(keys.MetaAddress(), nil)
		require.NoError(t, err)
		assert.False(t, seen[string(p.StealthAddress)])
		seen[string(p.StealthAddress)] = true
	}
}

// S4: the payment's announcement survives the wire byte-for-byte.
func TestAnnouncementRoundTrip(t *testing.T) {
	keys := recipient(t)
	p, err := New(keys.MetaAddress(), nil)
	require.NoError(t, err)

	ann := p.Announcement()
	data, err := ann.Marshal()
	require.NoError(t, err)

	decoded, err := announce.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, ann, decoded)

	again, err := decoded.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDistinctPaymentIDs(t *testing.T) {
	keys := recipient(t)
	a, err := New(keys.MetaAddress(), nil)
	require.NoError(t, err)
	b, err := New(keys.MetaAddress(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
