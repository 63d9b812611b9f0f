package eip5564

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	veilcrypto "github.com/veil-x-project/veil/crypto"
)

func TestRoundTrip(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)

	p, err := ComputeStealthAddress(keys.MetaAddress())
	require.NoError(t, err)
	assert.Len(t, p.StealthPubkey, CompressedPubkeySize)
	assert.Len(t, p.EphemeralPubkey, CompressedPubkeySize)

	// The receiver accepts the announcement...
	assert.True(t, CheckStealthAddress(keys, p.EphemeralPubkey, p.ViewTag, p.StealthPubkey))

	// ...and the derived private key controls the announced point.
	priv, err := DeriveStealthPrivateKey(keys, p.EphemeralPubkey)
	require.NoError(t, err)
	derived := secp256k1.PrivKeyFromBytes(priv).PubKey().SerializeCompressed()
	assert.Equal(t, p.StealthPubkey, derived)
}

func TestCheckStealthAddressNegatives(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)
	other, err := GenerateKeys()
	require.NoError(t, err)

	p, err := ComputeStealthAddress(keys.MetaAddress())
	require.NoError(t, err)

	t.Run("WrongViewTag", func(t *testing.T) {
		assert.False(t, CheckStealthAddress(keys, p.EphemeralPubkey, p.ViewTag+1, p.StealthPubkey))
	})

	t.Run("WrongRecipient", func(t *testing.T) {
		assert.False(t, CheckStealthAddress(other, p.EphemeralPubkey, p.ViewTag, p.StealthPubkey))
	})

	t.Run("GarbageEphemeral", func(t *testing.T) {
		assert.False(t, CheckStealthAddress(keys, make([]byte, 33), p.ViewTag, p.StealthPubkey))
	})
}

func TestUnlinkability(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)

	a, err := ComputeStealthAddress(keys.MetaAddress())
	require.NoError(t, err)
	b, err := ComputeStealthAddress(keys.MetaAddress())
	require.NoError(t, err)

	assert.NotEqual(t, a.StealthPubkey, b.StealthPubkey)
	assert.NotEqual(t, a.EphemeralPubkey, b.EphemeralPubkey)
}

func TestComputeStealthAddressRejectsBadMeta(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)

	_, err = ComputeStealthAddress(&MetaAddress{
		ViewingPubkey:  make([]byte, 33),
		SpendingPubkey: keys.SpendingPubkey,
	})
	assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
}

func TestEthereumAddress(t *testing.T) {
	keys, err := GenerateKeys()
	require.NoError(t, err)

	addr, err := EthereumAddress(keys.SpendingPubkey)
	require.NoError(t, err)
	assert.Len(t, addr, 42)
	assert.Equal(t, "0x", addr[:2])

	// EIP-55: the checksum casing is stable.
	again, err := EthereumAddress(keys.SpendingPubkey)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	_, err = EthereumAddress([]byte{1, 2, 3})
	assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
}
