package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/stealth"
)

func TestMetaAddressCodec(t *testing.T) {
	keys, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	meta := keys.MetaAddress()

	t.Run("RoundTrip", func(t *testing.T) {
		s := EncodeMetaAddress(meta)
		assert.True(t, strings.HasPrefix(s, MetaAddressPrefix))

		decoded, err := DecodeMetaAddress(s)
		require.NoError(t, err)
		assert.Equal(t, meta.ViewingPubkey, decoded.ViewingPubkey)
		assert.Equal(t, meta.SpendingPubkey, decoded.SpendingPubkey)
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, EncodeMetaAddress(meta), EncodeMetaAddress(meta))
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, s := range []string{
			"invalid",
			"st:sol:",
			"st:eth:ABC",
			"st:sol:0OIl", // not in the Bitcoin alphabet
			"st:sol:abc",  // decodes, wrong length
			"",
		} {
			_, err := DecodeMetaAddress(s)
			assert.ErrorIs(t, err, veilcrypto.ErrInvalidEncoding, "input %q", s)
		}
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		s := EncodeMetaAddress(meta)
		upper := strings.ToUpper(s)
		if upper != s {
			_, err := DecodeMetaAddress(upper)
			assert.Error(t, err)
		}
	})
}
