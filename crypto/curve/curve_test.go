package curve

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/curve25519"

	veilcrypto "github.com/veil-x-project/veil/crypto"
)

// Canonical encoding of the identity point (y = 1).
var identityEncoding = append([]byte{0x01}, make([]byte, 31)...)

// Canonical encoding of the order-2 point (y = -1).
func orderTwoEncoding() []byte {
	b := make([]byte, 32)
	b[0] = 0xec
	for i := 1; i < 31; i++ {
		b[i] = 0xff
	}
	b[31] = 0x7f
	return b
}

func TestDecodePoint(t *testing.T) {
	t.Run("ValidPublicKey", func(t *testing.T) {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		p, err := DecodePoint(pub)
		require.NoError(t, err)
		assert.Equal(t, []byte(pub), p.Bytes())
	})

	t.Run("WrongLength", func(t *testing.T) {
		_, err := DecodePoint(make([]byte, 31))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
	})

	t.Run("Identity", func(t *testing.T) {
		_, err := DecodePoint(identityEncoding)
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
	})

	t.Run("SmallOrder", func(t *testing.T) {
		_, err := DecodePoint(orderTwoEncoding())
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
	})

	t.Run("NonCanonical", func(t *testing.T) {
		// y = p is not a canonical field element.
		b := orderTwoEncoding()
		b[0] = 0xed
		_, err := DecodePoint(b)
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidPoint)
	})
}

// The Edwards-to-Montgomery public key conversion must land on the same
// point X25519 reaches from the converted private scalar. This is the
// property the whole sender/receiver ECDH agreement rests on.
func TestBridgeConsistency(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	xPriv := SeedToX25519(priv.Seed())
	require.Len(t, xPriv, 32)

	fromScalar, err := curve25519.X25519(xPriv, curve25519.Basepoint)
	require.NoError(t, err)

	fromPoint, err := PublicKeyToMontgomery(pub)
	require.NoError(t, err)

	assert.Equal(t, fromScalar, fromPoint)
}

func TestX25519Agreement(t *testing.T) {
	aPub, aPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	bPub, bPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ax := SeedToX25519(aPriv.Seed())
	bx := SeedToX25519(bPriv.Seed())

	bxPub, err := PublicKeyToMontgomery(bPub)
	require.NoError(t, err)
	axPub, err := PublicKeyToMontgomery(aPub)
	require.NoError(t, err)

	s1, err := X25519(ax, bxPub)
	require.NoError(t, err)
	s2, err := X25519(bx, axPub)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Len(t, s1, veilcrypto.SharedSecretSize)
}

func TestScalarFromBigEndian(t *testing.T) {
	t.Run("One", func(t *testing.T) {
		var be [32]byte
		be[31] = 1

		p := new(edwards25519.Point).ScalarBaseMult(ScalarFromBigEndian(be))
		assert.Equal(t, edwards25519.NewGeneratorPoint().Bytes(), p.Bytes())
	})

	t.Run("GroupOrderReducesToZero", func(t *testing.T) {
		// L = 2^252 + 27742317777372353535851937790883648493, big-endian.
		be := [32]byte{
			0x10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0x14, 0xde, 0xf9, 0xde, 0xa2, 0xf7, 0x9c, 0xd6,
			0x58, 0x12, 0x63, 0x1a, 0x5c, 0xf5, 0xd3, 0xed,
		}

		s := ScalarFromBigEndian(be)
		assert.Equal(t, make([]byte, 32), s.Bytes())
	})

	t.Run("MatchesLittleEndianCanonical", func(t *testing.T) {
		var be [32]byte
		be[31] = 0x2a

		le := make([]byte, 32)
		le[0] = 0x2a
		canonical, err := ScalarFromCanonical(le)
		require.NoError(t, err)

		assert.Equal(t, canonical.Bytes(), ScalarFromBigEndian(be).Bytes())
	})
}

func TestScalarFromCanonical(t *testing.T) {
	t.Run("WrongLength", func(t *testing.T) {
		_, err := ScalarFromCanonical(make([]byte, 16))
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidScalar)
	})

	t.Run("NotReduced", func(t *testing.T) {
		b := make([]byte, 32)
		for i := range b {
			b[i] = 0xff
		}
		_, err := ScalarFromCanonical(b)
		assert.ErrorIs(t, err, veilcrypto.ErrInvalidScalar)
	})
}

func TestAddScalars(t *testing.T) {
	one := make([]byte, 32)
	one[0] = 1
	two := make([]byte, 32)
	two[0] = 2
	three := make([]byte, 32)
	three[0] = 3

	a, err := ScalarFromCanonical(one)
	require.NoError(t, err)
	b, err := ScalarFromCanonical(two)
	require.NoError(t, err)
	c, err := ScalarFromCanonical(three)
	require.NoError(t, err)

	sum := AddScalars(a, b)
	assert.Equal(t, c.Bytes(), sum.Bytes())

	left := new(edwards25519.Point).ScalarBaseMult(sum)
	right := new(edwards25519.Point).ScalarBaseMult(c)
	assert.Equal(t, right.Bytes(), left.Bytes())
}

func TestScalarFromSeed(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s, err := ScalarFromSeed(priv.Seed())
	require.NoError(t, err)

	// The clamped scalar times the basepoint is the Ed25519 public key.
	p := new(edwards25519.Point).ScalarBaseMult(s)
	assert.Equal(t, []byte(pub), p.Bytes())
}

func TestZeroize(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{4, 5}
	Zeroize(a, b)
	assert.Equal(t, []byte{0, 0, 0}, a)
	assert.Equal(t, []byte{0, 0}, b)
}
