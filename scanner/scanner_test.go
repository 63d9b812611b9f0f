package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veil-x-project/veil/announce"
	"github.com/veil-x-project/veil/crypto/stealth"
)

// fakeChain serves balances from a map keyed by the raw address bytes.
type fakeChain struct {
	balances map[string]uint64
	err      error
	calls    int
}

func (f *fakeChain) Balance(ctx context.Context, address []byte) (uint64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[string(address)], nil
}

func paymentFor(t *testing.T, keys *stealth.StealthKeys) *announce.Announcement {
	t.Helper()
	p, err := stealth.ComputeStealthAddress(keys.MetaAddress(), nil)
	require.NoError(t, err)
	return &announce.Announcement{
		EphemeralPubkey: p.EphemeralPubkey,
		ViewTag:         p.ViewTag,
		StealthAddress:  p.StealthAddress,
	}
}

func TestScan(t *testing.T) {
	mine, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	other, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)

	a1 := paymentFor(t, mine)
	a2 := paymentFor(t, other)
	a3 := paymentFor(t, mine)

	chain := &fakeChain{balances: map[string]uint64{
		string(a1.StealthAddress): 1_000_000,
		string(a3.StealthAddress): 250_000,
	}}

	s := New(mine, chain, WithParallelism(2))
	found, err := s.Scan(context.Background(), []*announce.Announcement{a1, a2, a3})
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Input order is preserved.
	assert.Equal(t, a1, found[0].Announcement)
	assert.Equal(t, uint64(1_000_000), found[0].Lamports)
	assert.Equal(t, a3, found[1].Announcement)
	assert.Equal(t, uint64(250_000), found[1].Lamports)

	// Each discovery carries a spendable keypair for its address.
	for _, d := range found {
		assert.Equal(t, d.Announcement.StealthAddress, d.Keypair.PublicKey)
		sig, err := d.Keypair.Sign([]byte("spend"))
		require.NoError(t, err)
		assert.NoError(t, stealth.Verify(d.Keypair.PublicKey, []byte("spend"), sig))
	}
}

func TestScanSilentNegatives(t *testing.T) {
	mine, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)

	genuine := paymentFor(t, mine)

	t.Run("WrongViewTag", func(t *testing.T) {
		bad := &announce.Announcement{
			EphemeralPubkey: genuine.EphemeralPubkey,
			ViewTag:         genuine.ViewTag + 1,
			StealthAddress:  genuine.StealthAddress,
		}
		found, err := New(mine, nil).Scan(context.Background(), []*announce.Announcement{bad})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	// A matching tag with a forged address must not be reported.
	t.Run("ForgedAddress", func(t *testing.T) {
		other, err := stealth.GenerateKeys(nil)
		require.NoError(t, err)
		bad := &announce.Announcement{
			EphemeralPubkey: genuine.EphemeralPubkey,
			ViewTag:         genuine.ViewTag,
			StealthAddress:  other.SpendingPubkey,
		}
		found, err := New(mine, nil).Scan(context.Background(), []*announce.Announcement{bad})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("UndecodableEphemeral", func(t *testing.T) {
		bad := &announce.Announcement{
			EphemeralPubkey: make([]byte, 32),
			ViewTag:         0,
			StealthAddress:  genuine.StealthAddress,
		}
		found, err := New(mine, nil).Scan(context.Background(), []*announce.Announcement{bad})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestScanBalanceErrorAborts(t *testing.T) {
	mine, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	ann := paymentFor(t, mine)

	chain := &fakeChain{err: errors.New("rpc unavailable")}
	_, err = New(mine, chain).Scan(context.Background(), []*announce.Announcement{ann})
	assert.Error(t, err)
}

func TestScanNilChainSkipsBalance(t *testing.T) {
	mine, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	ann := paymentFor(t, mine)

	found, err := New(mine, nil).Scan(context.Background(), []*announce.Announcement{ann})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Zero(t, found[0].Lamports)
}

func TestScanCancellation(t *testing.T) {
	mine, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	ann := paymentFor(t, mine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked := &fakeChain{err: context.Canceled}
	_, err = New(mine, blocked).Scan(ctx, []*announce.Announcement{ann})
	assert.Error(t, err)
}

func TestScanStore(t *testing.T) {
	mine, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)
	other, err := stealth.GenerateKeys(nil)
	require.NoError(t, err)

	store := announce.NewMemoryStore()
	ctx := context.Background()

	var wantAddrs [][]byte
	for i := 0; i < 7; i++ {
		var ann *announce.Announcement
		if i%2 == 0 {
			ann = paymentFor(t, mine)
			wantAddrs = append(wantAddrs, ann.StealthAddress)
		} else {
			ann = paymentFor(t, other)
		}
		require.NoError(t, store.Save(ctx, ann))
	}

	found, err := New(mine, nil).ScanStore(ctx, store, 3)
	require.NoError(t, err)
	require.Len(t, found, len(wantAddrs))
	for i, d := range found {
		assert.Equal(t, wantAddrs[i], d.Announcement.StealthAddress)
	}
}
