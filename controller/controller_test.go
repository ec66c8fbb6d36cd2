package controller

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain/chaintest"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/stretchr/testify/require"

	"github.com/chokosabe/predictionamm/asset"
)

func TestFeesUseCollateral(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()
	c := New()
	addr := codec.Address{0x01}

	require.NoError(c.AddBalance(ctx, addr, mu, 100))
	bal, err := c.GetBalance(ctx, addr, mu)
	require.NoError(err)
	require.Equal(uint64(100), bal)

	require.NoError(c.CanDeduct(ctx, addr, mu, 100))
	require.ErrorIs(c.CanDeduct(ctx, addr, mu, 101), asset.ErrInsufficientBalance)

	require.NoError(c.Deduct(ctx, addr, mu, 40))
	bal, err = asset.Balance(ctx, mu, asset.CollateralMint, addr)
	require.NoError(err)
	require.Equal(uint64(60), bal)
	supply, err := asset.Supply(ctx, mu, asset.CollateralMint)
	require.NoError(err)
	require.Equal(uint64(60), supply)

	require.ErrorIs(c.Deduct(ctx, addr, mu, 61), asset.ErrInsufficientBalance)
	require.NoError(c.Deduct(ctx, addr, mu, 0))

	sponsor := c.SponsorStateKeys(addr)
	require.Contains(sponsor, string(asset.BalanceKey(asset.CollateralMint, addr)))
	require.Contains(sponsor, string(asset.SupplyKey(asset.CollateralMint)))
}

func TestSponsorKeysAreSingleChunk(t *testing.T) {
	require := require.New(t)
	addr := codec.CreateAddress(0, ids.GenerateTestID())

	for k := range New().SponsorStateKeys(addr) {
		chunks, ok := keys.MaxChunks([]byte(k))
		require.True(ok)
		require.Equal(uint16(1), chunks)
		require.True(keys.VerifyValue([]byte(k), database.PackUInt64(1<<63)))
	}
}
