package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/hypersdk/chain/chaintest"
	"github.com/stretchr/testify/require"

	"github.com/chokosabe/predictionamm/pda"
)

func testPool(t *testing.T) (pda.Address, *Pool) {
	accounts, err := pda.MarketAccounts(1)
	require.NoError(t, err)
	return accounts.YesPool, &Pool{
		Market: accounts.Market,
		Side:   pda.SideYes,
		LPMint: accounts.YesLPMint,
		FeeBps: 30,
		Bump:   accounts.YesBump,
	}
}

func TestPoolSize(t *testing.T) {
	require := require.New(t)
	require.Equal(108, PoolSize)

	_, p := testPool(t)
	b, err := p.Marshal()
	require.NoError(err)
	require.Len(b, PoolSize)
}

func TestSetGetPool(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	st := chaintest.NewInMemoryStore()
	addr, p := testPool(t)
	p.CollateralReserve = 1_000_000
	p.OutcomeReserve = 2_000_000
	p.TotalLPSupply = 1_414_213
	p.CollectedFees = 42

	require.NoError(SetPool(ctx, st, addr, p))
	got, err := GetPool(ctx, st, addr)
	require.NoError(err)
	require.Equal(p, got)
}

func TestPoolRejectsBrokenInvariants(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Pool)
	}{
		{"SharesWithoutReserves", func(p *Pool) { p.TotalLPSupply = 10 }},
		{"ReservesWithoutShares", func(p *Pool) { p.CollateralReserve = 10; p.OutcomeReserve = 10 }},
		{"OneReserveEmpty", func(p *Pool) { p.TotalLPSupply = 10; p.CollateralReserve = 10 }},
		{"FeeAtCeiling", func(p *Pool) { p.FeeBps = 10_000 }},
		{"UnknownSide", func(p *Pool) { p.Side = pda.Side(3) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, p := testPool(t)
			tc.mutate(p)
			_, err := p.Marshal()
			require.ErrorIs(t, err, ErrCorruptAccount)
		})
	}
}

func TestGetPoolKindMismatch(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	st := chaintest.NewInMemoryStore()
	marketAddr, m := testMarket(t)
	b, err := m.Marshal()
	require.NoError(err)
	require.NoError(st.Insert(ctx, PoolKey(marketAddr), b))

	_, err = GetPool(ctx, st, marketAddr)
	require.ErrorIs(err, ErrAccountKindMismatch)
}
