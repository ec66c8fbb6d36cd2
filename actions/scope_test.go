package actions

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	hkeys "github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"
	"github.com/stretchr/testify/require"

	"github.com/chokosabe/predictionamm/amm"
	"github.com/chokosabe/predictionamm/asset"
	"github.com/chokosabe/predictionamm/escrow"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	errOutOfScope      = errors.New("key not declared")
	errInvalidKeyValue = errors.New("invalid key or value")
)

// scopedStore applies the checks the runtime's transaction view makes on
// every access: the key is declared with enough permission, its chunk
// suffix is well formed, and a written value fits the suffix.
type scopedStore struct {
	parent state.Mutable
	scope  state.Keys
}

func (s *scopedStore) require(key []byte, need state.Permissions) error {
	have, ok := s.scope[string(key)]
	if !ok || have&need != need {
		return fmt.Errorf("%w: %x needs %d, has %d", errOutOfScope, key, need, have)
	}
	if _, ok := hkeys.MaxChunks(key); !ok {
		return fmt.Errorf("%w: %x has no chunk suffix", errInvalidKeyValue, key)
	}
	return nil
}

func (s *scopedStore) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if err := s.require(key, state.Read); err != nil {
		return nil, err
	}
	return s.parent.GetValue(ctx, key)
}

func (s *scopedStore) Insert(ctx context.Context, key []byte, value []byte) error {
	need := state.Write
	if _, err := s.parent.GetValue(ctx, key); errors.Is(err, database.ErrNotFound) {
		need = state.Allocate
	}
	if err := s.require(key, need); err != nil {
		return err
	}
	if !hkeys.VerifyValue(key, value) {
		return fmt.Errorf("%w: %d byte value under %x", errInvalidKeyValue, len(value), key)
	}
	return s.parent.Insert(ctx, key, value)
}

func (s *scopedStore) Remove(ctx context.Context, key []byte) error {
	if err := s.require(key, state.Write); err != nil {
		return err
	}
	return s.parent.Remove(ctx, key)
}

// scopedExec runs a under the keys it declares and returns its result.
func (e *env) scopedExec(a chain.Action, actor codec.Address, now int64, dst codec.Typed) {
	e.t.Helper()
	actionID := ids.GenerateTestID()
	scope := a.StateKeys(actor, actionID)

	var declared uint16
	for k := range scope {
		chunks, ok := hkeys.MaxChunks([]byte(k))
		require.True(e.t, ok)
		require.LessOrEqual(e.t, chunks, storage.MarketChunks)
		declared += chunks
	}
	// Every action touches at most one market and one pool record plus
	// single-chunk balances, which keeps storage billing small.
	require.LessOrEqual(e.t, declared, storage.MarketChunks+storage.PoolChunks*2+16)

	out, err := a.Execute(e.ctx, e.rules, &scopedStore{parent: e.mu, scope: scope}, now, actor, actionID)
	require.NoError(e.t, err, "%T", a)
	require.NoError(e.t, unmarshalTyped(out, a.GetTypeID(), dst))
}

func TestActionsStayInDeclaredScope(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)
	var (
		maker    = codec.CreateAddress(0, ids.GenerateTestID())
		lp       = codec.CreateAddress(0, ids.GenerateTestID())
		trader   = codec.CreateAddress(0, ids.GenerateTestID())
		resolver = codec.CreateAddress(0, ids.GenerateTestID())
	)
	require.NoError(asset.Mint(e.ctx, e.mu, asset.CollateralMint, lp, 10_000))
	require.NoError(asset.Mint(e.ctx, e.mu, asset.CollateralMint, trader, 10_000))

	im := e.initAction()
	im.Oracle = resolver
	e.scopedExec(im, maker, testNow, &InitializeMarketResult{})

	market := e.accounts.Market
	yesPool, _ := e.accounts.PoolFor(pda.SideYes)
	noPool, _ := e.accounts.PoolFor(pda.SideNo)

	e.scopedExec(&MintSet{MarketID: testMarketID, Market: market, Amount: 1_200}, lp, testNow, &MintSetResult{})
	e.scopedExec(&AddLiquidity{
		MarketID: testMarketID, Market: market, Side: pda.SideYes, Pool: yesPool,
		CollateralAmount: 1_000, OutcomeAmount: 1_000,
	}, lp, testNow, &AddLiquidityResult{})
	e.scopedExec(&AddLiquidity{
		MarketID: testMarketID, Market: market, Side: pda.SideNo, Pool: noPool,
		CollateralAmount: 500, OutcomeAmount: 500,
	}, lp, testNow, &AddLiquidityResult{})
	e.scopedExec(&MergeSet{MarketID: testMarketID, Market: market, Amount: 100}, lp, testNow, &MergeSetResult{})

	bought := &SwapResult{}
	e.scopedExec(e.swap(pda.SideYes, amm.CollateralToOutcome, 100, 1), trader, testNow, bought)
	require.Equal(uint64(90), bought.AmountOut)
	e.scopedExec(e.swap(pda.SideYes, amm.OutcomeToCollateral, 40, 1), trader, testNow, &SwapResult{})

	e.scopedExec(&RemoveLiquidity{
		MarketID: testMarketID, Market: market, Side: pda.SideNo, Pool: noPool, Shares: 100,
	}, lp, testNow, &RemoveLiquidityResult{})

	e.scopedExec(&Lock{MarketID: testMarketID, Market: market}, trader, testEndTime, &LockResult{})
	e.scopedExec(&Resolve{MarketID: testMarketID, Market: market, Result: storage.Result_Yes}, resolver, testResolveTime, &ResolveResult{})

	e.scopedExec(&Redeem{
		MarketID: testMarketID, Market: market, Side: pda.SideYes,
		Amount: e.balance(e.accounts.YesMint, trader),
	}, trader, testResolveTime, &RedeemResult{})
	for _, side := range []pda.Side{pda.SideYes, pda.SideNo} {
		pool, _ := e.accounts.PoolFor(side)
		e.scopedExec(&RedeemLiquidity{
			MarketID: testMarketID, Market: market, Side: side, Pool: pool,
			Shares: e.balance(e.accounts.LPMintFor(side), lp),
		}, lp, testResolveTime, &RedeemLiquidityResult{})
	}

	require.True(e.pool(pda.SideYes).IsEmpty())
	require.True(e.pool(pda.SideNo).IsEmpty())
	require.NoError(escrow.CheckVault(e.ctx, e.mu, e.market()))
}

func TestScopedStoreRejectsUndeclaredKeys(t *testing.T) {
	require := require.New(t)
	e := newMarketEnv(t)

	// Lock only declares the market, so a collateral move is out of scope.
	s := &scopedStore{parent: e.mu, scope: (&Lock{MarketID: testMarketID, Market: e.accounts.Market}).StateKeys(alice, ids.Empty)}
	err := asset.Transfer(e.ctx, s, asset.CollateralMint, alice, bob, 1)
	require.ErrorIs(err, errOutOfScope)

	// A key without room for its value is rejected on write.
	short := hkeys.EncodeChunks([]byte{0x7f}, 1)
	s = &scopedStore{parent: e.mu, scope: state.Keys{string(short): state.All}}
	require.ErrorIs(s.Insert(e.ctx, short, make([]byte, 65)), errInvalidKeyValue)
}
