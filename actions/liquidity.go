package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/amm"
	"github.com/chokosabe/predictionamm/asset"
	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/escrow"
	"github.com/chokosabe/predictionamm/lifecycle"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	_ chain.Action = (*AddLiquidity)(nil)
	_ chain.Action = (*RemoveLiquidity)(nil)
)

// poolKeys are the keys touched by any action on one side's pool.
func poolKeys(id uint64, market pda.Address, side pda.Side, actor codec.Address) state.Keys {
	a, k, ok := marketKeys(id)
	if !ok {
		return state.Keys{}
	}
	pool, _ := a.PoolFor(side)
	outcome := a.OutcomeMintFor(side)
	lp := a.LPMintFor(side)
	return state.Keys(k.
		market(market, state.Read|state.Write).
		pool(pool, state.Read|state.Write).
		collateral(a, actor).
		balance(outcome, actor).
		balance(outcome, asset.OwnerOf(pool)).
		supply(outcome).
		balance(lp, actor).
		supply(lp))
}

// AddLiquidity deposits collateral and Side outcome tokens into Side's
// pool for LP shares.
type AddLiquidity struct {
	MarketID         uint64      `serialize:"true" json:"marketId"`
	Market           pda.Address `serialize:"true" json:"market"`
	Side             pda.Side    `serialize:"true" json:"side"`
	Pool             pda.Address `serialize:"true" json:"pool"`
	CollateralAmount uint64      `serialize:"true" json:"collateralAmount"`
	OutcomeAmount    uint64      `serialize:"true" json:"outcomeAmount"`
	MinShares        uint64      `serialize:"true" json:"minShares"`
}

func (*AddLiquidity) GetTypeID() uint8 {
	return consts.AddLiquidityID
}

func (al *AddLiquidity) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return poolKeys(al.MarketID, al.Market, al.Side, actor)
}

func (al *AddLiquidity) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, al.MarketID, al.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.RequireTrading(m, timestamp); err != nil {
			return nil, err
		}
		pool, err := loadPool(ctx, b, al.Market, m, al.Side, al.Pool)
		if err != nil {
			return nil, err
		}
		res, err := amm.AddLiquidity(*pool, al.CollateralAmount, al.OutcomeAmount)
		if err != nil {
			return nil, err
		}
		if res.Shares < al.MinShares {
			return nil, fmt.Errorf("%w: %d shares below minimum %d", amm.ErrSlippageExceeded, res.Shares, al.MinShares)
		}

		if err := escrow.LockCollateral(ctx, b, m.Vault, actor, res.CollateralUsed); err != nil {
			return nil, err
		}
		if err := asset.Transfer(ctx, b, m.MintFor(al.Side), actor, asset.OwnerOf(al.Pool), res.OutcomeUsed); err != nil {
			return nil, err
		}
		if err := asset.Mint(ctx, b, pool.LPMint, actor, res.Shares); err != nil {
			return nil, err
		}
		if err := addLiquidity(m, res.CollateralUsed); err != nil {
			return nil, err
		}
		if err := storage.SetPool(ctx, b, al.Pool, &res.Pool); err != nil {
			return nil, err
		}
		if err := storeMarket(ctx, b, al.Market, m); err != nil {
			return nil, err
		}
		return &AddLiquidityResult{
			Shares:            res.Shares,
			CollateralUsed:    res.CollateralUsed,
			OutcomeUsed:       res.OutcomeUsed,
			CollateralReserve: res.Pool.CollateralReserve,
			OutcomeReserve:    res.Pool.OutcomeReserve,
			TotalLPSupply:     res.Pool.TotalLPSupply,
		}, nil
	})
}

func (*AddLiquidity) ComputeUnits(chain.Rules) uint64 {
	return AddLiquidityComputeUnits
}

func (*AddLiquidity) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (al *AddLiquidity) Bytes() []byte {
	return mustMarshal(al)
}

func UnmarshalAddLiquidity(b []byte) (chain.Action, error) {
	al := &AddLiquidity{}
	if err := unmarshalTyped(b, consts.AddLiquidityID, al); err != nil {
		return nil, err
	}
	return al, nil
}

// RemoveLiquidity burns LP shares of Side's pool while the market trades.
type RemoveLiquidity struct {
	MarketID      uint64      `serialize:"true" json:"marketId"`
	Market        pda.Address `serialize:"true" json:"market"`
	Side          pda.Side    `serialize:"true" json:"side"`
	Pool          pda.Address `serialize:"true" json:"pool"`
	Shares        uint64      `serialize:"true" json:"shares"`
	MinCollateral uint64      `serialize:"true" json:"minCollateral"`
	MinOutcome    uint64      `serialize:"true" json:"minOutcome"`
}

func (*RemoveLiquidity) GetTypeID() uint8 {
	return consts.RemoveLiquidityID
}

func (rl *RemoveLiquidity) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return poolKeys(rl.MarketID, rl.Market, rl.Side, actor)
}

func (rl *RemoveLiquidity) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, rl.MarketID, rl.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.RequireTrading(m, timestamp); err != nil {
			return nil, err
		}
		pool, err := loadPool(ctx, b, rl.Market, m, rl.Side, rl.Pool)
		if err != nil {
			return nil, err
		}
		held, err := asset.Balance(ctx, b, pool.LPMint, actor)
		if err != nil {
			return nil, err
		}
		if held < rl.Shares {
			return nil, fmt.Errorf("%w: %s holds %d, burning %d", amm.ErrInsufficientShares, actor, held, rl.Shares)
		}
		res, err := amm.RemoveLiquidity(*pool, rl.Shares)
		if err != nil {
			return nil, err
		}
		if res.CollateralOut < rl.MinCollateral || res.OutcomeOut < rl.MinOutcome {
			return nil, fmt.Errorf("%w: received %d collateral and %d outcome, minimum %d and %d",
				amm.ErrSlippageExceeded, res.CollateralOut, res.OutcomeOut, rl.MinCollateral, rl.MinOutcome)
		}

		if err := asset.Burn(ctx, b, pool.LPMint, actor, rl.Shares); err != nil {
			return nil, err
		}
		if res.CollateralOut > 0 {
			if err := escrow.UnlockCollateral(ctx, b, m.Vault, actor, res.CollateralOut); err != nil {
				return nil, err
			}
		}
		if res.OutcomeOut > 0 {
			if err := asset.Transfer(ctx, b, m.MintFor(rl.Side), asset.OwnerOf(rl.Pool), actor, res.OutcomeOut); err != nil {
				return nil, err
			}
		}
		if err := subLiquidity(m, res.CollateralOut); err != nil {
			return nil, err
		}
		if err := storage.SetPool(ctx, b, rl.Pool, &res.Pool); err != nil {
			return nil, err
		}
		if err := storeMarket(ctx, b, rl.Market, m); err != nil {
			return nil, err
		}
		return &RemoveLiquidityResult{
			Shares:        rl.Shares,
			CollateralOut: res.CollateralOut,
			OutcomeOut:    res.OutcomeOut,
		}, nil
	})
}

func (*RemoveLiquidity) ComputeUnits(chain.Rules) uint64 {
	return RemoveLiquidityComputeUnits
}

func (*RemoveLiquidity) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (rl *RemoveLiquidity) Bytes() []byte {
	return mustMarshal(rl)
}

func UnmarshalRemoveLiquidity(b []byte) (chain.Action, error) {
	rl := &RemoveLiquidity{}
	if err := unmarshalTyped(b, consts.RemoveLiquidityID, rl); err != nil {
		return nil, err
	}
	return rl, nil
}

var (
	_ codec.Typed = (*AddLiquidityResult)(nil)
	_ codec.Typed = (*RemoveLiquidityResult)(nil)
)

type AddLiquidityResult struct {
	Shares            uint64 `serialize:"true" json:"shares"`
	CollateralUsed    uint64 `serialize:"true" json:"collateralUsed"`
	OutcomeUsed       uint64 `serialize:"true" json:"outcomeUsed"`
	CollateralReserve uint64 `serialize:"true" json:"collateralReserve"`
	OutcomeReserve    uint64 `serialize:"true" json:"outcomeReserve"`
	TotalLPSupply     uint64 `serialize:"true" json:"totalLpSupply"`
}

func (*AddLiquidityResult) GetTypeID() uint8 {
	return consts.AddLiquidityID
}

type RemoveLiquidityResult struct {
	Shares        uint64 `serialize:"true" json:"shares"`
	CollateralOut uint64 `serialize:"true" json:"collateralOut"`
	OutcomeOut    uint64 `serialize:"true" json:"outcomeOut"`
}

func (*RemoveLiquidityResult) GetTypeID() uint8 {
	return consts.RemoveLiquidityID
}
