package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/asset"
	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/escrow"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/settlement"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	_ chain.Action = (*Redeem)(nil)
	_ chain.Action = (*RedeemLiquidity)(nil)
)

// Redeem burns Amount of Side's outcome token after resolution and pays
// the winnings from the vault.
type Redeem struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
	Side     pda.Side    `serialize:"true" json:"side"`
	Amount   uint64      `serialize:"true" json:"amount"`
}

func (*Redeem) GetTypeID() uint8 {
	return consts.RedeemID
}

func (r *Redeem) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	a, k, ok := marketKeys(r.MarketID)
	if !ok {
		return state.Keys{}
	}
	outcome := a.OutcomeMintFor(r.Side)
	return state.Keys(k.
		market(r.Market, state.Read|state.Write).
		collateral(a, actor).
		balance(outcome, actor).
		supply(outcome))
}

func (r *Redeem) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, r.MarketID, r.Market)
		if err != nil {
			return nil, err
		}
		payout, err := settlement.OutcomePayout(m, r.Side, r.Amount)
		if err != nil {
			return nil, err
		}
		if err := asset.Burn(ctx, b, m.MintFor(r.Side), actor, r.Amount); err != nil {
			return nil, err
		}
		if payout > 0 {
			if err := escrow.UnlockCollateral(ctx, b, m.Vault, actor, payout); err != nil {
				return nil, err
			}
			if err := subLiquidity(m, payout); err != nil {
				return nil, err
			}
		}
		if err := storeMarket(ctx, b, r.Market, m); err != nil {
			return nil, err
		}
		return &RedeemResult{Burned: r.Amount, Payout: payout}, nil
	})
}

func (*Redeem) ComputeUnits(chain.Rules) uint64 {
	return RedeemComputeUnits
}

func (*Redeem) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (r *Redeem) Bytes() []byte {
	return mustMarshal(r)
}

func UnmarshalRedeem(b []byte) (chain.Action, error) {
	r := &Redeem{}
	if err := unmarshalTyped(b, consts.RedeemID, r); err != nil {
		return nil, err
	}
	return r, nil
}

// RedeemLiquidity burns LP shares of Side's pool after resolution.
type RedeemLiquidity struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
	Side     pda.Side    `serialize:"true" json:"side"`
	Pool     pda.Address `serialize:"true" json:"pool"`
	Shares   uint64      `serialize:"true" json:"shares"`
}

func (*RedeemLiquidity) GetTypeID() uint8 {
	return consts.RedeemLiquidityID
}

func (rl *RedeemLiquidity) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return poolKeys(rl.MarketID, rl.Market, rl.Side, actor)
}

func (rl *RedeemLiquidity) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, rl.MarketID, rl.Market)
		if err != nil {
			return nil, err
		}
		pool, err := loadPool(ctx, b, rl.Market, m, rl.Side, rl.Pool)
		if err != nil {
			return nil, err
		}
		res, err := settlement.LiquidityPayout(m, *pool, rl.Shares)
		if err != nil {
			return nil, err
		}

		outcome := m.MintFor(rl.Side)
		poolAcc := asset.OwnerOf(rl.Pool)
		if err := asset.Burn(ctx, b, pool.LPMint, actor, rl.Shares); err != nil {
			return nil, err
		}
		if res.OutcomeBurned > 0 {
			if err := asset.Burn(ctx, b, outcome, poolAcc, res.OutcomeBurned); err != nil {
				return nil, err
			}
		}
		if res.OutcomeOut > 0 {
			if err := asset.Transfer(ctx, b, outcome, poolAcc, actor, res.OutcomeOut); err != nil {
				return nil, err
			}
		}
		if res.CollateralOut > 0 {
			if err := escrow.UnlockCollateral(ctx, b, m.Vault, actor, res.CollateralOut); err != nil {
				return nil, err
			}
			if err := subLiquidity(m, res.CollateralOut); err != nil {
				return nil, err
			}
		}
		if err := storage.SetPool(ctx, b, rl.Pool, &res.Pool); err != nil {
			return nil, err
		}
		if err := storeMarket(ctx, b, rl.Market, m); err != nil {
			return nil, err
		}
		return &RedeemLiquidityResult{
			Shares:        rl.Shares,
			Winning:       res.Winning,
			CollateralOut: res.CollateralOut,
			OutcomeOut:    res.OutcomeOut,
		}, nil
	})
}

func (*RedeemLiquidity) ComputeUnits(chain.Rules) uint64 {
	return RedeemLiquidityComputeUnits
}

func (*RedeemLiquidity) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (rl *RedeemLiquidity) Bytes() []byte {
	return mustMarshal(rl)
}

func UnmarshalRedeemLiquidity(b []byte) (chain.Action, error) {
	rl := &RedeemLiquidity{}
	if err := unmarshalTyped(b, consts.RedeemLiquidityID, rl); err != nil {
		return nil, err
	}
	return rl, nil
}

var (
	_ codec.Typed = (*RedeemResult)(nil)
	_ codec.Typed = (*RedeemLiquidityResult)(nil)
)

type RedeemResult struct {
	Burned uint64 `serialize:"true" json:"burned"`
	Payout uint64 `serialize:"true" json:"payout"`
}

func (*RedeemResult) GetTypeID() uint8 {
	return consts.RedeemID
}

type RedeemLiquidityResult struct {
	Shares        uint64 `serialize:"true" json:"shares"`
	Winning       bool   `serialize:"true" json:"winning"`
	CollateralOut uint64 `serialize:"true" json:"collateralOut"`
	OutcomeOut    uint64 `serialize:"true" json:"outcomeOut"`
}

func (*RedeemLiquidityResult) GetTypeID() uint8 {
	return consts.RedeemLiquidityID
}
