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

var _ chain.Action = (*Swap)(nil)

// Swap trades collateral against Side's outcome token in Side's pool.
type Swap struct {
	MarketID     uint64        `serialize:"true" json:"marketId"`
	Market       pda.Address   `serialize:"true" json:"market"`
	Side         pda.Side      `serialize:"true" json:"side"`
	Pool         pda.Address   `serialize:"true" json:"pool"`
	Direction    amm.Direction `serialize:"true" json:"direction"`
	AmountIn     uint64        `serialize:"true" json:"amountIn"`
	MinAmountOut uint64        `serialize:"true" json:"minAmountOut"`
}

func (*Swap) GetTypeID() uint8 {
	return consts.SwapID
}

func (s *Swap) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return poolKeys(s.MarketID, s.Market, s.Side, actor)
}

func (s *Swap) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, s.MarketID, s.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.RequireTrading(m, timestamp); err != nil {
			return nil, err
		}
		pool, err := loadPool(ctx, b, s.Market, m, s.Side, s.Pool)
		if err != nil {
			return nil, err
		}
		res, err := amm.Swap(*pool, s.Direction, s.AmountIn, s.MinAmountOut)
		if err != nil {
			return nil, err
		}

		var (
			outcome = m.MintFor(s.Side)
			poolAcc = asset.OwnerOf(s.Pool)
		)
		switch s.Direction {
		case amm.CollateralToOutcome:
			if err := escrow.LockCollateral(ctx, b, m.Vault, actor, res.AmountIn); err != nil {
				return nil, err
			}
			if err := asset.Transfer(ctx, b, outcome, poolAcc, actor, res.AmountOut); err != nil {
				return nil, err
			}
			err = addLiquidity(m, res.AmountIn)
		case amm.OutcomeToCollateral:
			if err := asset.Transfer(ctx, b, outcome, actor, poolAcc, res.AmountIn); err != nil {
				return nil, err
			}
			if err := escrow.UnlockCollateral(ctx, b, m.Vault, actor, res.AmountOut); err != nil {
				return nil, err
			}
			err = subLiquidity(m, res.AmountOut)
		default:
			err = fmt.Errorf("%w: %d", amm.ErrInvalidDirection, uint8(s.Direction))
		}
		if err != nil {
			return nil, err
		}
		if err := storage.SetPool(ctx, b, s.Pool, &res.Pool); err != nil {
			return nil, err
		}
		if err := storeMarket(ctx, b, s.Market, m); err != nil {
			return nil, err
		}
		return &SwapResult{
			AmountIn:          res.AmountIn,
			AmountOut:         res.AmountOut,
			Fee:               res.Fee,
			CollateralReserve: res.Pool.CollateralReserve,
			OutcomeReserve:    res.Pool.OutcomeReserve,
		}, nil
	})
}

func (*Swap) ComputeUnits(chain.Rules) uint64 {
	return SwapComputeUnits
}

func (*Swap) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (s *Swap) Bytes() []byte {
	return mustMarshal(s)
}

func UnmarshalSwap(b []byte) (chain.Action, error) {
	s := &Swap{}
	if err := unmarshalTyped(b, consts.SwapID, s); err != nil {
		return nil, err
	}
	return s, nil
}

var _ codec.Typed = (*SwapResult)(nil)

type SwapResult struct {
	AmountIn          uint64 `serialize:"true" json:"amountIn"`
	AmountOut         uint64 `serialize:"true" json:"amountOut"`
	Fee               uint64 `serialize:"true" json:"fee"`
	CollateralReserve uint64 `serialize:"true" json:"collateralReserve"`
	OutcomeReserve    uint64 `serialize:"true" json:"outcomeReserve"`
}

func (*SwapResult) GetTypeID() uint8 {
	return consts.SwapID
}
