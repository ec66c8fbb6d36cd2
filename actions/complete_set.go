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
	"github.com/chokosabe/predictionamm/lifecycle"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	_ chain.Action = (*MintSet)(nil)
	_ chain.Action = (*MergeSet)(nil)
)

// setKeys are the keys touched by minting or merging complete sets.
func setKeys(id uint64, market pda.Address, actor codec.Address) state.Keys {
	a, k, ok := marketKeys(id)
	if !ok {
		return state.Keys{}
	}
	return state.Keys(k.
		market(market, state.Read|state.Write).
		collateral(a, actor).
		balance(a.YesMint, actor).
		balance(a.NoMint, actor).
		supply(a.YesMint).
		supply(a.NoMint))
}

// MintSet locks Amount collateral and mints Amount YES and Amount NO.
type MintSet struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
	Amount   uint64      `serialize:"true" json:"amount"`
}

func (*MintSet) GetTypeID() uint8 {
	return consts.MintSetID
}

func (ms *MintSet) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return setKeys(ms.MarketID, ms.Market, actor)
}

func (ms *MintSet) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		if ms.Amount == 0 {
			return nil, ErrZeroAmount
		}
		m, err := loadMarket(ctx, b, ms.MarketID, ms.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.RequireTrading(m, timestamp); err != nil {
			return nil, err
		}
		if err := escrow.LockCollateral(ctx, b, m.Vault, actor, ms.Amount); err != nil {
			return nil, err
		}
		if err := asset.Mint(ctx, b, m.YesMint, actor, ms.Amount); err != nil {
			return nil, err
		}
		if err := asset.Mint(ctx, b, m.NoMint, actor, ms.Amount); err != nil {
			return nil, err
		}
		if err := addLiquidity(m, ms.Amount); err != nil {
			return nil, err
		}
		if err := storeMarket(ctx, b, ms.Market, m); err != nil {
			return nil, err
		}
		return &MintSetResult{Amount: ms.Amount, TotalLiquidity: m.TotalLiquidity}, nil
	})
}

func (*MintSet) ComputeUnits(chain.Rules) uint64 {
	return MintSetComputeUnits
}

func (*MintSet) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (ms *MintSet) Bytes() []byte {
	return mustMarshal(ms)
}

func UnmarshalMintSet(b []byte) (chain.Action, error) {
	ms := &MintSet{}
	if err := unmarshalTyped(b, consts.MintSetID, ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// MergeSet burns Amount YES and Amount NO and releases Amount collateral.
type MergeSet struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
	Amount   uint64      `serialize:"true" json:"amount"`
}

func (*MergeSet) GetTypeID() uint8 {
	return consts.MergeSetID
}

func (ms *MergeSet) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return setKeys(ms.MarketID, ms.Market, actor)
}

func (ms *MergeSet) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		if ms.Amount == 0 {
			return nil, ErrZeroAmount
		}
		m, err := loadMarket(ctx, b, ms.MarketID, ms.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.RequireTrading(m, timestamp); err != nil {
			return nil, err
		}
		if err := asset.Burn(ctx, b, m.YesMint, actor, ms.Amount); err != nil {
			return nil, err
		}
		if err := asset.Burn(ctx, b, m.NoMint, actor, ms.Amount); err != nil {
			return nil, err
		}
		if err := escrow.UnlockCollateral(ctx, b, m.Vault, actor, ms.Amount); err != nil {
			return nil, err
		}
		if err := subLiquidity(m, ms.Amount); err != nil {
			return nil, err
		}
		if err := storeMarket(ctx, b, ms.Market, m); err != nil {
			return nil, err
		}
		return &MergeSetResult{Amount: ms.Amount, TotalLiquidity: m.TotalLiquidity}, nil
	})
}

func (*MergeSet) ComputeUnits(chain.Rules) uint64 {
	return MergeSetComputeUnits
}

func (*MergeSet) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (ms *MergeSet) Bytes() []byte {
	return mustMarshal(ms)
}

func UnmarshalMergeSet(b []byte) (chain.Action, error) {
	ms := &MergeSet{}
	if err := unmarshalTyped(b, consts.MergeSetID, ms); err != nil {
		return nil, err
	}
	return ms, nil
}

var (
	_ codec.Typed = (*MintSetResult)(nil)
	_ codec.Typed = (*MergeSetResult)(nil)
)

type MintSetResult struct {
	Amount         uint64 `serialize:"true" json:"amount"`
	TotalLiquidity uint64 `serialize:"true" json:"totalLiquidity"`
}

func (*MintSetResult) GetTypeID() uint8 {
	return consts.MintSetID
}

type MergeSetResult struct {
	Amount         uint64 `serialize:"true" json:"amount"`
	TotalLiquidity uint64 `serialize:"true" json:"totalLiquidity"`
}

func (*MergeSetResult) GetTypeID() uint8 {
	return consts.MergeSetID
}
