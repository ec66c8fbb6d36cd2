package controller

import (
	"context"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/asset"
)

var _ chain.BalanceHandler = (*Controller)(nil)

// Controller charges transaction fees in the collateral mint. Fees are
// burned, so collateral supply shrinks with every transaction.
type Controller struct{}

func New() *Controller {
	return &Controller{}
}

func (*Controller) SponsorStateKeys(addr codec.Address) state.Keys {
	return state.Keys{
		string(asset.BalanceKey(asset.CollateralMint, addr)): state.Read | state.Write,
		string(asset.SupplyKey(asset.CollateralMint)):        state.Read | state.Write,
	}
}

func (*Controller) CanDeduct(ctx context.Context, addr codec.Address, im state.Immutable, amount uint64) error {
	bal, err := asset.Balance(ctx, im, asset.CollateralMint, addr)
	if err != nil {
		return err
	}
	if bal < amount {
		return asset.ErrInsufficientBalance
	}
	return nil
}

func (*Controller) Deduct(ctx context.Context, addr codec.Address, mu state.Mutable, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return asset.Burn(ctx, mu, asset.CollateralMint, addr, amount)
}

func (*Controller) AddBalance(ctx context.Context, addr codec.Address, mu state.Mutable, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return asset.Mint(ctx, mu, asset.CollateralMint, addr, amount)
}

func (*Controller) GetBalance(ctx context.Context, addr codec.Address, im state.Immutable) (uint64, error) {
	return asset.Balance(ctx, im, asset.CollateralMint, addr)
}
