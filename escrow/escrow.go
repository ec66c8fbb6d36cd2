// Package escrow holds market collateral in the market's vault account.
package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/asset"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	ErrInsufficientFundsInEscrow = errors.New("insufficient funds in escrow")
	ErrVaultImbalance            = errors.New("vault balance does not match market liquidity")
)

// LockCollateral moves amount of collateral from actor into vault.
func LockCollateral(
	ctx context.Context,
	mu state.Mutable,
	vault pda.Address,
	actor codec.Address,
	amount uint64,
) error {
	if err := asset.Transfer(ctx, mu, asset.CollateralMint, actor, asset.OwnerOf(vault), amount); err != nil {
		return fmt.Errorf("failed to lock collateral from %s into vault %s: %w", actor, vault, err)
	}
	return nil
}

// UnlockCollateral pays amount of collateral out of vault to recipient.
func UnlockCollateral(
	ctx context.Context,
	mu state.Mutable,
	vault pda.Address,
	recipient codec.Address,
	amount uint64,
) error {
	held, err := VaultBalance(ctx, mu, vault)
	if err != nil {
		return err
	}
	if held < amount {
		return fmt.Errorf("%w: vault %s has %d, needs to unlock %d", ErrInsufficientFundsInEscrow, vault, held, amount)
	}
	if err := asset.Transfer(ctx, mu, asset.CollateralMint, asset.OwnerOf(vault), recipient, amount); err != nil {
		return fmt.Errorf("failed to unlock collateral from vault %s to %s: %w", vault, recipient, err)
	}
	return nil
}

// VaultBalance returns the collateral held by vault.
func VaultBalance(ctx context.Context, im state.Immutable, vault pda.Address) (uint64, error) {
	return asset.Balance(ctx, im, asset.CollateralMint, asset.OwnerOf(vault))
}

// CheckVault enforces market.TotalLiquidity == VaultBalance(market.Vault).
func CheckVault(ctx context.Context, im state.Immutable, m *storage.Market) error {
	held, err := VaultBalance(ctx, im, m.Vault)
	if err != nil {
		return err
	}
	if held != m.TotalLiquidity {
		return fmt.Errorf("%w: market %d records %d, vault holds %d", ErrVaultImbalance, m.ID, m.TotalLiquidity, held)
	}
	return nil
}
