// Package asset is the token ledger shared by every mint in the program:
// collateral, YES and NO outcome tokens, and each pool's LP shares.
package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroAmount          = storage.ErrZeroAmount
	ErrSupplyOverflow      = errors.New("supply overflow")
)

// CollateralMint is the mint every market settles in.
var CollateralMint pda.Address

func init() {
	mint, _, err := pda.CollateralMint()
	if err != nil {
		panic(err)
	}
	CollateralMint = mint
}

// OwnerOf returns the ledger owner of a program account. Pools and vaults
// hold tokens under these addresses and nobody can sign for them.
func OwnerOf(account pda.Address) codec.Address {
	return codec.CreateAddress(consts.ProgramAccountTypeID, ids.ID(account))
}

// BalanceKey returns the state key of owner's balance of mint.
// Key format: BalancePrefix | mint | owner | chunks
func BalanceKey(mint pda.Address, owner codec.Address) []byte {
	key := make([]byte, 0, 1+pda.AddressLen+codec.AddressLen)
	key = append(key, storage.BalancePrefix)
	key = append(key, mint[:]...)
	key = append(key, owner[:]...)
	return keys.EncodeChunks(key, storage.Uint64Chunks)
}

// SupplyKey returns the state key of mint's outstanding supply.
// Key format: SupplyPrefix | mint | chunks
func SupplyKey(mint pda.Address) []byte {
	key := make([]byte, 1+pda.AddressLen)
	key[0] = storage.SupplyPrefix
	copy(key[1:], mint[:])
	return keys.EncodeChunks(key, storage.Uint64Chunks)
}

// Balance returns owner's balance of mint. A missing key is zero.
func Balance(ctx context.Context, im state.Immutable, mint pda.Address, owner codec.Address) (uint64, error) {
	v, err := readUint64(ctx, im, BalanceKey(mint, owner))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s balance of %s: %w", mint, owner, err)
	}
	return v, nil
}

// Supply returns the outstanding supply of mint.
func Supply(ctx context.Context, im state.Immutable, mint pda.Address) (uint64, error) {
	v, err := readUint64(ctx, im, SupplyKey(mint))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s supply: %w", mint, err)
	}
	return v, nil
}

// Mint creates amount of mint in to's balance.
func Mint(ctx context.Context, mu state.Mutable, mint pda.Address, to codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	supply, err := Supply(ctx, mu, mint)
	if err != nil {
		return err
	}
	if supply+amount < supply {
		return fmt.Errorf("%w: minting %d of %s onto %d", ErrSupplyOverflow, amount, mint, supply)
	}
	if err := credit(ctx, mu, mint, to, amount); err != nil {
		return err
	}
	return writeUint64(ctx, mu, SupplyKey(mint), supply+amount)
}

// Burn destroys amount of mint from from's balance.
func Burn(ctx context.Context, mu state.Mutable, mint pda.Address, from codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := debit(ctx, mu, mint, from, amount); err != nil {
		return err
	}
	supply, err := Supply(ctx, mu, mint)
	if err != nil {
		return err
	}
	if supply < amount {
		return fmt.Errorf("%w: burning %d of %s with supply %d", storage.ErrCorruptAccount, amount, mint, supply)
	}
	return writeUint64(ctx, mu, SupplyKey(mint), supply-amount)
}

// Transfer moves amount of mint between two owners. Supply is untouched.
func Transfer(ctx context.Context, mu state.Mutable, mint pda.Address, from, to codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := debit(ctx, mu, mint, from, amount); err != nil {
		return err
	}
	return credit(ctx, mu, mint, to, amount)
}

func debit(ctx context.Context, mu state.Mutable, mint pda.Address, owner codec.Address, amount uint64) error {
	bal, err := Balance(ctx, mu, mint, owner)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d", ErrInsufficientBalance, owner, bal, mint, amount)
	}
	return writeUint64(ctx, mu, BalanceKey(mint, owner), bal-amount)
}

func credit(ctx context.Context, mu state.Mutable, mint pda.Address, owner codec.Address, amount uint64) error {
	bal, err := Balance(ctx, mu, mint, owner)
	if err != nil {
		return err
	}
	// Every balance is bounded by the mint's supply, which Mint checks.
	return writeUint64(ctx, mu, BalanceKey(mint, owner), bal+amount)
}

func readUint64(ctx context.Context, im state.Immutable, key []byte) (uint64, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return database.ParseUInt64(v)
}

// writeUint64 removes the key when v is zero.
func writeUint64(ctx context.Context, mu state.Mutable, key []byte, v uint64) error {
	if v == 0 {
		return mu.Remove(ctx, key)
	}
	return mu.Insert(ctx, key, database.PackUInt64(v))
}
