package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/pda"
)

const (
	// MarketPrefix is the prefix for Market accounts.
	// Format: MarketPrefix | pda.Address | chunks -> discriminator | record
	MarketPrefix byte = 0x0

	// BalancePrefix is the prefix for token balances, owned by the asset package.
	// Format: BalancePrefix | mint (pda.Address) | owner (codec.Address) | chunks -> uint64
	BalancePrefix byte = 0x1

	// SupplyPrefix is the prefix for per-mint total supply, owned by the asset package.
	// Format: SupplyPrefix | mint (pda.Address) | chunks -> uint64
	SupplyPrefix byte = 0x2

	// PoolPrefix is the prefix for Pool accounts.
	// Format: PoolPrefix | pda.Address | chunks -> discriminator | record
	PoolPrefix byte = 0x3

	// Uint64Chunks is the chunk count of a key holding one uint64.
	Uint64Chunks uint16 = 1
)

// Chunk counts the runtime reserves for each account kind.
var (
	MarketChunks = chunksFor(MarketSize)
	PoolChunks   = chunksFor(PoolSize)
)

func chunksFor(size int) uint16 {
	n, ok := keys.NumChunks(make([]byte, size))
	if !ok {
		panic(fmt.Sprintf("record of %d bytes exceeds the key chunk limit", size))
	}
	return n
}

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountKindMismatch = errors.New("account kind mismatch")
	ErrAccountMalformed    = errors.New("account data malformed")
	ErrFieldTooLong        = errors.New("field too long")
	ErrCorruptAccount      = errors.New("account violates its invariants")

	// ErrZeroAmount is returned by every operation given a zero amount.
	// Other packages re-export it under their own name.
	ErrZeroAmount = errors.New("amount must be positive")
)

func accountKey(prefix byte, addr pda.Address, chunks uint16) []byte {
	key := make([]byte, 1+pda.AddressLen)
	key[0] = prefix
	copy(key[1:], addr[:])
	return keys.EncodeChunks(key, chunks)
}

// MarketKey returns the state key of the Market account at addr.
func MarketKey(addr pda.Address) []byte {
	return accountKey(MarketPrefix, addr, MarketChunks)
}

// PoolKey returns the state key of the Pool account at addr.
func PoolKey(addr pda.Address) []byte {
	return accountKey(PoolPrefix, addr, PoolChunks)
}

// MarketExists reports whether a market is stored at addr.
func MarketExists(ctx context.Context, im state.Immutable, addr pda.Address) (bool, error) {
	return exists(ctx, im, MarketKey(addr))
}

// PoolExists reports whether a pool is stored at addr.
func PoolExists(ctx context.Context, im state.Immutable, addr pda.Address) (bool, error) {
	return exists(ctx, im, PoolKey(addr))
}

func exists(ctx context.Context, im state.Immutable, key []byte) (bool, error) {
	_, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func getAccount(ctx context.Context, im state.Immutable, key []byte, addr pda.Address) ([]byte, error) {
	valBytes, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account %s: %w", addr, err)
	}
	if len(valBytes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return valBytes, nil
}
