package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/asset"
	"github.com/chokosabe/predictionamm/escrow"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

// inBatch runs fn against a batch over mu and commits only if fn succeeds.
func inBatch(ctx context.Context, mu state.Mutable, fn func(*storage.Batch) (codec.Typed, error)) ([]byte, error) {
	b := storage.NewBatch(mu)
	res, err := fn(b)
	if err != nil {
		b.Discard()
		return nil, err
	}
	out, err := marshalTyped(res)
	if err != nil {
		b.Discard()
		return nil, err
	}
	if err := b.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// loadMarket reads the market at supplied and verifies, with the bump the
// record stores, that supplied is the address of market id.
func loadMarket(ctx context.Context, im state.Immutable, id uint64, supplied pda.Address) (*storage.Market, error) {
	m, err := storage.GetMarket(ctx, im, supplied)
	if err != nil {
		return nil, err
	}
	if err := pda.VerifyBump(pda.KindMarket, supplied, id, pda.EmptyAddress, pda.SideYes, m.Bump); err != nil {
		return nil, err
	}
	if m.ID != id {
		return nil, fmt.Errorf("%w: account %s holds market %d, not %d", ErrMarketMismatch, supplied, m.ID, id)
	}
	return m, nil
}

// loadPool reads the side pool of market at supplied and verifies it the
// same way.
func loadPool(ctx context.Context, im state.Immutable, market pda.Address, m *storage.Market, side pda.Side, supplied pda.Address) (*storage.Pool, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %d", pda.ErrInvalidSide, uint8(side))
	}
	if m.PoolFor(side) != supplied {
		return nil, fmt.Errorf("%w: market %d %s pool is %s", pda.ErrAddressMismatch, m.ID, side, m.PoolFor(side))
	}
	p, err := storage.GetPool(ctx, im, supplied)
	if err != nil {
		return nil, err
	}
	if err := pda.VerifyBump(pda.KindPool, supplied, 0, market, side, p.Bump); err != nil {
		return nil, err
	}
	if p.Market != market || p.Side != side {
		return nil, fmt.Errorf("%w: pool %s belongs to %s %s", ErrMarketMismatch, supplied, p.Market, p.Side)
	}
	return p, nil
}

// storeMarket writes m and checks that its vault still covers it.
func storeMarket(ctx context.Context, mu state.Mutable, addr pda.Address, m *storage.Market) error {
	if err := storage.SetMarket(ctx, mu, addr, m); err != nil {
		return err
	}
	return escrow.CheckVault(ctx, mu, m)
}

func addLiquidity(m *storage.Market, amount uint64) error {
	if m.TotalLiquidity+amount < m.TotalLiquidity {
		return fmt.Errorf("%w: market %d liquidity overflow", storage.ErrCorruptAccount, m.ID)
	}
	m.TotalLiquidity += amount
	return nil
}

func subLiquidity(m *storage.Market, amount uint64) error {
	if m.TotalLiquidity < amount {
		return fmt.Errorf("%w: market %d releases %d of %d", storage.ErrCorruptAccount, m.ID, amount, m.TotalLiquidity)
	}
	m.TotalLiquidity -= amount
	return nil
}

// keys accumulates state key permissions.
type keys state.Keys

func (k keys) add(key []byte, perm state.Permissions) keys {
	k[string(key)] |= perm
	return k
}

func (k keys) market(addr pda.Address, perm state.Permissions) keys {
	return k.add(storage.MarketKey(addr), perm)
}

func (k keys) pool(addr pda.Address, perm state.Permissions) keys {
	return k.add(storage.PoolKey(addr), perm)
}

func (k keys) balance(mint pda.Address, owner codec.Address) keys {
	return k.add(asset.BalanceKey(mint, owner), state.All)
}

func (k keys) supply(mint pda.Address) keys {
	return k.add(asset.SupplyKey(mint), state.All)
}

// collateral covers moving collateral between owner and the market vault.
func (k keys) collateral(a *pda.Accounts, owner codec.Address) keys {
	return k.balance(asset.CollateralMint, owner).balance(asset.CollateralMint, asset.OwnerOf(a.Vault))
}

// marketKeys derives the accounts of market id for StateKeys. A market
// whose addresses cannot be derived has no keys and fails in Execute.
func marketKeys(id uint64) (*pda.Accounts, keys, bool) {
	a, err := pda.MarketAccounts(id)
	if err != nil {
		return nil, keys{}, false
	}
	return a, keys{}, true
}
