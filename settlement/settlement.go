// Package settlement prices redemptions against a resolved market.
package settlement

import (
	"fmt"

	"github.com/chokosabe/predictionamm/amm"
	"github.com/chokosabe/predictionamm/lifecycle"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var ErrZeroAmount = storage.ErrZeroAmount

// OutcomePayout returns the collateral owed for amount tokens of side.
// Winning tokens pay 1:1, losing tokens pay nothing. The caller burns the
// presented tokens either way.
func OutcomePayout(m *storage.Market, side pda.Side, amount uint64) (uint64, error) {
	winner, err := lifecycle.RequireResolved(m)
	if err != nil {
		return 0, err
	}
	if !side.Valid() {
		return 0, fmt.Errorf("%w: %d", pda.ErrInvalidSide, uint8(side))
	}
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	if side != winner {
		return 0, nil
	}
	return amount, nil
}

type LiquidityResult struct {
	// Pool is the pool after the shares are burned.
	Pool    storage.Pool
	Winning bool
	// CollateralOut is paid from the vault. On the winning side it
	// includes the pool's outcome tokens redeemed 1:1.
	CollateralOut uint64
	// OutcomeOut is the losing-side tokens handed to the holder.
	OutcomeOut uint64
	// OutcomeBurned is the winning-side tokens the pool gives up.
	OutcomeBurned uint64
}

// LiquidityPayout redeems lp shares of pool after market resolved.
func LiquidityPayout(m *storage.Market, pool storage.Pool, lp uint64) (*LiquidityResult, error) {
	winner, err := lifecycle.RequireResolved(m)
	if err != nil {
		return nil, err
	}
	if lp == 0 {
		return nil, ErrZeroAmount
	}
	removed, err := amm.RemoveLiquidity(pool, lp)
	if err != nil {
		return nil, err
	}
	res := &LiquidityResult{Pool: removed.Pool, Winning: pool.Side == winner}
	if !res.Winning {
		res.CollateralOut = removed.CollateralOut
		res.OutcomeOut = removed.OutcomeOut
		return res, nil
	}
	total := removed.CollateralOut + removed.OutcomeOut
	if total < removed.CollateralOut {
		return nil, fmt.Errorf("%w: payout of %d shares", amm.ErrOverflow, lp)
	}
	res.CollateralOut = total
	res.OutcomeBurned = removed.OutcomeOut
	return res, nil
}
