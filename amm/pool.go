// Package amm is the constant-product accounting of a single outcome pool.
//
// Every function is pure: it takes the current pool by value and returns
// the next pool along with the amounts the caller must move. Reserve and
// share fields change together in the returned value and nowhere else.
package amm

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	ErrZeroAmount            = storage.ErrZeroAmount
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrInvalidFee            = errors.New("invalid fee")
	ErrInvalidDirection      = errors.New("invalid swap direction")
)

// Direction says which leg of the pool a swap pays in.
type Direction uint8

const (
	// CollateralToOutcome buys outcome tokens with collateral.
	CollateralToOutcome Direction = 0
	// OutcomeToCollateral sells outcome tokens for collateral.
	OutcomeToCollateral Direction = 1
)

func (d Direction) String() string {
	switch d {
	case CollateralToOutcome:
		return "CollateralToOutcome"
	case OutcomeToCollateral:
		return "OutcomeToCollateral"
	default:
		return fmt.Sprintf("UnknownDirection:%d", uint8(d))
	}
}

// ValidateFee requires 0 <= bps < 10000.
func ValidateFee(bps uint16) error {
	if uint64(bps) >= consts.BpsDenominator {
		return fmt.Errorf("%w: %d bps", ErrInvalidFee, bps)
	}
	return nil
}

// CheckInvariant enforces total_lp_supply == 0 <=> both reserves == 0.
func CheckInvariant(p storage.Pool) error {
	if err := p.CheckShares(); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientLiquidity, err)
	}
	return nil
}

// Invariant returns k = collateral_reserve * outcome_token_reserve.
func Invariant(p storage.Pool) *uint256.Int {
	return product(p.CollateralReserve, p.OutcomeReserve)
}

// Price is a fraction of collateral per outcome token.
type Price struct {
	Num uint64
	Den uint64
}

// SpotPrice is the marginal price of the outcome token in collateral.
func SpotPrice(p storage.Pool) (Price, error) {
	if p.OutcomeReserve == 0 {
		return Price{}, fmt.Errorf("%w: empty %s pool", ErrInsufficientLiquidity, p.Side)
	}
	return Price{Num: p.CollateralReserve, Den: p.OutcomeReserve}, nil
}

type AddResult struct {
	Pool           storage.Pool
	Shares         uint64
	CollateralUsed uint64
	OutcomeUsed    uint64
}

// AddLiquidity deposits up to collateralIn and outcomeIn.
//
// The first deposit sets the price and mints sqrt(c*o) shares. Later
// deposits mint the smaller of the two pro-rata share amounts and only
// take the legs those shares need, rounded up in the pool's favor. The
// unused remainder stays with the caller.
func AddLiquidity(p storage.Pool, collateralIn, outcomeIn uint64) (*AddResult, error) {
	if err := CheckInvariant(p); err != nil {
		return nil, err
	}
	if p.TotalLPSupply == 0 {
		if collateralIn == 0 || outcomeIn == 0 {
			return nil, fmt.Errorf("%w: first deposit needs both legs (collateral %d, outcome %d)", ErrInsufficientLiquidity, collateralIn, outcomeIn)
		}
		shares := sqrtMul(collateralIn, outcomeIn)
		p.CollateralReserve = collateralIn
		p.OutcomeReserve = outcomeIn
		p.TotalLPSupply = shares
		return &AddResult{Pool: p, Shares: shares, CollateralUsed: collateralIn, OutcomeUsed: outcomeIn}, nil
	}

	if collateralIn == 0 || outcomeIn == 0 {
		return nil, fmt.Errorf("%w: collateral %d, outcome %d", ErrZeroAmount, collateralIn, outcomeIn)
	}
	byCollateral, err := mulDiv(collateralIn, p.TotalLPSupply, p.CollateralReserve)
	if err != nil {
		return nil, err
	}
	byOutcome, err := mulDiv(outcomeIn, p.TotalLPSupply, p.OutcomeReserve)
	if err != nil {
		return nil, err
	}
	shares := min(byCollateral, byOutcome)
	if shares == 0 {
		return nil, fmt.Errorf("%w: deposit too small to mint shares", ErrInsufficientLiquidity)
	}
	collateralUsed, err := mulDivUp(shares, p.CollateralReserve, p.TotalLPSupply)
	if err != nil {
		return nil, err
	}
	outcomeUsed, err := mulDivUp(shares, p.OutcomeReserve, p.TotalLPSupply)
	if err != nil {
		return nil, err
	}

	next := p
	if next.CollateralReserve, err = add(p.CollateralReserve, collateralUsed); err != nil {
		return nil, err
	}
	if next.OutcomeReserve, err = add(p.OutcomeReserve, outcomeUsed); err != nil {
		return nil, err
	}
	if next.TotalLPSupply, err = add(p.TotalLPSupply, shares); err != nil {
		return nil, err
	}
	return &AddResult{Pool: next, Shares: shares, CollateralUsed: collateralUsed, OutcomeUsed: outcomeUsed}, nil
}

type RemoveResult struct {
	Pool          storage.Pool
	CollateralOut uint64
	OutcomeOut    uint64
}

// RemoveLiquidity burns lp shares for their pro-rata part of both reserves.
func RemoveLiquidity(p storage.Pool, lp uint64) (*RemoveResult, error) {
	if err := CheckInvariant(p); err != nil {
		return nil, err
	}
	if lp == 0 {
		return nil, ErrZeroAmount
	}
	if lp > p.TotalLPSupply {
		return nil, fmt.Errorf("%w: burning %d of %d outstanding", ErrInsufficientShares, lp, p.TotalLPSupply)
	}
	collateralOut, outcomeOut, err := proRata(p, lp)
	if err != nil {
		return nil, err
	}
	if collateralOut == 0 && outcomeOut == 0 {
		return nil, fmt.Errorf("%w: %d shares redeem for nothing", ErrZeroAmount, lp)
	}
	next := p
	next.CollateralReserve -= collateralOut
	next.OutcomeReserve -= outcomeOut
	next.TotalLPSupply -= lp
	if err := CheckInvariant(next); err != nil {
		return nil, err
	}
	return &RemoveResult{Pool: next, CollateralOut: collateralOut, OutcomeOut: outcomeOut}, nil
}

// proRata returns floor(lp/S) of each reserve. Burning every share returns
// the reserves exactly.
func proRata(p storage.Pool, lp uint64) (uint64, uint64, error) {
	if lp == p.TotalLPSupply {
		return p.CollateralReserve, p.OutcomeReserve, nil
	}
	collateralOut, err := mulDiv(lp, p.CollateralReserve, p.TotalLPSupply)
	if err != nil {
		return 0, 0, err
	}
	outcomeOut, err := mulDiv(lp, p.OutcomeReserve, p.TotalLPSupply)
	if err != nil {
		return 0, 0, err
	}
	return collateralOut, outcomeOut, nil
}

type SwapResult struct {
	Pool      storage.Pool
	Direction Direction
	AmountIn  uint64
	AmountOut uint64
	// Fee is in collateral and stays in the collateral reserve.
	Fee uint64
}

// Swap trades amountIn against the pool.
//
// Buying takes the fee from the collateral paid in before pricing.
// Selling takes it from the collateral paid out, so collected fees are
// always collateral. Either way the fee stays in the pool and k never
// decreases.
func Swap(p storage.Pool, dir Direction, amountIn, minOut uint64) (*SwapResult, error) {
	if err := CheckInvariant(p); err != nil {
		return nil, err
	}
	if amountIn == 0 {
		return nil, ErrZeroAmount
	}
	if p.TotalLPSupply == 0 {
		return nil, fmt.Errorf("%w: empty %s pool", ErrInsufficientLiquidity, p.Side)
	}

	var (
		next = p
		res  = &SwapResult{Direction: dir, AmountIn: amountIn}
		err  error
	)
	switch dir {
	case CollateralToOutcome:
		if res.Fee, err = mulDivUp(amountIn, uint64(p.FeeBps), consts.BpsDenominator); err != nil {
			return nil, err
		}
		net := amountIn - res.Fee
		if next.CollateralReserve, err = add(p.CollateralReserve, amountIn); err != nil {
			return nil, err
		}
		reserveIn, err := add(p.CollateralReserve, net)
		if err != nil {
			return nil, err
		}
		if res.AmountOut, err = mulDiv(p.OutcomeReserve, net, reserveIn); err != nil {
			return nil, err
		}
		if res.AmountOut == 0 || res.AmountOut >= p.OutcomeReserve {
			return nil, fmt.Errorf("%w: buying with %d yields %d of %d", ErrInsufficientLiquidity, amountIn, res.AmountOut, p.OutcomeReserve)
		}
		next.OutcomeReserve = p.OutcomeReserve - res.AmountOut

	case OutcomeToCollateral:
		reserveIn, err := add(p.OutcomeReserve, amountIn)
		if err != nil {
			return nil, err
		}
		gross, err := mulDiv(p.CollateralReserve, amountIn, reserveIn)
		if err != nil {
			return nil, err
		}
		if res.Fee, err = mulDivUp(gross, uint64(p.FeeBps), consts.BpsDenominator); err != nil {
			return nil, err
		}
		res.AmountOut = gross - res.Fee
		if res.AmountOut == 0 || res.AmountOut >= p.CollateralReserve {
			return nil, fmt.Errorf("%w: selling %d yields %d of %d", ErrInsufficientLiquidity, amountIn, res.AmountOut, p.CollateralReserve)
		}
		next.OutcomeReserve = reserveIn
		next.CollateralReserve = p.CollateralReserve - res.AmountOut

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(dir))
	}

	if res.AmountOut < minOut {
		return nil, fmt.Errorf("%w: output %d below minimum %d", ErrSlippageExceeded, res.AmountOut, minOut)
	}
	if next.CollectedFees, err = add(p.CollectedFees, res.Fee); err != nil {
		return nil, err
	}
	res.Pool = next
	return res, nil
}

// QuoteSwap returns the output and fee of a swap without a slippage bound.
func QuoteSwap(p storage.Pool, dir Direction, amountIn uint64) (uint64, uint64, error) {
	res, err := Swap(p, dir, amountIn, 0)
	if err != nil {
		return 0, 0, err
	}
	return res.AmountOut, res.Fee, nil
}
