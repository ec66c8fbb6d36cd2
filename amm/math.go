package amm

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var ErrOverflow = errors.New("arithmetic overflow")

// mulDiv returns floor(a*b/d) computed without intermediate overflow.
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, fmt.Errorf("%w: division by zero", ErrOverflow)
	}
	z := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	z.Div(z, uint256.NewInt(d))
	if !z.IsUint64() {
		return 0, fmt.Errorf("%w: %d*%d/%d", ErrOverflow, a, b, d)
	}
	return z.Uint64(), nil
}

// mulDivUp returns ceil(a*b/d).
func mulDivUp(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, fmt.Errorf("%w: division by zero", ErrOverflow)
	}
	num := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	den := uint256.NewInt(d)
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(num, den, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	if !q.IsUint64() {
		return 0, fmt.Errorf("%w: ceil(%d*%d/%d)", ErrOverflow, a, b, d)
	}
	return q.Uint64(), nil
}

// sqrtMul returns floor(sqrt(a*b)). The result always fits in 64 bits.
func sqrtMul(a, b uint64) uint64 {
	z := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	return z.Sqrt(z).Uint64()
}

func add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("%w: %d+%d", ErrOverflow, a, b)
	}
	return sum, nil
}

// product returns a*b as a 256-bit value.
func product(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}
