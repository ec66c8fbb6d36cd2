package pda

import (
	"bytes"
	"fmt"

	"github.com/chokosabe/predictionamm/consts"
)

// Seed prefixes. Each account kind has its own prefix so that no two
// kinds can derive the same address from a shared parent.
const (
	MarketSeed     = "market"
	PoolSeed       = "pool"
	VaultSeed      = "vault"
	YesMintSeed    = "yes_mint"
	NoMintSeed     = "no_mint"
	LPMintSeed     = "lp_mint"
	CollateralSeed = consts.CollateralMintSeed
)

// Kind is the entity an address is derived for.
type Kind uint8

const (
	KindMarket Kind = iota
	KindPool
	KindVault
	KindYesMint
	KindNoMint
	KindLPMint
	KindCollateralMint
)

func (k Kind) Seed() string {
	switch k {
	case KindMarket:
		return MarketSeed
	case KindPool:
		return PoolSeed
	case KindVault:
		return VaultSeed
	case KindYesMint:
		return YesMintSeed
	case KindNoMint:
		return NoMintSeed
	case KindLPMint:
		return LPMintSeed
	case KindCollateralMint:
		return CollateralSeed
	}
	return ""
}

func (k Kind) String() string {
	if s := k.Seed(); s != "" {
		return s
	}
	return fmt.Sprintf("UnknownKind:%d", uint8(k))
}

// Kinds lists every derivable kind.
var Kinds = []Kind{
	KindMarket,
	KindPool,
	KindVault,
	KindYesMint,
	KindNoMint,
	KindLPMint,
	KindCollateralMint,
}

// Side is the outcome a pool or mint belongs to. Its byte value is the
// seed discriminant.
type Side uint8

const (
	SideYes Side = 0
	SideNo  Side = 1
)

func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

func (s Side) String() string {
	switch s {
	case SideYes:
		return "Yes"
	case SideNo:
		return "No"
	default:
		return fmt.Sprintf("UnknownSide:%d", uint8(s))
	}
}

// ValidateSeeds checks that all seed prefixes are non-empty and pairwise
// distinct.
func ValidateSeeds() error {
	for i, k := range Kinds {
		seed := []byte(k.Seed())
		if len(seed) == 0 {
			return fmt.Errorf("seed for kind %d is empty", uint8(k))
		}
		if len(seed) > MaxSeedLen {
			return fmt.Errorf("%w: %s seed is %d bytes", ErrSeedTooLong, k, len(seed))
		}
		for _, other := range Kinds[i+1:] {
			if bytes.Equal(seed, []byte(other.Seed())) {
				return fmt.Errorf("seed collision between %s and %s", k, other)
			}
		}
	}
	return nil
}

func init() {
	if err := ValidateSeeds(); err != nil {
		panic(err)
	}
}
