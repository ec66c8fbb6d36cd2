package pda

import (
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/chokosabe/predictionamm/consts"
)

const (
	MaxSeeds   = 16
	MaxSeedLen = 32

	derivationMarker = "ProgramDerivedAddress"
)

var (
	ErrAddressSpaceExhausted = errors.New("address space exhausted")
	ErrAddressMismatch       = errors.New("address mismatch")
	ErrAddressOnCurve        = errors.New("derived address is on the ed25519 curve")
	ErrMaxSeedsExceeded      = errors.New("too many seeds")
	ErrSeedTooLong           = errors.New("seed too long")
	ErrInvalidSide           = errors.New("invalid side")
)

// ProgramID is the program every account in this VM is derived under.
var ProgramID = Address(consts.ID)

// onCurve is swapped out in tests to exercise bump exhaustion.
var onCurve = isOnCurve

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress hashes the seeds (the bump included) under program.
// It fails with ErrAddressOnCurve when the digest is a valid public key.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return EmptyAddress, fmt.Errorf("%w: %d > %d", ErrMaxSeedsExceeded, len(seeds), MaxSeeds)
	}
	size := len(program) + len(derivationMarker)
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return EmptyAddress, fmt.Errorf("%w: seed %d is %d bytes", ErrSeedTooLong, i, len(seed))
		}
		size += len(seed)
	}
	buf := make([]byte, 0, size)
	for _, seed := range seeds {
		buf = append(buf, seed...)
	}
	buf = append(buf, program[:]...)
	buf = append(buf, derivationMarker...)

	digest := hashing.ComputeHash256(buf)
	if onCurve(digest) {
		return EmptyAddress, ErrAddressOnCurve
	}
	var addr Address
	copy(addr[:], digest)
	return addr, nil
}

// FindProgramAddress returns the first off-curve address found by
// searching bumps from 255 down to 0, together with that bump.
func FindProgramAddress(seeds [][]byte, program Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		// One slot is reserved for the bump.
		return EmptyAddress, 0, fmt.Errorf("%w: %d seeds leave no room for a bump", ErrMaxSeedsExceeded, len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bumpSeed := []byte{0}
	withBump[len(seeds)] = bumpSeed

	for bump := 255; bump >= 0; bump-- {
		bumpSeed[0] = uint8(bump)
		addr, err := CreateProgramAddress(withBump, program)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrAddressOnCurve):
			continue
		default:
			return EmptyAddress, 0, err
		}
	}
	return EmptyAddress, 0, ErrAddressSpaceExhausted
}

// Seeds returns the seed tuple for kind. Parent is the market address for
// every kind except KindMarket (which uses id) and KindCollateralMint
// (which has no parent). Side is only read for pools and LP mints.
func Seeds(kind Kind, id uint64, parent Address, side Side) ([][]byte, error) {
	prefix := []byte(kind.Seed())
	switch kind {
	case KindMarket:
		var le [8]byte
		binary.LittleEndian.PutUint64(le[:], id)
		return [][]byte{prefix, le[:]}, nil
	case KindPool, KindLPMint:
		if !side.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSide, uint8(side))
		}
		return [][]byte{prefix, parent.Bytes(), {uint8(side)}}, nil
	case KindVault, KindYesMint, KindNoMint:
		return [][]byte{prefix, parent.Bytes()}, nil
	case KindCollateralMint:
		return [][]byte{prefix}, nil
	}
	return nil, fmt.Errorf("unknown address kind %d", uint8(kind))
}

// Derive finds the address of kind under ProgramID.
func Derive(kind Kind, id uint64, parent Address, side Side) (Address, uint8, error) {
	seeds, err := Seeds(kind, id, parent, side)
	if err != nil {
		return EmptyAddress, 0, err
	}
	addr, bump, err := FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return EmptyAddress, 0, fmt.Errorf("deriving %s address: %w", kind, err)
	}
	return addr, bump, nil
}

func Market(id uint64) (Address, uint8, error) {
	return Derive(KindMarket, id, EmptyAddress, SideYes)
}

func Pool(market Address, side Side) (Address, uint8, error) {
	return Derive(KindPool, 0, market, side)
}

func Vault(market Address) (Address, uint8, error) {
	return Derive(KindVault, 0, market, SideYes)
}

func YesMint(market Address) (Address, uint8, error) {
	return Derive(KindYesMint, 0, market, SideYes)
}

func NoMint(market Address) (Address, uint8, error) {
	return Derive(KindNoMint, 0, market, SideYes)
}

// OutcomeMint returns the YES or NO mint of market.
func OutcomeMint(market Address, side Side) (Address, uint8, error) {
	switch side {
	case SideYes:
		return YesMint(market)
	case SideNo:
		return NoMint(market)
	}
	return EmptyAddress, 0, fmt.Errorf("%w: %d", ErrInvalidSide, uint8(side))
}

func LPMint(market Address, side Side) (Address, uint8, error) {
	return Derive(KindLPMint, 0, market, side)
}

func CollateralMint() (Address, uint8, error) {
	return Derive(KindCollateralMint, 0, EmptyAddress, SideYes)
}

// Verify fails with ErrAddressMismatch unless supplied is the address
// derived for kind from the given parent fields.
func Verify(kind Kind, supplied Address, id uint64, parent Address, side Side) error {
	expected, _, err := Derive(kind, id, parent, side)
	if err != nil {
		return err
	}
	if expected != supplied {
		return fmt.Errorf("%w: %s account %s, expected %s", ErrAddressMismatch, kind, supplied, expected)
	}
	return nil
}

// VerifyBump checks supplied against the address derived for kind with a
// known bump, such as the one stored in the account record. It hashes once
// instead of searching.
func VerifyBump(kind Kind, supplied Address, id uint64, parent Address, side Side, bump uint8) error {
	seeds, err := Seeds(kind, id, parent, side)
	if err != nil {
		return err
	}
	expected, err := CreateProgramAddress(append(seeds, []byte{bump}), ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %s account %s with bump %d: %v", ErrAddressMismatch, kind, supplied, bump, err)
	}
	if expected != supplied {
		return fmt.Errorf("%w: %s account %s, bump %d derives %s", ErrAddressMismatch, kind, supplied, bump, expected)
	}
	return nil
}

// Accounts is the full set of addresses belonging to one market.
type Accounts struct {
	Market     Address
	MarketBump uint8
	Vault      Address
	YesMint    Address
	NoMint     Address
	YesPool    Address
	YesBump    uint8
	NoPool     Address
	NoBump     uint8
	YesLPMint  Address
	NoLPMint   Address
}

// PoolFor returns the pool address and bump of side.
func (a *Accounts) PoolFor(side Side) (Address, uint8) {
	if side == SideNo {
		return a.NoPool, a.NoBump
	}
	return a.YesPool, a.YesBump
}

// LPMintFor returns the LP mint of side.
func (a *Accounts) LPMintFor(side Side) Address {
	if side == SideNo {
		return a.NoLPMint
	}
	return a.YesLPMint
}

// OutcomeMintFor returns the outcome-token mint of side.
func (a *Accounts) OutcomeMintFor(side Side) Address {
	if side == SideNo {
		return a.NoMint
	}
	return a.YesMint
}

// MarketAccounts derives every account of market id.
func MarketAccounts(id uint64) (*Accounts, error) {
	var (
		a   = &Accounts{}
		err error
	)
	if a.Market, a.MarketBump, err = Market(id); err != nil {
		return nil, err
	}
	if a.Vault, _, err = Vault(a.Market); err != nil {
		return nil, err
	}
	if a.YesMint, _, err = YesMint(a.Market); err != nil {
		return nil, err
	}
	if a.NoMint, _, err = NoMint(a.Market); err != nil {
		return nil, err
	}
	if a.YesPool, a.YesBump, err = Pool(a.Market, SideYes); err != nil {
		return nil, err
	}
	if a.NoPool, a.NoBump, err = Pool(a.Market, SideNo); err != nil {
		return nil, err
	}
	if a.YesLPMint, _, err = LPMint(a.Market, SideYes); err != nil {
		return nil, err
	}
	if a.NoLPMint, _, err = LPMint(a.Market, SideNo); err != nil {
		return nil, err
	}
	return a, nil
}
