package storage

import (
	"context"
	"fmt"

	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/pda"
)

// PoolSize is the encoded size of a Pool, discriminator included.
const PoolSize = DiscriminatorLen +
	pda.AddressLen + // market
	enumLen + // side
	uint64Len + // collateral_reserve
	uint64Len + // outcome_token_reserve
	pda.AddressLen + // lp_mint
	uint64Len + // total_lp_supply
	2 + // fee_bps
	uint64Len + // collected_fees
	1 // bump

// Pool is one side's constant-product market of collateral against that
// side's outcome token.
// Key: PoolKey(pda.Pool(Market, Side))
type Pool struct {
	Market            pda.Address `json:"market"`
	Side              pda.Side    `json:"side"`
	CollateralReserve uint64      `json:"collateralReserve"`
	OutcomeReserve    uint64      `json:"outcomeReserve"`
	LPMint            pda.Address `json:"lpMint"`
	TotalLPSupply     uint64      `json:"totalLpSupply"`
	FeeBps            uint16      `json:"feeBps"`
	// CollectedFees is collateral already counted in CollateralReserve.
	CollectedFees uint64 `json:"collectedFees"`
	Bump          uint8  `json:"bump"`
}

// IsEmpty reports whether the pool holds nothing.
func (p *Pool) IsEmpty() bool {
	return p.TotalLPSupply == 0 && p.CollateralReserve == 0 && p.OutcomeReserve == 0
}

// CheckShares enforces total_lp_supply == 0 <=> both reserves == 0.
func (p *Pool) CheckShares() error {
	reservesEmpty := p.CollateralReserve == 0 && p.OutcomeReserve == 0
	anyReserveEmpty := p.CollateralReserve == 0 || p.OutcomeReserve == 0
	switch {
	case p.TotalLPSupply == 0 && !reservesEmpty:
		return fmt.Errorf("%w: no shares but reserves %d/%d", ErrCorruptAccount, p.CollateralReserve, p.OutcomeReserve)
	case p.TotalLPSupply > 0 && anyReserveEmpty:
		return fmt.Errorf("%w: %d shares but reserves %d/%d", ErrCorruptAccount, p.TotalLPSupply, p.CollateralReserve, p.OutcomeReserve)
	}
	return nil
}

func (p *Pool) Validate() error {
	if !p.Side.Valid() {
		return fmt.Errorf("%w: side %s", ErrCorruptAccount, p.Side)
	}
	if uint64(p.FeeBps) >= consts.BpsDenominator {
		return fmt.Errorf("%w: fee %d bps", ErrCorruptAccount, p.FeeBps)
	}
	return p.CheckShares()
}

// Marshal encodes the pool with its discriminator.
func (p *Pool) Marshal() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := newWriter(PoolSize)
	w.PackFixedBytes(PoolDiscriminator[:])
	packAddress(w, p.Market)
	w.PackByte(byte(p.Side))
	w.PackLong(p.CollateralReserve)
	w.PackLong(p.OutcomeReserve)
	packAddress(w, p.LPMint)
	w.PackLong(p.TotalLPSupply)
	w.PackShort(p.FeeBps)
	w.PackLong(p.CollectedFees)
	w.PackByte(p.Bump)
	if w.Errored() {
		return nil, fmt.Errorf("failed to marshal %s pool of %s: %w", p.Side, p.Market, w.Err)
	}
	return w.Bytes, nil
}

// UnmarshalPool decodes a Pool account. Any other account kind fails with
// ErrAccountKindMismatch.
func UnmarshalPool(b []byte) (*Pool, error) {
	r, err := newReader(b, PoolDiscriminator, "Pool", PoolSize)
	if err != nil {
		return nil, err
	}
	p := &Pool{}
	p.Market = unpackAddress(r)
	p.Side = pda.Side(r.UnpackByte())
	p.CollateralReserve = r.UnpackLong()
	p.OutcomeReserve = r.UnpackLong()
	p.LPMint = unpackAddress(r)
	p.TotalLPSupply = r.UnpackLong()
	p.FeeBps = r.UnpackShort()
	p.CollectedFees = r.UnpackLong()
	p.Bump = r.UnpackByte()
	if err := finish(r, "Pool"); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPool loads the pool stored at addr.
func GetPool(ctx context.Context, im state.Immutable, addr pda.Address) (*Pool, error) {
	valBytes, err := getAccount(ctx, im, PoolKey(addr), addr)
	if err != nil {
		return nil, err
	}
	p, err := UnmarshalPool(valBytes)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return p, nil
}

// SetPool stores a pool at addr.
func SetPool(ctx context.Context, mu state.Mutable, addr pda.Address, p *Pool) error {
	b, err := p.Marshal()
	if err != nil {
		return err
	}
	return mu.Insert(ctx, PoolKey(addr), b)
}
