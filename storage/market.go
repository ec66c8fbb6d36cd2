package storage

import (
	"context"
	"fmt"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/pda"
)

// MarketStatus defines the possible states of a prediction market.
type MarketStatus uint8

const (
	MarketStatus_Open     MarketStatus = 0 // Trading is active
	MarketStatus_Locked   MarketStatus = 1 // Trading ended, awaiting resolution
	MarketStatus_Resolved MarketStatus = 2 // Outcome has been determined
)

func (ms MarketStatus) Valid() bool {
	switch ms {
	case MarketStatus_Open, MarketStatus_Locked, MarketStatus_Resolved:
		return true
	}
	return false
}

func (ms MarketStatus) String() string {
	switch ms {
	case MarketStatus_Open:
		return "Open"
	case MarketStatus_Locked:
		return "Locked"
	case MarketStatus_Resolved:
		return "Resolved"
	default:
		return fmt.Sprintf("UnknownMarketStatus:%d", ms)
	}
}

// MarketResult is the final outcome of a market.
type MarketResult uint8

const (
	Result_Undecided MarketResult = 0
	Result_Yes       MarketResult = 1
	Result_No        MarketResult = 2
)

func (mr MarketResult) Valid() bool {
	switch mr {
	case Result_Undecided, Result_Yes, Result_No:
		return true
	}
	return false
}

// Side returns the winning side of a decided result.
func (mr MarketResult) Side() (pda.Side, bool) {
	switch mr {
	case Result_Yes:
		return pda.SideYes, true
	case Result_No:
		return pda.SideNo, true
	case Result_Undecided:
		return 0, false
	}
	return 0, false
}

func (mr MarketResult) String() string {
	switch mr {
	case Result_Undecided:
		return "Undecided"
	case Result_Yes:
		return "Yes"
	case Result_No:
		return "No"
	default:
		return fmt.Sprintf("UnknownMarketResult:%d", mr)
	}
}

// MarketSize is the largest encoded Market, discriminator included.
// Accounts are allocated at this size.
const MarketSize = DiscriminatorLen +
	uint64Len + // id
	stringLenPrefix + consts.MaxQuestionLen + // question
	stringLenPrefix + consts.MaxDescriptionLen + // description
	codec.AddressLen + // creator
	codec.AddressLen + // oracle
	int64Len + // end_time
	int64Len + // resolve_time
	pda.AddressLen + // yes_mint
	pda.AddressLen + // no_mint
	pda.AddressLen + // yes_pool
	pda.AddressLen + // no_pool
	pda.AddressLen + // vault
	enumLen + // status
	enumLen + // result
	uint64Len + // total_liquidity
	int64Len + // created_at
	1 // bump

// Market is one binary question and the accounts that trade it.
// Key: MarketKey(pda.Market(ID))
type Market struct {
	ID          uint64 `json:"id"`
	Question    string `json:"question"`
	Description string `json:"description"`

	Creator codec.Address `json:"creator"`
	Oracle  codec.Address `json:"oracle"`

	EndTime     int64 `json:"endTime"`     // trading cutoff, unix seconds
	ResolveTime int64 `json:"resolveTime"` // earliest resolution, unix seconds

	YesMint pda.Address `json:"yesMint"`
	NoMint  pda.Address `json:"noMint"`
	YesPool pda.Address `json:"yesPool"`
	NoPool  pda.Address `json:"noPool"`
	Vault   pda.Address `json:"vault"`

	Status MarketStatus `json:"status"`
	Result MarketResult `json:"result"`

	// TotalLiquidity is the collateral held by Vault.
	TotalLiquidity uint64 `json:"totalLiquidity"`
	CreatedAt      int64  `json:"createdAt"`
	Bump           uint8  `json:"bump"`
}

// PoolFor returns the pool address of side.
func (m *Market) PoolFor(side pda.Side) pda.Address {
	if side == pda.SideNo {
		return m.NoPool
	}
	return m.YesPool
}

// MintFor returns the outcome-token mint of side.
func (m *Market) MintFor(side pda.Side) pda.Address {
	if side == pda.SideNo {
		return m.NoMint
	}
	return m.YesMint
}

// Validate checks the field limits and the status/result pairing.
func (m *Market) Validate() error {
	if len(m.Question) > consts.MaxQuestionLen {
		return fmt.Errorf("%w: question is %d bytes, max %d", ErrFieldTooLong, len(m.Question), consts.MaxQuestionLen)
	}
	if len(m.Description) > consts.MaxDescriptionLen {
		return fmt.Errorf("%w: description is %d bytes, max %d", ErrFieldTooLong, len(m.Description), consts.MaxDescriptionLen)
	}
	if !m.Status.Valid() || !m.Result.Valid() {
		return fmt.Errorf("%w: status %s, result %s", ErrCorruptAccount, m.Status, m.Result)
	}
	// Result is decided exactly when the market is resolved.
	_, decided := m.Result.Side()
	if decided != (m.Status == MarketStatus_Resolved) {
		return fmt.Errorf("%w: status %s with result %s", ErrCorruptAccount, m.Status, m.Result)
	}
	return nil
}

// Marshal encodes the market with its discriminator.
func (m *Market) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	p := newWriter(MarketSize)
	p.PackFixedBytes(MarketDiscriminator[:])
	p.PackLong(m.ID)
	p.PackStr(m.Question)
	p.PackStr(m.Description)
	packParty(p, m.Creator)
	packParty(p, m.Oracle)
	p.PackLong(uint64(m.EndTime))
	p.PackLong(uint64(m.ResolveTime))
	packAddress(p, m.YesMint)
	packAddress(p, m.NoMint)
	packAddress(p, m.YesPool)
	packAddress(p, m.NoPool)
	packAddress(p, m.Vault)
	p.PackByte(byte(m.Status))
	p.PackByte(byte(m.Result))
	p.PackLong(m.TotalLiquidity)
	p.PackLong(uint64(m.CreatedAt))
	p.PackByte(m.Bump)
	if p.Errored() {
		return nil, fmt.Errorf("failed to marshal market %d: %w", m.ID, p.Err)
	}
	return p.Bytes, nil
}

// UnmarshalMarket decodes a Market account. Any other account kind fails
// with ErrAccountKindMismatch.
func UnmarshalMarket(b []byte) (*Market, error) {
	p, err := newReader(b, MarketDiscriminator, "Market", MarketSize)
	if err != nil {
		return nil, err
	}
	m := &Market{}
	m.ID = p.UnpackLong()
	m.Question = p.UnpackStr()
	m.Description = p.UnpackStr()
	m.Creator = unpackParty(p)
	m.Oracle = unpackParty(p)
	m.EndTime = int64(p.UnpackLong())
	m.ResolveTime = int64(p.UnpackLong())
	m.YesMint = unpackAddress(p)
	m.NoMint = unpackAddress(p)
	m.YesPool = unpackAddress(p)
	m.NoPool = unpackAddress(p)
	m.Vault = unpackAddress(p)
	m.Status = MarketStatus(p.UnpackByte())
	m.Result = MarketResult(p.UnpackByte())
	m.TotalLiquidity = p.UnpackLong()
	m.CreatedAt = int64(p.UnpackLong())
	m.Bump = p.UnpackByte()
	if err := finish(p, "Market"); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMarket loads the market stored at addr.
func GetMarket(ctx context.Context, im state.Immutable, addr pda.Address) (*Market, error) {
	valBytes, err := getAccount(ctx, im, MarketKey(addr), addr)
	if err != nil {
		return nil, err
	}
	m, err := UnmarshalMarket(valBytes)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return m, nil
}

// SetMarket stores a market at addr.
func SetMarket(ctx context.Context, mu state.Mutable, addr pda.Address, m *Market) error {
	b, err := m.Marshal()
	if err != nil {
		return err
	}
	return mu.Insert(ctx, MarketKey(addr), b)
}
