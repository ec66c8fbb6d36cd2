package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/amm"
	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/lifecycle"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var _ chain.Action = (*InitializeMarket)(nil)

// MarketParams describes a market to create.
type MarketParams struct {
	ID          uint64        `json:"id"`
	Question    string        `json:"question"`
	Description string        `json:"description"`
	Oracle      codec.Address `json:"oracle"`
	EndTime     int64         `json:"endTime"`
	ResolveTime int64         `json:"resolveTime"`
	FeeBps      uint16        `json:"feeBps"`
}

// CreateMarket writes a new Open market and its two empty pools. Every
// check runs before the first write.
func CreateMarket(
	ctx context.Context,
	mu state.Mutable,
	params MarketParams,
	creator codec.Address,
	now int64,
) (*storage.Market, *pda.Accounts, error) {
	if err := amm.ValidateFee(params.FeeBps); err != nil {
		return nil, nil, err
	}
	if err := lifecycle.ValidateSchedule(now, params.EndTime, params.ResolveTime); err != nil {
		return nil, nil, err
	}
	accounts, err := pda.MarketAccounts(params.ID)
	if err != nil {
		return nil, nil, err
	}
	checks := []struct {
		addr   pda.Address
		exists func(context.Context, state.Immutable, pda.Address) (bool, error)
	}{
		{accounts.Market, storage.MarketExists},
		{accounts.YesPool, storage.PoolExists},
		{accounts.NoPool, storage.PoolExists},
	}
	for _, c := range checks {
		exists, err := c.exists(ctx, mu, c.addr)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, fmt.Errorf("%w: %s (market %d)", storage.ErrAccountExists, c.addr, params.ID)
		}
	}

	m := &storage.Market{
		ID:          params.ID,
		Question:    params.Question,
		Description: params.Description,
		Creator:     creator,
		Oracle:      params.Oracle,
		EndTime:     params.EndTime,
		ResolveTime: params.ResolveTime,
		YesMint:     accounts.YesMint,
		NoMint:      accounts.NoMint,
		YesPool:     accounts.YesPool,
		NoPool:      accounts.NoPool,
		Vault:       accounts.Vault,
		Status:      storage.MarketStatus_Open,
		Result:      storage.Result_Undecided,
		CreatedAt:   now,
		Bump:        accounts.MarketBump,
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	if err := storage.SetMarket(ctx, mu, accounts.Market, m); err != nil {
		return nil, nil, err
	}
	for _, side := range []pda.Side{pda.SideYes, pda.SideNo} {
		addr, bump := accounts.PoolFor(side)
		pool := &storage.Pool{
			Market: accounts.Market,
			Side:   side,
			LPMint: accounts.LPMintFor(side),
			FeeBps: params.FeeBps,
			Bump:   bump,
		}
		if err := storage.SetPool(ctx, mu, addr, pool); err != nil {
			return nil, nil, err
		}
	}
	return m, accounts, nil
}

// InitializeMarket creates a market with the actor as creator.
type InitializeMarket struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
	YesPool  pda.Address `serialize:"true" json:"yesPool"`
	NoPool   pda.Address `serialize:"true" json:"noPool"`

	Question    string        `serialize:"true" json:"question"`
	Description string        `serialize:"true" json:"description"`
	Oracle      codec.Address `serialize:"true" json:"oracle"`
	EndTime     int64         `serialize:"true" json:"endTime"`
	ResolveTime int64         `serialize:"true" json:"resolveTime"`
	FeeBps      uint16        `serialize:"true" json:"feeBps"`
}

func (*InitializeMarket) GetTypeID() uint8 {
	return consts.InitializeMarketID
}

func (im *InitializeMarket) StateKeys(codec.Address, ids.ID) state.Keys {
	return state.Keys(keys{}.
		market(im.Market, state.All).
		pool(im.YesPool, state.All).
		pool(im.NoPool, state.All))
}

func (im *InitializeMarket) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		if err := pda.Verify(pda.KindMarket, im.Market, im.MarketID, pda.EmptyAddress, pda.SideYes); err != nil {
			return nil, err
		}
		if err := pda.Verify(pda.KindPool, im.YesPool, 0, im.Market, pda.SideYes); err != nil {
			return nil, err
		}
		if err := pda.Verify(pda.KindPool, im.NoPool, 0, im.Market, pda.SideNo); err != nil {
			return nil, err
		}
		m, accounts, err := CreateMarket(ctx, b, im.params(), actor, timestamp)
		if err != nil {
			return nil, err
		}
		return &InitializeMarketResult{
			MarketID: m.ID,
			Market:   accounts.Market,
			Vault:    accounts.Vault,
			YesMint:  accounts.YesMint,
			NoMint:   accounts.NoMint,
			YesPool:  accounts.YesPool,
			NoPool:   accounts.NoPool,
		}, nil
	})
}

func (im *InitializeMarket) params() MarketParams {
	return MarketParams{
		ID:          im.MarketID,
		Question:    im.Question,
		Description: im.Description,
		Oracle:      im.Oracle,
		EndTime:     im.EndTime,
		ResolveTime: im.ResolveTime,
		FeeBps:      im.FeeBps,
	}
}

func (*InitializeMarket) ComputeUnits(chain.Rules) uint64 {
	return InitializeMarketComputeUnits
}

func (*InitializeMarket) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (im *InitializeMarket) Bytes() []byte {
	return mustMarshal(im)
}

func UnmarshalInitializeMarket(b []byte) (chain.Action, error) {
	im := &InitializeMarket{}
	if err := unmarshalTyped(b, consts.InitializeMarketID, im); err != nil {
		return nil, err
	}
	return im, nil
}

var _ codec.Typed = (*InitializeMarketResult)(nil)

type InitializeMarketResult struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
	Vault    pda.Address `serialize:"true" json:"vault"`
	YesMint  pda.Address `serialize:"true" json:"yesMint"`
	NoMint   pda.Address `serialize:"true" json:"noMint"`
	YesPool  pda.Address `serialize:"true" json:"yesPool"`
	NoPool   pda.Address `serialize:"true" json:"noPool"`
}

func (*InitializeMarketResult) GetTypeID() uint8 {
	return consts.InitializeMarketID
}
