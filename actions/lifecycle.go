package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/lifecycle"
	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	_ chain.Action = (*Lock)(nil)
	_ chain.Action = (*Resolve)(nil)
)

// Lock closes trading once the market's end time has passed. Anyone may
// submit it.
type Lock struct {
	MarketID uint64      `serialize:"true" json:"marketId"`
	Market   pda.Address `serialize:"true" json:"market"`
}

func (*Lock) GetTypeID() uint8 {
	return consts.LockID
}

func (l *Lock) StateKeys(codec.Address, ids.ID) state.Keys {
	return state.Keys(keys{}.market(l.Market, state.Read|state.Write))
}

func (l *Lock) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	_ codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, l.MarketID, l.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.Lock(m, timestamp); err != nil {
			return nil, err
		}
		if err := storage.SetMarket(ctx, b, l.Market, m); err != nil {
			return nil, err
		}
		return &LockResult{MarketID: m.ID, Status: m.Status}, nil
	})
}

func (*Lock) ComputeUnits(chain.Rules) uint64 {
	return LockComputeUnits
}

func (*Lock) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (l *Lock) Bytes() []byte {
	return mustMarshal(l)
}

func UnmarshalLock(b []byte) (chain.Action, error) {
	l := &Lock{}
	if err := unmarshalTyped(b, consts.LockID, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Resolve records the final result. Only the market's oracle may submit
// it, and an open market is locked on the way.
type Resolve struct {
	MarketID uint64               `serialize:"true" json:"marketId"`
	Market   pda.Address          `serialize:"true" json:"market"`
	Result   storage.MarketResult `serialize:"true" json:"result"`
}

func (*Resolve) GetTypeID() uint8 {
	return consts.ResolveID
}

func (r *Resolve) StateKeys(codec.Address, ids.ID) state.Keys {
	return state.Keys(keys{}.market(r.Market, state.Read|state.Write))
}

func (r *Resolve) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	return inBatch(ctx, mu, func(b *storage.Batch) (codec.Typed, error) {
		m, err := loadMarket(ctx, b, r.MarketID, r.Market)
		if err != nil {
			return nil, err
		}
		if err := lifecycle.Resolve(m, actor, timestamp, r.Result); err != nil {
			return nil, err
		}
		if err := storage.SetMarket(ctx, b, r.Market, m); err != nil {
			return nil, err
		}
		return &ResolveResult{MarketID: m.ID, Result: m.Result}, nil
	})
}

func (*Resolve) ComputeUnits(chain.Rules) uint64 {
	return ResolveComputeUnits
}

func (*Resolve) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (r *Resolve) Bytes() []byte {
	return mustMarshal(r)
}

func UnmarshalResolve(b []byte) (chain.Action, error) {
	r := &Resolve{}
	if err := unmarshalTyped(b, consts.ResolveID, r); err != nil {
		return nil, err
	}
	return r, nil
}

var (
	_ codec.Typed = (*LockResult)(nil)
	_ codec.Typed = (*ResolveResult)(nil)
)

type LockResult struct {
	MarketID uint64               `serialize:"true" json:"marketId"`
	Status   storage.MarketStatus `serialize:"true" json:"status"`
}

func (*LockResult) GetTypeID() uint8 {
	return consts.LockID
}

type ResolveResult struct {
	MarketID uint64               `serialize:"true" json:"marketId"`
	Result   storage.MarketResult `serialize:"true" json:"result"`
}

func (*ResolveResult) GetTypeID() uint8 {
	return consts.ResolveID
}
