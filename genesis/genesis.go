package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"go.uber.org/zap"

	"github.com/chokosabe/predictionamm/actions"
	"github.com/chokosabe/predictionamm/consts"
	"github.com/chokosabe/predictionamm/storage"
)

// Allocation credits collateral to a bech32 address.
type Allocation struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// Market is a market created with the chain.
type Market struct {
	ID          uint64 `json:"id"`
	Question    string `json:"question"`
	Description string `json:"description"`
	Oracle      string `json:"oracle"` // bech32
	EndTime     int64  `json:"endTime"`
	ResolveTime int64  `json:"resolveTime"`
	// FeeBps defaults to consts.DefaultFeeBps when omitted.
	FeeBps *uint16 `json:"feeBps,omitempty"`
}

// Genesis is the initial chain state.
type Genesis struct {
	Magic     uint64 `json:"magic"`
	Timestamp int64  `json:"timestamp"` // unix seconds, the clock markets are created at

	Allocations []Allocation `json:"allocations"`
	Markets     []Market     `json:"markets"`

	log logging.Logger
}

func New(log logging.Logger) *Genesis {
	return &Genesis{log: log}
}

func (g *Genesis) Load(raw []byte) error {
	return json.Unmarshal(raw, g)
}

func (g *Genesis) GetMagic() uint64 {
	return g.Magic
}

func (g *Genesis) GetTimestamp() int64 {
	return g.Timestamp
}

func (g *Genesis) logger() logging.Logger {
	if g.log == nil {
		return logging.NoLog{}
	}
	return g.log
}

// InitializeState credits every allocation and creates every market. A
// market that fails validation fails the whole genesis.
func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable, bh chain.BalanceHandler) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState")
	defer span.End()

	log := g.logger()
	for _, alloc := range g.Allocations {
		addr, err := ParseAddress(alloc.Address)
		if err != nil {
			return err
		}
		if err := bh.AddBalance(ctx, addr, mu, alloc.Balance); err != nil {
			return fmt.Errorf("failed to allocate %d to %s: %w", alloc.Balance, alloc.Address, err)
		}
		log.Info("allocated collateral",
			zap.String("address", alloc.Address),
			zap.Uint64("balance", alloc.Balance),
		)
	}

	b := storage.NewBatch(mu)
	for _, gm := range g.Markets {
		params, err := gm.params()
		if err != nil {
			return err
		}
		m, accounts, err := actions.CreateMarket(ctx, b, params, codec.EmptyAddress, g.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to create genesis market %d: %w", gm.ID, err)
		}
		log.Info("created market",
			zap.Uint64("id", m.ID),
			zap.Stringer("market", accounts.Market),
			zap.Stringer("vault", accounts.Vault),
			zap.Int64("endTime", m.EndTime),
			zap.Int64("resolveTime", m.ResolveTime),
		)
	}
	return b.Commit(ctx)
}

func (gm *Market) params() (actions.MarketParams, error) {
	oracle, err := ParseAddress(gm.Oracle)
	if err != nil {
		return actions.MarketParams{}, fmt.Errorf("market %d oracle: %w", gm.ID, err)
	}
	fee := consts.DefaultFeeBps
	if gm.FeeBps != nil {
		fee = *gm.FeeBps
	}
	return actions.MarketParams{
		ID:          gm.ID,
		Question:    gm.Question,
		Description: gm.Description,
		Oracle:      oracle,
		EndTime:     gm.EndTime,
		ResolveTime: gm.ResolveTime,
		FeeBps:      fee,
	}, nil
}

// ParseAddress decodes a bech32 address of any HRP.
func ParseAddress(s string) (codec.Address, error) {
	_, data5bit, err := bech32.Decode(s)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("failed to decode bech32 address %s: %w", s, err)
	}
	data8bit, err := bech32.ConvertBits(data5bit, 5, 8, false)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("failed to convert bech32 data bits for address %s: %w", s, err)
	}
	if len(data8bit) != codec.AddressLen {
		return codec.EmptyAddress, fmt.Errorf("decoded address %s is %d bytes, expected %d", s, len(data8bit), codec.AddressLen)
	}
	var addr codec.Address
	copy(addr[:], data8bit)
	return addr, nil
}

// FormatAddress encodes addr as bech32 under consts.HRP.
func FormatAddress(addr codec.Address) (string, error) {
	data5bit, err := bech32.ConvertBits(addr[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(consts.HRP, data5bit)
}

func GetDefault() *Genesis {
	return &Genesis{
		Magic:     12345,
		Timestamp: time.Now().Unix(),
		log:       logging.NoLog{},
	}
}
