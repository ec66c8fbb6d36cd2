package genesis

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/state"

	hgenesis "github.com/ava-labs/hypersdk/genesis"
)

var _ hgenesis.GenesisAndRuleFactory = (*Factory)(nil)

// Factory reads one genesis file twice: the runtime's default genesis for
// rules and branch factor, and this package's allocations and markets.
type Factory struct {
	log logging.Logger
}

func NewFactory(log logging.Logger) *Factory {
	return &Factory{log: log}
}

func (f *Factory) Load(genesisBytes []byte, upgradeBytes []byte, networkID uint32, chainID ids.ID) (hgenesis.Genesis, chain.RuleFactory, error) {
	base, rules, err := (&hgenesis.DefaultGenesisFactory{}).Load(genesisBytes, upgradeBytes, networkID, chainID)
	if err != nil {
		return nil, nil, err
	}
	g := New(f.log)
	if err := g.Load(genesisBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to parse markets from genesis: %w", err)
	}
	return &chainGenesis{Genesis: base, markets: g}, rules, nil
}

type chainGenesis struct {
	hgenesis.Genesis
	markets *Genesis
}

func (c *chainGenesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable, bh chain.BalanceHandler) error {
	if err := c.Genesis.InitializeState(ctx, tracer, mu, bh); err != nil {
		return err
	}
	return c.markets.InitializeState(ctx, tracer, mu, bh)
}
