package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chokosabe/predictionamm/actions"
	"github.com/chokosabe/predictionamm/amm"
	"github.com/chokosabe/predictionamm/pda"
)

func TestActionParserDecodesRegisteredActions(t *testing.T) {
	require := require.New(t)
	require.NotNil(Parser)

	market, _, err := pda.Market(4)
	require.NoError(err)
	pool, _, err := pda.Pool(market, pda.SideNo)
	require.NoError(err)

	swap := &actions.Swap{
		MarketID:     4,
		Market:       market,
		Side:         pda.SideNo,
		Pool:         pool,
		Direction:    amm.OutcomeToCollateral,
		AmountIn:     250,
		MinAmountOut: 10,
	}
	got, err := ActionParser.Unmarshal(swap.Bytes())
	require.NoError(err)
	require.Equal(swap, got)

	lock := &actions.Lock{MarketID: 4, Market: market}
	got, err = ActionParser.Unmarshal(lock.Bytes())
	require.NoError(err)
	require.Equal(lock, got)
}
