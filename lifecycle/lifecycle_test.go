package lifecycle

import (
	"testing"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/stretchr/testify/require"

	"github.com/chokosabe/predictionamm/storage"
)

const (
	endTime     int64 = 1_000
	resolveTime int64 = endTime + 3600
)

var (
	oracle   = codec.Address{0x01, 0x02, 0x03}
	stranger = codec.Address{0x09}
)

func openMarket() *storage.Market {
	return &storage.Market{
		ID:          1,
		Oracle:      oracle,
		EndTime:     endTime,
		ResolveTime: resolveTime,
		Status:      storage.MarketStatus_Open,
		Result:      storage.Result_Undecided,
	}
}

func TestValidateSchedule(t *testing.T) {
	require := require.New(t)
	require.NoError(ValidateSchedule(0, endTime, resolveTime))
	require.ErrorIs(ValidateSchedule(0, resolveTime, resolveTime), ErrInvalidSchedule)
	require.ErrorIs(ValidateSchedule(0, resolveTime+1, resolveTime), ErrInvalidSchedule)
	require.ErrorIs(ValidateSchedule(endTime, endTime, resolveTime), ErrEndTimeInPast)
}

func TestLock(t *testing.T) {
	require := require.New(t)
	m := openMarket()

	require.ErrorIs(Lock(m, endTime-1), ErrMarketStillTrading)
	require.Equal(storage.MarketStatus_Open, m.Status)

	require.NoError(Lock(m, endTime))
	require.Equal(storage.MarketStatus_Locked, m.Status)
	require.Equal(storage.Result_Undecided, m.Result)

	require.ErrorIs(Lock(m, endTime+1), ErrMarketNotTrading)
}

func TestResolve(t *testing.T) {
	require := require.New(t)
	m := openMarket()
	require.NoError(Lock(m, endTime))

	require.ErrorIs(Resolve(m, stranger, resolveTime, storage.Result_Yes), ErrUnauthorized)
	require.ErrorIs(Resolve(m, oracle, resolveTime-1, storage.Result_Yes), ErrResolutionTooEarly)
	require.ErrorIs(Resolve(m, oracle, resolveTime, storage.Result_Undecided), ErrInvalidResult)
	require.ErrorIs(Resolve(m, oracle, resolveTime, storage.MarketResult(7)), ErrInvalidResult)
	require.Equal(storage.MarketStatus_Locked, m.Status)

	require.NoError(Resolve(m, oracle, resolveTime, storage.Result_No))
	require.Equal(storage.MarketStatus_Resolved, m.Status)
	require.Equal(storage.Result_No, m.Result)

	err := Resolve(m, oracle, resolveTime+10, storage.Result_Yes)
	require.ErrorIs(err, ErrAlreadyResolved)
	require.ErrorIs(err, ErrMarketFinalized)
	require.Equal(storage.Result_No, m.Result)

	require.ErrorIs(Lock(m, resolveTime), ErrMarketFinalized)
}

func TestResolveLocksOpenMarket(t *testing.T) {
	require := require.New(t)
	m := openMarket()
	require.NoError(Resolve(m, oracle, resolveTime, storage.Result_Yes))
	require.Equal(storage.MarketStatus_Resolved, m.Status)
	require.Equal(storage.Result_Yes, m.Result)
}

func TestResolveBeforeEndTime(t *testing.T) {
	require := require.New(t)
	m := openMarket()
	// A market whose resolve time is not yet reached is rejected on timing
	// regardless of whether it was locked.
	require.ErrorIs(Resolve(m, oracle, endTime-1, storage.Result_Yes), ErrResolutionTooEarly)
	require.Equal(storage.MarketStatus_Open, m.Status)
}

func TestRequireTrading(t *testing.T) {
	require := require.New(t)
	m := openMarket()
	require.NoError(RequireTrading(m, endTime-1))
	require.ErrorIs(RequireTrading(m, endTime), ErrMarketNotTrading)

	require.NoError(Lock(m, endTime))
	require.ErrorIs(RequireTrading(m, 0), ErrMarketNotTrading)
}

func TestRequireResolved(t *testing.T) {
	require := require.New(t)
	m := openMarket()
	_, err := RequireResolved(m)
	require.ErrorIs(err, ErrMarketNotResolved)

	require.NoError(Resolve(m, oracle, resolveTime, storage.Result_Yes))
	side, err := RequireResolved(m)
	require.NoError(err)
	require.Equal("Yes", side.String())
}

// Walks every status through every transition and checks that status never
// moves backwards and result is decided exactly when resolved.
func TestStatusNeverRegresses(t *testing.T) {
	require := require.New(t)
	m := openMarket()
	times := []int64{0, endTime - 1, endTime, resolveTime - 1, resolveTime, resolveTime + 1}
	prev := m.Status
	for _, now := range times {
		for _, step := range []func() error{
			func() error { return Lock(m, now) },
			func() error { return Resolve(m, stranger, now, storage.Result_Yes) },
			func() error { return Resolve(m, oracle, now, storage.Result_Yes) },
		} {
			_ = step()
			require.GreaterOrEqual(uint8(m.Status), uint8(prev))
			_, decided := m.Result.Side()
			require.Equal(m.Status == storage.MarketStatus_Resolved, decided)
			prev = m.Status
		}
	}
	require.Equal(storage.MarketStatus_Resolved, m.Status)
}
