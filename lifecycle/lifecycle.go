// Package lifecycle moves markets through Open -> Locked -> Resolved.
//
// Transitions only ever move forward. Each function validates everything
// before touching the market, so a returned error means the market is
// unchanged.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ava-labs/hypersdk/codec"

	"github.com/chokosabe/predictionamm/pda"
	"github.com/chokosabe/predictionamm/storage"
)

var (
	ErrMarketStillTrading = errors.New("market still trading")
	ErrResolutionTooEarly = errors.New("resolution too early")
	ErrMarketNotTrading   = errors.New("market not trading")
	ErrMarketFinalized    = errors.New("market finalized")
	ErrAlreadyResolved    = fmt.Errorf("%w: already resolved", ErrMarketFinalized)
	ErrMarketNotResolved  = errors.New("market not resolved")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidResult      = errors.New("invalid market result")
	ErrInvalidSchedule    = errors.New("end time must be before resolve time")
	ErrEndTimeInPast      = errors.New("market end time is in the past")
)

// ValidateSchedule checks the timing fields of a market being created.
func ValidateSchedule(now, endTime, resolveTime int64) error {
	if endTime >= resolveTime {
		return fmt.Errorf("%w: end %d, resolve %d", ErrInvalidSchedule, endTime, resolveTime)
	}
	if endTime <= now {
		return fmt.Errorf("%w: end %d, now %d", ErrEndTimeInPast, endTime, now)
	}
	return nil
}

// RequireTrading gates every pool mutation. A market past its end time is
// no longer trading even before someone locks it.
func RequireTrading(m *storage.Market, now int64) error {
	switch m.Status {
	case storage.MarketStatus_Open:
		if now >= m.EndTime {
			return fmt.Errorf("%w: market %d ended at %d (now %d)", ErrMarketNotTrading, m.ID, m.EndTime, now)
		}
		return nil
	case storage.MarketStatus_Locked, storage.MarketStatus_Resolved:
		return fmt.Errorf("%w: market %d is %s", ErrMarketNotTrading, m.ID, m.Status)
	}
	return fmt.Errorf("%w: unknown status %s", storage.ErrCorruptAccount, m.Status)
}

// Lock moves an open market to Locked once its end time has passed.
// Anyone may call it.
func Lock(m *storage.Market, now int64) error {
	switch m.Status {
	case storage.MarketStatus_Open:
		if now < m.EndTime {
			return fmt.Errorf("%w: market %d ends at %d (now %d)", ErrMarketStillTrading, m.ID, m.EndTime, now)
		}
		m.Status = storage.MarketStatus_Locked
		return nil
	case storage.MarketStatus_Locked:
		return fmt.Errorf("%w: market %d is already locked", ErrMarketNotTrading, m.ID)
	case storage.MarketStatus_Resolved:
		return fmt.Errorf("%w: market %d", ErrMarketFinalized, m.ID)
	}
	return fmt.Errorf("%w: unknown status %s", storage.ErrCorruptAccount, m.Status)
}

// Resolve records the oracle's decision. An open market whose end time has
// passed is locked on the way.
func Resolve(m *storage.Market, caller codec.Address, now int64, result storage.MarketResult) error {
	switch m.Status {
	case storage.MarketStatus_Resolved:
		return fmt.Errorf("%w: market %d resolved %s", ErrAlreadyResolved, m.ID, m.Result)
	case storage.MarketStatus_Open, storage.MarketStatus_Locked:
	default:
		return fmt.Errorf("%w: unknown status %s", storage.ErrCorruptAccount, m.Status)
	}
	if caller != m.Oracle {
		return fmt.Errorf("%w: %s is not the oracle of market %d", ErrUnauthorized, caller, m.ID)
	}
	if _, decided := result.Side(); !decided {
		return fmt.Errorf("%w: %s", ErrInvalidResult, result)
	}
	if now < m.ResolveTime {
		return fmt.Errorf("%w: market %d resolves at %d (now %d)", ErrResolutionTooEarly, m.ID, m.ResolveTime, now)
	}
	if m.Status == storage.MarketStatus_Open {
		if err := Lock(m, now); err != nil {
			return err
		}
	}
	m.Status = storage.MarketStatus_Resolved
	m.Result = result
	return nil
}

// RequireResolved returns the winning side of a resolved market.
func RequireResolved(m *storage.Market) (pda.Side, error) {
	if m.Status != storage.MarketStatus_Resolved {
		return 0, fmt.Errorf("%w: market %d is %s", ErrMarketNotResolved, m.ID, m.Status)
	}
	side, ok := m.Result.Side()
	if !ok {
		return 0, fmt.Errorf("%w: resolved market %d has result %s", storage.ErrCorruptAccount, m.ID, m.Result)
	}
	return side, nil
}
