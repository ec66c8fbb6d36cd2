package actions

import (
	"errors"

	"github.com/chokosabe/predictionamm/storage"
)

var (
	ErrEmptyAction      = errors.New("cannot unmarshal empty action bytes")
	ErrUnexpectedTypeID = errors.New("unexpected action type ID")
	ErrZeroAmount       = storage.ErrZeroAmount
	ErrMarketMismatch   = errors.New("account belongs to a different market")
)
