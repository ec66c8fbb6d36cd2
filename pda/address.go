package pda

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/mr-tron/base58"
)

// AddressLen is the byte length of a derived account address.
const AddressLen = 32

var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a program-owned account. It is never a point on the
// ed25519 curve, so no private key can sign for it.
type Address [AddressLen]byte

var EmptyAddress = Address{}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == EmptyAddress
}

// ID views the address as an avalanchego ID. Ledger owners for program
// accounts are built from it.
func (a Address) ID() ids.ID {
	return ids.ID(a)
}

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrInvalidAddress, len(b), AddressLen)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// MarshalText lets addresses appear as base58 in JSON.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
