package storage

import (
	"bytes"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/chokosabe/predictionamm/pda"
)

// DiscriminatorLen is the size of the tag every account starts with.
const DiscriminatorLen = 8

// Kind tags of the two account types.
var (
	MarketDiscriminator = discriminator("Market")
	PoolDiscriminator   = discriminator("Pool")
)

func discriminator(name string) [DiscriminatorLen]byte {
	var d [DiscriminatorLen]byte
	copy(d[:], hashing.ComputeHash256([]byte("account:"+name)))
	return d
}

const (
	stringLenPrefix = wrappers.ShortLen
	uint64Len       = wrappers.LongLen
	int64Len        = wrappers.LongLen
	enumLen         = wrappers.ByteLen
)

func newWriter(size int) *wrappers.Packer {
	return &wrappers.Packer{
		Bytes:   make([]byte, 0, size),
		MaxSize: size,
	}
}

// newReader checks the discriminator and returns a packer positioned on
// the first field.
func newReader(b []byte, want [DiscriminatorLen]byte, kind string, maxSize int) (*wrappers.Packer, error) {
	if len(b) < DiscriminatorLen {
		return nil, fmt.Errorf("%w: %s account is %d bytes", ErrAccountMalformed, kind, len(b))
	}
	if !bytes.Equal(b[:DiscriminatorLen], want[:]) {
		return nil, fmt.Errorf("%w: expected %s account, found tag %x", ErrAccountKindMismatch, kind, b[:DiscriminatorLen])
	}
	if len(b) > maxSize {
		return nil, fmt.Errorf("%w: %s account is %d bytes, max %d", ErrAccountMalformed, kind, len(b), maxSize)
	}
	return &wrappers.Packer{Bytes: b, Offset: DiscriminatorLen}, nil
}

// finish reports unpack errors and trailing bytes.
func finish(p *wrappers.Packer, kind string) error {
	if p.Errored() {
		return fmt.Errorf("%w: %s account: %v", ErrAccountMalformed, kind, p.Err)
	}
	if p.Offset != len(p.Bytes) {
		return fmt.Errorf("%w: %s account has %d trailing bytes", ErrAccountMalformed, kind, len(p.Bytes)-p.Offset)
	}
	return nil
}

func packAddress(p *wrappers.Packer, a pda.Address) {
	p.PackFixedBytes(a[:])
}

func unpackAddress(p *wrappers.Packer) pda.Address {
	var a pda.Address
	copy(a[:], p.UnpackFixedBytes(pda.AddressLen))
	return a
}

func packParty(p *wrappers.Packer, a codec.Address) {
	p.PackFixedBytes(a[:])
}

func unpackParty(p *wrappers.Packer) codec.Address {
	var a codec.Address
	copy(a[:], p.UnpackFixedBytes(codec.AddressLen))
	return a
}
