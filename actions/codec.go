package actions

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/chokosabe/predictionamm/consts"
)

// marshalTyped packs the type ID followed by the serialized fields of v.
func marshalTyped(v codec.Typed) ([]byte, error) {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, 256),
		MaxSize: consts.MaxActionSize,
	}
	p.PackByte(v.GetTypeID())
	if err := codec.LinearCodec.MarshalInto(v, p); err != nil {
		return nil, fmt.Errorf("failed to marshal type %d: %w", v.GetTypeID(), err)
	}
	return p.Bytes, nil
}

// mustMarshal is for actions, whose fields are bounded before they are
// ever signed.
func mustMarshal(v codec.Typed) []byte {
	b, err := marshalTyped(v)
	if err != nil {
		panic(err)
	}
	return b
}

// unmarshalTyped checks the leading type ID and fills dst from the rest.
func unmarshalTyped(b []byte, typeID uint8, dst codec.Typed) error {
	if len(b) == 0 {
		return ErrEmptyAction
	}
	if b[0] != typeID {
		return fmt.Errorf("%w: %d != %d", ErrUnexpectedTypeID, b[0], typeID)
	}
	if len(b) > consts.MaxActionSize {
		return fmt.Errorf("type %d is %d bytes, max %d", typeID, len(b), consts.MaxActionSize)
	}
	p := &wrappers.Packer{Bytes: b[1:]}
	if err := codec.LinearCodec.UnmarshalFrom(p, dst); err != nil {
		return fmt.Errorf("failed to unmarshal type %d: %w", typeID, err)
	}
	if p.Offset != len(p.Bytes) {
		return fmt.Errorf("type %d has %d trailing bytes", typeID, len(p.Bytes)-p.Offset)
	}
	return nil
}
