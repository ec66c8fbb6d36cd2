package actions

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/fees"
)

var _ chain.Rules = (*testRules)(nil)

// testRules satisfies chain.Rules for Execute. No action reads it.
type testRules struct {
	chainID ids.ID
	now     int64
}

func (r *testRules) GetTime() int64 { return r.now }
func (*testRules) MaxActionGas(chain.Action) uint64 { return 0 }
func (*testRules) MaxBlockGas() uint64 { return 0 }
func (*testRules) FetchCustom(string) (any, bool) { return nil, false }
func (*testRules) GetBaseComputeUnits() uint64 { return 1 }
func (r *testRules) GetChainID() ids.ID { return r.chainID }
func (*testRules) GetMaxActionsPerTx() uint8 { return 1 }
func (*testRules) GetMaxBlockUnits() fees.Dimensions { return fees.Dimensions{} }
func (*testRules) GetMinBlockGap() int64 { return 0 }
func (*testRules) GetMinEmptyBlockGap() int64 { return 0 }
func (*testRules) GetMinUnitPrice() fees.Dimensions { return fees.Dimensions{} }
func (*testRules) GetNetworkID() uint32 { return 0 }
func (*testRules) GetSponsorStateKeysMaxChunks() []uint16 { return nil }
func (*testRules) GetStorageKeyAllocateUnits() uint64 { return 0 }
func (*testRules) GetStorageKeyReadUnits() uint64 { return 0 }
func (*testRules) GetStorageKeyWriteUnits() uint64 { return 0 }
func (*testRules) GetStorageValueAllocateUnits() uint64 { return 0 }
func (*testRules) GetStorageValueReadUnits() uint64 { return 0 }
func (*testRules) GetStorageValueWriteUnits() uint64 { return 0 }
func (*testRules) GetUnitPriceChangeDenominator() fees.Dimensions { return fees.Dimensions{} }
func (*testRules) GetValidityWindow() int64 { return 60 }
func (*testRules) GetWindowTargetUnits() fees.Dimensions { return fees.Dimensions{} }
