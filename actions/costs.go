package actions

// Compute units charged per action. Actions that touch both pools' ledgers
// or create accounts cost more.
const (
	InitializeMarketComputeUnits uint64 = 2_000
	MintSetComputeUnits          uint64 = 400
	MergeSetComputeUnits         uint64 = 400
	AddLiquidityComputeUnits     uint64 = 600
	RemoveLiquidityComputeUnits  uint64 = 600
	SwapComputeUnits             uint64 = 500
	LockComputeUnits             uint64 = 100
	ResolveComputeUnits          uint64 = 150
	RedeemComputeUnits           uint64 = 300
	RedeemLiquidityComputeUnits  uint64 = 600
)
