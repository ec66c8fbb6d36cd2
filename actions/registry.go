package actions

import (
	"errors"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
)

// Register adds every action and its result to the parsers.
func Register(actionParser *codec.TypeParser[chain.Action], outputParser *codec.TypeParser[codec.Typed]) error {
	return errors.Join(
		actionParser.Register(&InitializeMarket{}, UnmarshalInitializeMarket),
		actionParser.Register(&MintSet{}, UnmarshalMintSet),
		actionParser.Register(&MergeSet{}, UnmarshalMergeSet),
		actionParser.Register(&AddLiquidity{}, UnmarshalAddLiquidity),
		actionParser.Register(&RemoveLiquidity{}, UnmarshalRemoveLiquidity),
		actionParser.Register(&Swap{}, UnmarshalSwap),
		actionParser.Register(&Lock{}, UnmarshalLock),
		actionParser.Register(&Resolve{}, UnmarshalResolve),
		actionParser.Register(&Redeem{}, UnmarshalRedeem),
		actionParser.Register(&RedeemLiquidity{}, UnmarshalRedeemLiquidity),

		outputParser.Register(&InitializeMarketResult{}, nil),
		outputParser.Register(&MintSetResult{}, nil),
		outputParser.Register(&MergeSetResult{}, nil),
		outputParser.Register(&AddLiquidityResult{}, nil),
		outputParser.Register(&RemoveLiquidityResult{}, nil),
		outputParser.Register(&SwapResult{}, nil),
		outputParser.Register(&LockResult{}, nil),
		outputParser.Register(&ResolveResult{}, nil),
		outputParser.Register(&RedeemResult{}, nil),
		outputParser.Register(&RedeemLiquidityResult{}, nil),
	)
}
