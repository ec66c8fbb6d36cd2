// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"
)

const (
	Name   = "predictionamm"
	Symbol = "PAMM"
	HRP    = "pamm"
)

// Action type IDs. Results reuse the ID of the action that produced them.
const (
	InitializeMarketID uint8 = iota
	MintSetID
	MergeSetID
	AddLiquidityID
	RemoveLiquidityID
	SwapID
	LockID
	ResolveID
	RedeemID
	RedeemLiquidityID
)

const (
	// MaxQuestionLen and MaxDescriptionLen are byte limits.
	MaxQuestionLen    = 280
	MaxDescriptionLen = 1000

	// BpsDenominator is 100%. Pool fees must be strictly below it.
	BpsDenominator uint64 = 10_000

	// DefaultFeeBps is used by genesis markets that do not set a fee.
	DefaultFeeBps uint16 = 30

	// MaxActionSize bounds every serialized action. InitializeMarket with
	// full-length text is the largest.
	MaxActionSize = 2048

	// ProgramAccountTypeID prefixes ledger owners that are program
	// accounts (pools, vaults) rather than signers.
	ProgramAccountTypeID uint8 = 0xfe

	// CollateralMintSeed derives the collateral mint under the program.
	CollateralMintSeed = "collateral_mint"
)

var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}

var Version = &version.Semantic{
	Major: 0,
	Minor: 1,
	Patch: 0,
}
