package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LiquidityInfo describes the paired-liquidity state of a candidate against
// the chain's wrapped native asset. A token seconds after deployment very
// often has no pair at all; that is a valid state, not an error.
type LiquidityInfo struct {
	Pair            common.Address
	NativeReserve   *big.Int
	PriceNative     float64
	MarketCapNative float64
}

// EmptyLiquidity returns the no-pair state with a zero reserve.
func EmptyLiquidity() LiquidityInfo {
	return LiquidityInfo{NativeReserve: new(big.Int)}
}

// HasPair reports whether a liquidity pair was found on any factory.
func (l LiquidityInfo) HasPair() bool {
	return l.Pair != (common.Address{})
}
