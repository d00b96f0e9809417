package model

import "math/big"

var weiPerNative = new(big.Float).SetFloat64(1e18)

// WeiToNative converts a wei amount into native units as a float. Precision
// loss past ~15 significant digits is acceptable for display and threshold
// comparison.
func WeiToNative(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerNative).Float64()
	return out
}
