package watch

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"deployScope/internal/chain"
	"deployScope/internal/model"
)

// Message building for alerts. All links are derived from the candidate's
// own chain scope.

func explorerAddressURL(scope chain.Scope, address common.Address) string {
	return scope.ExplorerURL + "/address/" + address.Hex()
}

func dexscreenerURL(scope chain.Scope, address common.Address) string {
	return "https://dexscreener.com/" + scope.DexscreenerSlug + "/" + address.Hex()
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func tokenHeader(scope chain.Scope, candidate model.TokenCandidate) []string {
	name := candidate.Name
	if name == "" {
		name = "unknown"
	}
	return []string{
		"🚨 *New Token Detected!*",
		"",
		fmt.Sprintf("*Token:* %s (%s)", candidate.Symbol, name),
		fmt.Sprintf("📬 `%s`", candidate.Address.Hex()),
		fmt.Sprintf("🔗 [Explorer](%s)", explorerAddressURL(scope, candidate.Address)),
		fmt.Sprintf("📈 [Dexscreener](%s)", dexscreenerURL(scope, candidate.Address)),
	}
}

func deployerLine(scope chain.Scope, deployer common.Address, balance *big.Int) string {
	if deployer == (common.Address{}) {
		return "👤 Deployer: unknown"
	}
	return fmt.Sprintf("👤 Deployer: `%s` (%s %s)",
		deployer.Hex(), formatAmount(model.WeiToNative(balance)), scope.NativeSymbol)
}

func verificationLine(info model.VerificationInfo, pending bool) string {
	switch {
	case info.Verified && info.ContractName != "":
		return "✅ Verified: " + info.ContractName
	case info.Verified:
		return "✅ Verified"
	case pending:
		return "⏳ Verification pending"
	default:
		return "❔ Not verified"
	}
}

func liquidityLines(scope chain.Scope, liquidity model.LiquidityInfo) []string {
	if !liquidity.HasPair() {
		return []string{"💧 No LP found"}
	}
	lines := []string{
		fmt.Sprintf("💧 LP: `%s`", liquidity.Pair.Hex()),
		fmt.Sprintf("💰 Reserve: %s %s", formatAmount(model.WeiToNative(liquidity.NativeReserve)), scope.NativeSymbol),
	}
	if liquidity.PriceNative > 0 {
		lines = append(lines, fmt.Sprintf("🏷 Price: %.8g %s | MCap: %s %s",
			liquidity.PriceNative, scope.NativeSymbol,
			formatAmount(liquidity.MarketCapNative), scope.NativeSymbol))
	}
	return lines
}

// immediateMessage is the ticker-match alert sent before liquidity or
// verification data is ready.
func immediateMessage(scope chain.Scope, candidate model.TokenCandidate, deployer common.Address, deployerBalance *big.Int, verification model.VerificationInfo, verificationPending bool) string {
	lines := tokenHeader(scope, candidate)
	lines = append(lines,
		deployerLine(scope, deployer, deployerBalance),
		verificationLine(verification, verificationPending),
	)
	return strings.Join(lines, "\n")
}

// thresholdMessage is the alert for threshold filters; liquidity is already
// resolved on this path.
func thresholdMessage(scope chain.Scope, candidate model.TokenCandidate, deployer common.Address, deployerBalance *big.Int, liquidity model.LiquidityInfo, verification model.VerificationInfo, verificationPending bool) string {
	lines := tokenHeader(scope, candidate)
	lines = append(lines, deployerLine(scope, deployer, deployerBalance))
	lines = append(lines, liquidityLines(scope, liquidity)...)
	lines = append(lines, verificationLine(verification, verificationPending))
	return strings.Join(lines, "\n")
}

// enrichmentMessage is the follow-up to an immediate alert once liquidity,
// verification, and the pattern scan have settled.
func enrichmentMessage(scope chain.Scope, candidate model.TokenCandidate, liquidity model.LiquidityInfo, verification model.VerificationInfo, markers []string) string {
	lines := []string{
		fmt.Sprintf("📊 *%s* enrichment", candidate.Symbol),
	}
	lines = append(lines, liquidityLines(scope, liquidity)...)
	lines = append(lines, verificationLine(verification, false))
	if len(markers) > 0 {
		lines = append(lines, "🛡 Risk markers: "+strings.Join(markers, ", "))
	} else if verification.Verified {
		lines = append(lines, "🛡 No risk markers detected")
	}
	return strings.Join(lines, "\n")
}
