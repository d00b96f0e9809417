package watch

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"deployScope/internal/chain"
	"deployScope/internal/model"
)

func mustScope(t *testing.T, name string) chain.Scope {
	t.Helper()
	scope, ok := chain.LookupScope(name)
	if !ok {
		t.Fatalf("scope %q missing", name)
	}
	return scope
}

func TestLinksFollowChainScope(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	tests := []struct {
		chain       string
		explorer    string
		dexscreener string
	}{
		{"eth", "https://etherscan.io/address/", "https://dexscreener.com/ethereum/"},
		{"bsc", "https://bscscan.com/address/", "https://dexscreener.com/bsc/"},
		{"base", "https://basescan.org/address/", "https://dexscreener.com/base/"},
	}
	for _, tt := range tests {
		scope := mustScope(t, tt.chain)
		if got := explorerAddressURL(scope, addr); !strings.HasPrefix(got, tt.explorer) {
			t.Errorf("%s explorer link = %q, want prefix %q", tt.chain, got, tt.explorer)
		}
		if got := dexscreenerURL(scope, addr); !strings.HasPrefix(got, tt.dexscreener) {
			t.Errorf("%s dexscreener link = %q, want prefix %q", tt.chain, got, tt.dexscreener)
		}
	}
}

func TestImmediateMessageShowsPendingVerification(t *testing.T) {
	scope := mustScope(t, "eth")
	candidate := model.TokenCandidate{
		Address: tokenAddr, Chain: "eth", Symbol: "GEM", Name: "Gem", Decimals: 18,
	}

	got := immediateMessage(scope, candidate, deployerAddr, big.NewInt(0), model.VerificationInfo{}, true)

	if !strings.Contains(got, "Verification pending") {
		t.Errorf("message missing pending marker:\n%s", got)
	}
	if strings.Contains(got, "LP") {
		t.Errorf("immediate message must not mention liquidity:\n%s", got)
	}
}

func TestThresholdMessageCarriesLiquidity(t *testing.T) {
	scope := mustScope(t, "eth")
	candidate := model.TokenCandidate{
		Address: tokenAddr, Chain: "eth", Symbol: "GEM", Name: "Gem", Decimals: 18,
	}
	liquidity := model.LiquidityInfo{
		Pair:            pairAddr,
		NativeReserve:   nativeWei(3),
		PriceNative:     0.000012,
		MarketCapNative: 6,
	}

	got := thresholdMessage(scope, candidate, deployerAddr, nativeWei(1), liquidity, model.VerificationInfo{Verified: true, ContractName: "Gem"}, false)

	for _, want := range []string{pairAddr.Hex(), "3.0000 ETH", "Verified: Gem"} {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q:\n%s", want, got)
		}
	}
}

func TestEnrichmentMessageWithoutPair(t *testing.T) {
	scope := mustScope(t, "eth")
	candidate := model.TokenCandidate{
		Address: tokenAddr, Chain: "eth", Symbol: "GEM", Name: "Gem", Decimals: 18,
	}

	got := enrichmentMessage(scope, candidate, model.EmptyLiquidity(), model.VerificationInfo{}, nil)

	if !strings.Contains(got, "No LP found") {
		t.Errorf("message missing no-liquidity marker:\n%s", got)
	}
	if !strings.Contains(got, "Not verified") {
		t.Errorf("message missing unverified marker:\n%s", got)
	}
}

func TestEnrichmentMessageListsMarkersInOrder(t *testing.T) {
	scope := mustScope(t, "eth")
	candidate := model.TokenCandidate{
		Address: tokenAddr, Chain: "eth", Symbol: "GEM", Name: "Gem", Decimals: 18,
	}

	got := enrichmentMessage(scope, candidate, model.EmptyLiquidity(),
		model.VerificationInfo{Verified: true, ContractName: "Gem"},
		[]string{"anti-bot", "blacklist"})

	if !strings.Contains(got, "Risk markers: anti-bot, blacklist") {
		t.Errorf("message missing ordered markers:\n%s", got)
	}
}
