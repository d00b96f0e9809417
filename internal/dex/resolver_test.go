package dex

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"deployScope/internal/chain"
	"deployScope/internal/model"
)

var (
	testWrapped  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	testFactory1 = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testFactory2 = common.HexToAddress("0x1000000000000000000000000000000000000002")
	testPair     = common.HexToAddress("0x2000000000000000000000000000000000000001")
	testToken    = common.HexToAddress("0x3000000000000000000000000000000000000001")
)

func testScope() chain.Scope {
	return chain.Scope{
		Name:          "eth",
		ChainID:       1,
		NativeSymbol:  "ETH",
		WrappedNative: testWrapped,
		Factories: []chain.Factory{
			{Name: "first", Address: testFactory1},
			{Name: "second", Address: testFactory2},
		},
	}
}

// fakeCaller answers eth_calls from canned per-contract state.
type fakeCaller struct {
	pairs    map[common.Address]common.Address // factory -> pair for any token
	token0   common.Address
	reserve0 *big.Int
	reserve1 *big.Int

	indexed    chain.IndexedTokenMeta
	indexedErr error

	erc20Symbol   string
	erc20Name     string
	erc20Decimals uint8
	erc20Err      error
}

func (f *fakeCaller) IndexedTokenMetadata(_ context.Context, _ common.Address) (chain.IndexedTokenMeta, error) {
	return f.indexed, f.indexedErr
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	to := *msg.To

	if pair, ok := f.pairs[to]; ok {
		parsed, _ := FactoryABI()
		return parsed.Methods["getPair"].Outputs.Pack(pair)
	}

	if to == testPair {
		parsed, _ := PairABI()
		switch {
		case matchesSelector(msg.Data, parsed.Methods["token0"].ID):
			return parsed.Methods["token0"].Outputs.Pack(f.token0)
		case matchesSelector(msg.Data, parsed.Methods["getReserves"].ID):
			return parsed.Methods["getReserves"].Outputs.Pack(f.reserve0, f.reserve1, uint32(0))
		}
	}

	if to == testToken {
		if f.erc20Err != nil {
			return nil, f.erc20Err
		}
		parsed, _ := erc20ABIStringInstance()
		switch {
		case matchesSelector(msg.Data, parsed.Methods["decimals"].ID):
			return parsed.Methods["decimals"].Outputs.Pack(f.erc20Decimals)
		case matchesSelector(msg.Data, parsed.Methods["symbol"].ID):
			return parsed.Methods["symbol"].Outputs.Pack(f.erc20Symbol)
		case matchesSelector(msg.Data, parsed.Methods["name"].ID):
			return parsed.Methods["name"].Outputs.Pack(f.erc20Name)
		}
	}

	return nil, fmt.Errorf("unexpected call to %s", to.Hex())
}

func matchesSelector(data []byte, id []byte) bool {
	return len(data) >= 4 && string(data[:4]) == string(id)
}

func umul(units int64, decimals int) *big.Int {
	out := big.NewInt(units)
	return out.Mul(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

func TestLiquidityFactoryFallback(t *testing.T) {
	caller := &fakeCaller{
		pairs: map[common.Address]common.Address{
			testFactory1: {}, // zero address: no pair on the primary factory
			testFactory2: testPair,
		},
		token0:   testWrapped,
		reserve0: umul(2, 18),    // 2 native
		reserve1: umul(1000, 18), // 1000 tokens
	}
	resolver := NewResolver(caller, testScope(), nil)

	candidate := model.TokenCandidate{Address: testToken, Chain: "eth", Symbol: "GEM", Decimals: 18}
	info := resolver.Liquidity(context.Background(), candidate)

	if !info.HasPair() {
		t.Fatal("expected pair from fallback factory")
	}
	if info.Pair != testPair {
		t.Fatalf("pair mismatch: %s", info.Pair.Hex())
	}
	if info.NativeReserve.Cmp(umul(2, 18)) != 0 {
		t.Fatalf("native reserve mismatch: %s", info.NativeReserve)
	}
	if math.Abs(info.PriceNative-0.002) > 1e-12 {
		t.Fatalf("price mismatch: %g", info.PriceNative)
	}
	if math.Abs(info.MarketCapNative-4) > 1e-12 {
		t.Fatalf("market cap mismatch: %g", info.MarketCapNative)
	}
}

func TestLiquidityReserveOrientation(t *testing.T) {
	caller := &fakeCaller{
		pairs:    map[common.Address]common.Address{testFactory1: testPair},
		token0:   testToken, // token side first: native reserve is reserve1
		reserve0: umul(1000, 18),
		reserve1: umul(2, 18),
	}
	resolver := NewResolver(caller, testScope(), nil)

	candidate := model.TokenCandidate{Address: testToken, Chain: "eth", Symbol: "GEM", Decimals: 18}
	info := resolver.Liquidity(context.Background(), candidate)

	if info.NativeReserve.Cmp(umul(2, 18)) != 0 {
		t.Fatalf("native reserve mismatch: %s", info.NativeReserve)
	}
}

func TestLiquidityNoPairAnywhere(t *testing.T) {
	caller := &fakeCaller{
		pairs: map[common.Address]common.Address{testFactory1: {}, testFactory2: {}},
	}
	resolver := NewResolver(caller, testScope(), nil)

	candidate := model.TokenCandidate{Address: testToken, Chain: "eth", Symbol: "GEM", Decimals: 18}
	info := resolver.Liquidity(context.Background(), candidate)

	if info.HasPair() {
		t.Fatal("expected no pair")
	}
	if info.NativeReserve.Sign() != 0 {
		t.Fatalf("expected zero reserve, got %s", info.NativeReserve)
	}
	if info.PriceNative != 0 || info.MarketCapNative != 0 {
		t.Fatal("expected undefined price and market cap")
	}
}

func TestCandidatePrefersIndexedSource(t *testing.T) {
	decimals := uint8(18)
	caller := &fakeCaller{
		indexed: chain.IndexedTokenMeta{Name: "Gem Token", Symbol: "GEM", Decimals: &decimals},
	}
	resolver := NewResolver(caller, testScope(), nil)

	candidate, err := resolver.Candidate(context.Background(), testToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Symbol != "GEM" || candidate.Name != "Gem Token" || candidate.Decimals != 18 {
		t.Fatalf("candidate mismatch: %+v", candidate)
	}
	if candidate.Chain != "eth" {
		t.Fatalf("chain scope mismatch: %s", candidate.Chain)
	}
}

func TestCandidateFallsBackToContractCalls(t *testing.T) {
	caller := &fakeCaller{
		indexedErr:    fmt.Errorf("not indexed yet"),
		erc20Symbol:   "ponk",
		erc20Name:     "Ponk",
		erc20Decimals: 9,
	}
	resolver := NewResolver(caller, testScope(), nil)

	candidate, err := resolver.Candidate(context.Background(), testToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Symbol != "ponk" || candidate.Decimals != 9 {
		t.Fatalf("candidate mismatch: %+v", candidate)
	}
}

func TestCandidateRejectedWithoutSymbol(t *testing.T) {
	caller := &fakeCaller{
		indexedErr: fmt.Errorf("not indexed yet"),
		erc20Err:   fmt.Errorf("execution reverted"),
	}
	resolver := NewResolver(caller, testScope(), nil)

	if _, err := resolver.Candidate(context.Background(), testToken); err == nil {
		t.Fatal("expected rejection when no source yields a symbol")
	}
}

func TestCandidateRejectsDecimalsOutOfBounds(t *testing.T) {
	for _, decimals := range []uint8{0, 5, 19} {
		caller := &fakeCaller{
			indexedErr:    fmt.Errorf("not indexed yet"),
			erc20Symbol:   "GEM",
			erc20Decimals: decimals,
		}
		resolver := NewResolver(caller, testScope(), nil)

		if _, err := resolver.Candidate(context.Background(), testToken); err == nil {
			t.Fatalf("expected rejection for decimals=%d", decimals)
		}
	}
}

func TestCandidateAcceptsDecimalsBoundary(t *testing.T) {
	for _, decimals := range []uint8{6, 18} {
		d := decimals
		caller := &fakeCaller{
			indexed: chain.IndexedTokenMeta{Symbol: "GEM", Decimals: &d},
		}
		resolver := NewResolver(caller, testScope(), nil)

		if _, err := resolver.Candidate(context.Background(), testToken); err != nil {
			t.Fatalf("decimals=%d should pass the sanity bound: %v", decimals, err)
		}
	}
}
