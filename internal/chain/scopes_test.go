package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLookupScopeKnownChains(t *testing.T) {
	for _, name := range []string{"eth", "bsc", "base"} {
		scope, ok := LookupScope(name)
		if !ok {
			t.Fatalf("scope %s not found", name)
		}
		if scope.Name != name {
			t.Fatalf("scope name mismatch: %s != %s", scope.Name, name)
		}
		if scope.WrappedNative == (common.Address{}) {
			t.Fatalf("scope %s has zero wrapped native", name)
		}
		if len(scope.Factories) == 0 {
			t.Fatalf("scope %s has no factories", name)
		}
		if scope.ExplorerAPI == "" || scope.ExplorerURL == "" {
			t.Fatalf("scope %s missing explorer endpoints", name)
		}
	}
}

func TestLookupScopeUnknown(t *testing.T) {
	if _, ok := LookupScope("solana"); ok {
		t.Fatal("expected unknown scope to miss")
	}
}

func TestFactoryOrderIsStable(t *testing.T) {
	scope, _ := LookupScope("eth")
	if scope.Factories[0].Name != "uniswap-v2" {
		t.Fatalf("eth primary factory mismatch: %s", scope.Factories[0].Name)
	}
	if scope.Factories[1].Name != "sushiswap" {
		t.Fatalf("eth fallback factory mismatch: %s", scope.Factories[1].Name)
	}
}
