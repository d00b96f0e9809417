package notify

import (
	"context"
	"encoding/json"
	"testing"

	"deployScope/internal/model"
	"deployScope/internal/subs"
)

func TestParseFilterTicker(t *testing.T) {
	sub, err := ParseFilter([]string{"ponk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.Subscription{Ticker: "PONK", Chain: "eth"}
	if sub != want {
		t.Fatalf("subscription mismatch: %+v != %+v", sub, want)
	}
}

func TestParseFilterThreshold(t *testing.T) {
	sub, err := ParseFilter([]string{"5", "bsc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.Subscription{Threshold: 5, Chain: "bsc"}
	if sub != want {
		t.Fatalf("subscription mismatch: %+v != %+v", sub, want)
	}
}

func TestParseFilterAllWildcard(t *testing.T) {
	sub, err := ParseFilter([]string{"ALL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The wildcard matches every token via the zero-threshold path.
	want := model.Subscription{Chain: "eth"}
	if sub != want {
		t.Fatalf("subscription mismatch: %+v != %+v", sub, want)
	}
}

func TestParseFilterRejects(t *testing.T) {
	if _, err := ParseFilter(nil); err == nil {
		t.Fatal("expected error for missing argument")
	}
	if _, err := ParseFilter([]string{"-1"}); err == nil {
		t.Fatal("expected error for negative threshold")
	}
	if _, err := ParseFilter([]string{"PONK", "solana"}); err == nil {
		t.Fatal("expected error for unsupported chain")
	}
	// Non-finite thresholds would make filters that never match.
	for _, arg := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		if _, err := ParseFilter([]string{arg}); err == nil {
			t.Fatalf("expected error for threshold %q", arg)
		}
	}
}

func TestHandleIgnoresWhitespaceOnlyText(t *testing.T) {
	h := NewCommandHandler(nil, subs.NewRegistry(), nil)

	var u update
	payload := `{"update_id":1,"message":{"text":"   ","chat":{"id":7}}}`
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		t.Fatalf("unmarshal update: %v", err)
	}

	// Must return without dispatching or replying.
	h.handle(context.Background(), u)

	if got := h.registry.List(model.Scope{ChatID: 7}); len(got) != 0 {
		t.Fatalf("registry has %d filters, want 0", len(got))
	}
}

func TestDescribeFilter(t *testing.T) {
	cases := []struct {
		sub  model.Subscription
		want string
	}{
		{model.Subscription{Ticker: "PONK", Chain: "eth"}, "*PONK* on eth"},
		{model.Subscription{Chain: "eth"}, "*ALL* tokens on eth"},
		{model.Subscription{Threshold: 2.5, Chain: "bsc"}, "liquidity ≥ 2.5 BNB on bsc"},
	}
	for _, tc := range cases {
		if got := describeFilter(tc.sub); got != tc.want {
			t.Fatalf("describe mismatch: %q != %q", got, tc.want)
		}
	}
}
