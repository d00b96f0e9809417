package model

import "strings"

// Scope addresses one chat thread. ThreadID zero means the default thread.
type Scope struct {
	ChatID   int64
	ThreadID int64
}

// Subscription is one filter owned by a Scope. A non-empty Ticker makes it a
// ticker-first filter (symbol match alone); an empty Ticker makes it a
// threshold filter (native balance or LP reserve at least Threshold).
// The two modes are mutually exclusive per subscription.
type Subscription struct {
	Threshold float64
	Ticker    string
	Chain     string
}

// NormalizeTicker trims and uppercases a ticker. The empty result is a
// distinct state from any literal ticker value.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Equal reports full value-equality of the triple. Tickers compare equal only
// when both are empty or both normalize to the same value.
func (s Subscription) Equal(other Subscription) bool {
	return s.Threshold == other.Threshold &&
		NormalizeTicker(s.Ticker) == NormalizeTicker(other.Ticker) &&
		s.Chain == other.Chain
}
