package patterns

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Pattern is one named risk marker matched against verified source text.
type Pattern struct {
	Label   string `json:"label"`
	Pattern string `json:"pattern"`
}

type entry struct {
	label string
	re    *regexp.Regexp
}

// Set is an ordered, read-only pattern list compiled once at startup.
type Set struct {
	entries []entry
}

// Load reads a JSON pattern file. An empty path yields the built-in set.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}

	var raw []Pattern
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	return compile(raw)
}

// Default returns the built-in anti-snipe marker list.
func Default() *Set {
	set, err := compile([]Pattern{
		{Label: "anti-bot", Pattern: `(?i)antibot|anti_bot|botblacklist`},
		{Label: "max-tx-limit", Pattern: `(?i)maxtxamount|maxtransaction`},
		{Label: "max-wallet-limit", Pattern: `(?i)maxwallet`},
		{Label: "trading-toggle", Pattern: `(?i)tradingenabled|tradingactive|opentrading`},
		{Label: "blacklist", Pattern: `(?i)blacklist|isblacklisted`},
		{Label: "cooldown", Pattern: `(?i)cooldown|sniperprotection`},
	})
	if err != nil {
		panic(err)
	}
	return set
}

func compile(raw []Pattern) (*Set, error) {
	set := &Set{entries: make([]entry, 0, len(raw))}
	for _, p := range raw {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Label, err)
		}
		set.entries = append(set.entries, entry{label: p.Label, re: re})
	}
	return set, nil
}

// Scan returns the labels of all patterns matching the source, in list order.
func (s *Set) Scan(source string) []string {
	if s == nil || source == "" {
		return nil
	}
	var labels []string
	for _, e := range s.entries {
		if e.re.MatchString(source) {
			labels = append(labels, e.label)
		}
	}
	return labels
}
