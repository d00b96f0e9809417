package watch

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// SeenSet is the process-wide set of contract addresses already scanned.
// Entries are never pruned; the set is bounded by process lifetime.
type SeenSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// CheckAndAdd marks the address as seen and reports whether it was new.
// The check and insert are one atomic step so overlapping block scans cannot
// both claim the same address.
func (s *SeenSet) CheckAndAdd(address common.Address) bool {
	key := strings.ToLower(address.Hex())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of tracked addresses.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
