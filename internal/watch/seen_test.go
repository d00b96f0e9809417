package watch

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestSeenSetCheckAndAdd(t *testing.T) {
	s := NewSeenSet()
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	if !s.CheckAndAdd(addr) {
		t.Error("first sighting reported as already seen")
	}
	if s.CheckAndAdd(addr) {
		t.Error("second sighting reported as new")
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestSeenSetIsCaseInsensitive(t *testing.T) {
	s := NewSeenSet()

	// Mixed-case and lower-case renderings of one address are the same entry.
	s.CheckAndAdd(common.HexToAddress("0x00000000000000000000000000000000000000AA"))
	if s.CheckAndAdd(common.HexToAddress("0x00000000000000000000000000000000000000aa")) {
		t.Error("checksum-cased duplicate reported as new")
	}
}
