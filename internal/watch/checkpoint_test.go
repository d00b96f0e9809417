package watch

import (
	"path/filepath"
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewCheckpointStore(path, true)

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("expected no checkpoint yet: ok=%v err=%v", ok, err)
	}

	if err := store.Save(12345); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cp, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected checkpoint present")
	}
	if cp.LastProcessedBlock != 12345 {
		t.Fatalf("block mismatch: %d", cp.LastProcessedBlock)
	}
}

func TestCheckpointDisabled(t *testing.T) {
	store := NewCheckpointStore(filepath.Join(t.TempDir(), "checkpoint.json"), false)

	if err := store.Save(1); err != nil {
		t.Fatalf("disabled save should be a no-op: %v", err)
	}
	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("disabled load should report absent: ok=%v err=%v", ok, err)
	}
}
