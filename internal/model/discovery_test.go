package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDiscoveryRecordJSONRoundTrip(t *testing.T) {
	original := DiscoveryRecord{
		Chain:        "bsc",
		ChainID:      56,
		Address:      "0x1111111111111111111111111111111111111111",
		Symbol:       "GEM",
		Name:         "Gem Token",
		Decimals:     18,
		Deployer:     "0x2222222222222222222222222222222222222222",
		TxHash:       "0xdef456",
		BlockNumber:  36000000,
		DiscoveredAt: "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded DiscoveryRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}
