package config

import (
	"reflect"
	"testing"
)

func TestParseStringMap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "pairs",
			input: "eth=https://rpc.example/eth,base=https://rpc.example/base",
			want: map[string]string{
				"eth":  "https://rpc.example/eth",
				"base": "https://rpc.example/base",
			},
		},
		{
			name:  "whitespace and empty entries dropped",
			input: " eth = wss://node , , =x , bsc= ",
			want:  map[string]string{"eth": "wss://node"},
		},
		{
			name:  "empty",
			input: "  ",
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStringMap(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseStringMap(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
