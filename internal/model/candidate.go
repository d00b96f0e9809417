package model

import "github.com/ethereum/go-ethereum/common"

// TokenCandidate is a freshly deployed contract that passed the metadata
// sanity checks. It is built once per creation event and discarded after
// one matching pass.
type TokenCandidate struct {
	Address  common.Address
	Chain    string
	Symbol   string
	Name     string
	Decimals uint8
}
