package model

// DiscoveryRecord is the normalized representation of a resolved token
// candidate for the discovery journal.
type DiscoveryRecord struct {
	Chain        string `json:"chain"`
	ChainID      uint64 `json:"chain_id"`
	Address      string `json:"address"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     uint8  `json:"decimals"`
	Deployer     string `json:"deployer"`
	TxHash       string `json:"tx_hash"`
	BlockNumber  uint64 `json:"block_number"`
	DiscoveredAt string `json:"discovered_at"`
}
