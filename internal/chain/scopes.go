package chain

import "github.com/ethereum/go-ethereum/common"

// Factory is one DEX pair factory probed during liquidity resolution.
type Factory struct {
	Name    string
	Address common.Address
}

// Scope pins one supported network together with its fixed addresses and
// endpoints. Every chain-scoped operation must use values from the same
// scope; mixing addresses across scopes is a defect.
type Scope struct {
	Name            string
	ChainID         uint64
	NativeSymbol    string
	WrappedNative   common.Address
	Factories       []Factory
	ExplorerAPI     string
	ExplorerURL     string
	DexscreenerSlug string
}

// Factories are listed in probe priority order; the first factory that
// reports a non-zero pair wins.
var scopes = map[string]Scope{
	"eth": {
		Name:          "eth",
		ChainID:       1,
		NativeSymbol:  "ETH",
		WrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Factories: []Factory{
			{Name: "uniswap-v2", Address: common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")},
			{Name: "sushiswap", Address: common.HexToAddress("0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac")},
		},
		ExplorerAPI:     "https://api.etherscan.io/api",
		ExplorerURL:     "https://etherscan.io",
		DexscreenerSlug: "ethereum",
	},
	"bsc": {
		Name:          "bsc",
		ChainID:       56,
		NativeSymbol:  "BNB",
		WrappedNative: common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"),
		Factories: []Factory{
			{Name: "pancakeswap-v2", Address: common.HexToAddress("0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73")},
			{Name: "apeswap", Address: common.HexToAddress("0x0841BD0B734E4F5853f0dD8d7Ea041c241fb0Da6")},
		},
		ExplorerAPI:     "https://api.bscscan.com/api",
		ExplorerURL:     "https://bscscan.com",
		DexscreenerSlug: "bsc",
	},
	"base": {
		Name:          "base",
		ChainID:       8453,
		NativeSymbol:  "ETH",
		WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006"),
		Factories: []Factory{
			{Name: "baseswap", Address: common.HexToAddress("0xFDa619b6d20975be80A10332cD39b9a4b0FAa8BB")},
			{Name: "uniswap-v2", Address: common.HexToAddress("0x8909Dc15e40173Ff4699343b6eB8132c65e18eC6")},
		},
		ExplorerAPI:     "https://api.basescan.org/api",
		ExplorerURL:     "https://basescan.org",
		DexscreenerSlug: "base",
	},
}

// LookupScope returns the scope for a chain name.
func LookupScope(name string) (Scope, bool) {
	scope, ok := scopes[name]
	return scope, ok
}

// ScopeNames returns the supported chain names.
func ScopeNames() []string {
	names := make([]string, 0, len(scopes))
	for name := range scopes {
		names = append(names, name)
	}
	return names
}
