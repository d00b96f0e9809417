package dex

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"deployScope/internal/chain"
	"deployScope/internal/model"
)

// ContractCaller is the slice of the chain gateway the resolver needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	IndexedTokenMetadata(ctx context.Context, address common.Address) (chain.IndexedTokenMeta, error)
}

// Resolver turns a raw created-contract address into a token candidate and,
// on demand, its liquidity state. All liquidity failures degrade to "no
// liquidity" since that is the common state right after deployment.
type Resolver struct {
	caller ContractCaller
	scope  chain.Scope
	logger *zap.Logger
}

// NewResolver builds a resolver bound to one chain scope.
func NewResolver(caller ContractCaller, scope chain.Scope, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{caller: caller, scope: scope, logger: logger}
}

// Candidate resolves token metadata through two independent sources: the
// provider's metadata index first, then direct contract calls. Whichever
// yields a non-empty symbol wins. No symbol from either source, or decimals
// outside [6,18], rejects the candidate.
func (r *Resolver) Candidate(ctx context.Context, address common.Address) (model.TokenCandidate, error) {
	var (
		name, symbol string
		decimals     *uint8
	)

	if meta, err := r.caller.IndexedTokenMetadata(ctx, address); err == nil {
		if strings.TrimSpace(meta.Symbol) != "" {
			name = meta.Name
			symbol = meta.Symbol
			decimals = meta.Decimals
		}
	} else {
		r.logger.Debug("indexed metadata lookup failed", zap.String("address", address.Hex()), zap.Error(err))
	}

	if symbol == "" || decimals == nil {
		meta, err := FetchERC20Meta(ctx, r.caller, address, r.logger)
		if err != nil {
			if symbol == "" {
				return model.TokenCandidate{}, fmt.Errorf("token metadata %s: %w", address.Hex(), err)
			}
		} else {
			if symbol == "" && strings.TrimSpace(meta.Symbol) != "" {
				symbol = meta.Symbol
				name = meta.Name
			}
			if decimals == nil {
				d := meta.Decimals
				decimals = &d
			}
		}
	}

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return model.TokenCandidate{}, fmt.Errorf("no symbol for %s", address.Hex())
	}
	if decimals == nil {
		return model.TokenCandidate{}, fmt.Errorf("no decimals for %s", address.Hex())
	}
	if *decimals < 6 || *decimals > 18 {
		return model.TokenCandidate{}, fmt.Errorf("decimals %d out of bounds for %s", *decimals, address.Hex())
	}

	return model.TokenCandidate{
		Address:  address,
		Chain:    r.scope.Name,
		Symbol:   symbol,
		Name:     strings.TrimSpace(name),
		Decimals: *decimals,
	}, nil
}

// Liquidity probes the scope's factories in priority order and reads the
// winning pair's reserves. Price is native per token adjusted for decimals;
// market cap is twice the native reserve under the constant-product
// approximation. No pair anywhere is a valid outcome with a zero reserve.
func (r *Resolver) Liquidity(ctx context.Context, candidate model.TokenCandidate) model.LiquidityInfo {
	info := model.EmptyLiquidity()

	pair, ok := r.findPair(ctx, candidate.Address)
	if !ok {
		return info
	}
	info.Pair = pair

	native, tokenSide, ok := r.pairReserves(ctx, pair)
	if !ok {
		return info
	}

	info.NativeReserve = native
	info.MarketCapNative = 2 * model.WeiToNative(native)
	if tokenSide.Sign() > 0 {
		tokenUnits, _ := new(big.Float).Quo(
			new(big.Float).SetInt(tokenSide),
			big.NewFloat(math.Pow10(int(candidate.Decimals))),
		).Float64()
		if tokenUnits > 0 {
			info.PriceNative = model.WeiToNative(native) / tokenUnits
		}
	}

	return info
}

func (r *Resolver) findPair(ctx context.Context, token common.Address) (common.Address, bool) {
	parsed, err := FactoryABI()
	if err != nil {
		r.logger.Warn("parse factory abi", zap.Error(err))
		return common.Address{}, false
	}

	for _, factory := range r.scope.Factories {
		values, err := callMethod(ctx, r.caller, factory.Address, parsed, "getPair", token, r.scope.WrappedNative)
		if err != nil {
			r.logger.Debug("getPair failed",
				zap.String("factory", factory.Name), zap.String("token", token.Hex()), zap.Error(err))
			continue
		}
		pair, err := asAddress(values[0])
		if err != nil || pair == (common.Address{}) {
			continue
		}
		return pair, true
	}

	return common.Address{}, false
}

// pairReserves returns the native-side and token-side reserves of a pair.
// The native side is chosen by comparing token0 against the scope's wrapped
// native address, case-insensitively.
func (r *Resolver) pairReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, bool) {
	parsed, err := PairABI()
	if err != nil {
		r.logger.Warn("parse pair abi", zap.Error(err))
		return nil, nil, false
	}

	values, err := callMethod(ctx, r.caller, pair, parsed, "token0")
	if err != nil {
		r.logger.Debug("token0 failed", zap.String("pair", pair.Hex()), zap.Error(err))
		return nil, nil, false
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return nil, nil, false
	}

	values, err = callMethod(ctx, r.caller, pair, parsed, "getReserves")
	if err != nil || len(values) < 2 {
		r.logger.Debug("getReserves failed", zap.String("pair", pair.Hex()), zap.Error(err))
		return nil, nil, false
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, false
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, false
	}

	if strings.EqualFold(token0.Hex(), r.scope.WrappedNative.Hex()) {
		return reserve0, reserve1, true
	}
	return reserve1, reserve0, true
}
