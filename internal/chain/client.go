package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Creation is one contract-creation event extracted from a block, in block
// order. Deployer is zero when sender recovery failed.
type Creation struct {
	TxHash   common.Hash
	Address  common.Address
	Deployer common.Address
	Block    uint64
}

// IndexedTokenMeta is token metadata from the provider's indexing service.
// Decimals is nil when the service has not indexed the contract yet.
type IndexedTokenMeta struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals *uint8 `json:"decimals"`
}

// Client wraps go-ethereum RPC for one chain scope and provides the read
// operations the scan pipeline needs.
type Client struct {
	scope     Scope
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	logger    *zap.Logger
}

// NewClient creates a new chain client from the RPC URL. A websocket URL is
// required for block subscriptions.
func NewClient(ctx context.Context, scope Scope, rpcURL string, logger *zap.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		scope:     scope,
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		logger:    logger,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// LatestBlock returns the latest block number.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// BlockCreations returns the block's contract creations in the order their
// transactions appear in the block.
func (c *Client) BlockCreations(ctx context.Context, number uint64) ([]Creation, error) {
	block, err := c.ethClient.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return nil, err
	}

	var creations []Creation
	for _, tx := range block.Transactions() {
		if tx.To() != nil {
			continue
		}

		receipt, err := c.ethClient.TransactionReceipt(ctx, tx.Hash())
		if err != nil || receipt.ContractAddress == (common.Address{}) {
			continue
		}

		creation := Creation{
			TxHash:  tx.Hash(),
			Address: receipt.ContractAddress,
			Block:   number,
		}
		if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
			creation.Deployer = from
		}
		creations = append(creations, creation)
	}

	return creations, nil
}

// HasCode reports whether the address has deployed bytecode.
func (c *Client) HasCode(ctx context.Context, address common.Address) (bool, error) {
	code, err := c.ethClient.CodeAt(ctx, address, nil)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// NativeBalance returns the address balance in wei.
func (c *Client) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	return c.ethClient.BalanceAt(ctx, address, nil)
}

// IndexedTokenMetadata asks the provider's token-metadata index. Just-deployed
// contracts are frequently not indexed yet, which surfaces as an error here;
// the resolver falls back to direct contract calls.
func (c *Client) IndexedTokenMetadata(ctx context.Context, address common.Address) (IndexedTokenMeta, error) {
	var meta IndexedTokenMeta
	err := c.rpcClient.CallContext(ctx, &meta, "alchemy_getTokenMetadata", address.Hex())
	return meta, err
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// SubscribeBlocks streams new block numbers. Subscription failures are logged
// and the subscription is re-established with backoff; the channel closes
// only when the context ends.
func (c *Client) SubscribeBlocks(ctx context.Context) <-chan uint64 {
	out := make(chan uint64, 16)

	go func() {
		defer close(out)
		backoff := time.Second

		for {
			if ctx.Err() != nil {
				return
			}

			headers := make(chan *types.Header, 16)
			sub, err := c.ethClient.SubscribeNewHead(ctx, headers)
			if err != nil {
				c.logger.Warn("head subscription failed",
					zap.String("chain", c.scope.Name), zap.Error(err))
				if !sleepCtx(ctx, backoff) {
					return
				}
				if backoff < time.Minute {
					backoff *= 2
				}
				continue
			}
			backoff = time.Second

			if !c.pumpHeads(ctx, sub, headers, out) {
				return
			}
		}
	}()

	return out
}

func (c *Client) pumpHeads(ctx context.Context, sub ethereum.Subscription, headers <-chan *types.Header, out chan<- uint64) bool {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-sub.Err():
			c.logger.Warn("head subscription dropped",
				zap.String("chain", c.scope.Name), zap.Error(err))
			return true
		case header := <-headers:
			if header == nil {
				return true
			}
			select {
			case out <- header.Number.Uint64():
			case <-ctx.Done():
				return false
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
