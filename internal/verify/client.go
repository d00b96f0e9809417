package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"deployScope/internal/chain"
	"deployScope/internal/model"
)

const defaultAttempts = 3

// Client queries a block-explorer source-verification API. Exhausted retries
// yield an unverified result, never an error: verification absence only
// changes message presentation.
type Client struct {
	httpClient *http.Client
	attempts   int
	delay      time.Duration
	apiKeys    map[string]string
	logger     *zap.Logger
}

// NewClient builds a verification client. apiKeys maps chain scope names to
// explorer API keys; a missing key sends the request without one.
func NewClient(delay time.Duration, apiKeys map[string]string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		attempts:   defaultAttempts,
		delay:      delay,
		apiKeys:    apiKeys,
		logger:     logger,
	}
}

type sourceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		SourceCode   string `json:"SourceCode"`
		ABI          string `json:"ABI"`
		ContractName string `json:"ContractName"`
	} `json:"result"`
}

// VerifiedSource fetches the contract's verified source with bounded retries
// separated by a fixed delay. The first attempt returning a non-empty source
// short-circuits the rest.
func (c *Client) VerifiedSource(ctx context.Context, scope chain.Scope, address common.Address) model.VerificationInfo {
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return model.VerificationInfo{}
			case <-timer.C:
			}
		}

		info, err := c.fetch(ctx, scope, address)
		if err != nil {
			c.logger.Debug("source lookup failed",
				zap.String("chain", scope.Name),
				zap.String("address", address.Hex()),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		if info.Verified {
			return info
		}
	}

	return model.VerificationInfo{}
}

func (c *Client) fetch(ctx context.Context, scope chain.Scope, address common.Address) (model.VerificationInfo, error) {
	query := url.Values{}
	query.Set("module", "contract")
	query.Set("action", "getsourcecode")
	query.Set("address", address.Hex())
	if key := c.apiKeys[scope.Name]; key != "" {
		query.Set("apikey", key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scope.ExplorerAPI+"?"+query.Encode(), nil)
	if err != nil {
		return model.VerificationInfo{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.VerificationInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.VerificationInfo{}, fmt.Errorf("explorer status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return model.VerificationInfo{}, err
	}

	var parsed sourceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.VerificationInfo{}, fmt.Errorf("parse explorer response: %w", err)
	}
	if len(parsed.Result) == 0 {
		return model.VerificationInfo{}, fmt.Errorf("empty result set")
	}

	first := parsed.Result[0]
	if first.SourceCode == "" {
		return model.VerificationInfo{}, nil
	}

	return model.VerificationInfo{
		Verified:     true,
		ContractName: first.ContractName,
		SourceCode:   first.SourceCode,
	}, nil
}
