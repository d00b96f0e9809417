package watch

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"deployScope/internal/chain"
	"deployScope/internal/metrics"
	"deployScope/internal/model"
	"deployScope/internal/patterns"
	"deployScope/internal/storage"
	"deployScope/internal/subs"
)

// Gateway is the slice of the chain client the engine drives.
type Gateway interface {
	BlockCreations(ctx context.Context, number uint64) ([]chain.Creation, error)
	HasCode(ctx context.Context, address common.Address) (bool, error)
	NativeBalance(ctx context.Context, address common.Address) (*big.Int, error)
	LatestBlock(ctx context.Context) (uint64, error)
	SubscribeBlocks(ctx context.Context) <-chan uint64
}

// TokenResolver resolves candidates and, on demand, their liquidity.
type TokenResolver interface {
	Candidate(ctx context.Context, address common.Address) (model.TokenCandidate, error)
	Liquidity(ctx context.Context, candidate model.TokenCandidate) model.LiquidityInfo
}

// Verifier fetches verified source for a contract. It never blocks the
// immediate-alert path; the engine runs it concurrently.
type Verifier interface {
	VerifiedSource(ctx context.Context, scope chain.Scope, address common.Address) model.VerificationInfo
}

// Notifier sends formatted messages to a chat scope.
type Notifier interface {
	Send(ctx context.Context, scope model.Scope, text string, linkPreview bool) error
}

// EngineConfig wires one chain worker.
type EngineConfig struct {
	Scope         chain.Scope
	Gateway       Gateway
	Resolver      TokenResolver
	Verifier      Verifier
	Registry      *subs.Registry
	Notifier      Notifier
	Patterns      *patterns.Set
	Seen          *SeenSet
	Journal       storage.Storage
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	AlertsEnabled bool
}

// Engine scans blocks of one chain scope for contract creations and fans
// matching alerts out to subscribers. One failing candidate or subscription
// check never suppresses unrelated alerts in the same pass.
type Engine struct {
	scope         chain.Scope
	gateway       Gateway
	resolver      TokenResolver
	verifier      Verifier
	registry      *subs.Registry
	notifier      Notifier
	patterns      *patterns.Set
	seen          *SeenSet
	journal       storage.Storage
	metrics       *metrics.Metrics
	logger        *zap.Logger
	alertsEnabled bool

	wg sync.WaitGroup
}

// NewEngine builds an engine from its dependencies.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seen := cfg.Seen
	if seen == nil {
		seen = NewSeenSet()
	}
	pats := cfg.Patterns
	if pats == nil {
		pats = patterns.Default()
	}
	return &Engine{
		scope:         cfg.Scope,
		gateway:       cfg.Gateway,
		resolver:      cfg.Resolver,
		verifier:      cfg.Verifier,
		registry:      cfg.Registry,
		notifier:      cfg.Notifier,
		patterns:      pats,
		seen:          seen,
		journal:       cfg.Journal,
		metrics:       cfg.Metrics,
		logger:        logger,
		alertsEnabled: cfg.AlertsEnabled,
	}
}

// Run consumes the block subscription until the context ends, then waits for
// detached enrichment sends to settle.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("watch start", zap.String("chain", e.scope.Name))

	for number := range e.gateway.SubscribeBlocks(ctx) {
		e.ProcessBlock(ctx, number)
	}

	e.wg.Wait()
	e.logger.Info("watch stop", zap.String("chain", e.scope.Name))
	return nil
}

// Wait blocks until detached enrichment sends have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// ProcessBlock scans one block. A failed fetch skips the block; a missed
// block is an acceptable loss, not fatal.
func (e *Engine) ProcessBlock(ctx context.Context, number uint64) {
	creations, err := e.gateway.BlockCreations(ctx, number)
	if err != nil {
		e.logger.Warn("block fetch failed",
			zap.String("chain", e.scope.Name), zap.Uint64("block", number), zap.Error(err))
		e.count(e.metricOrNil().BlocksSkipped)
		return
	}

	e.count(e.metricOrNil().BlocksProcessed)
	for _, creation := range creations {
		e.processCreation(ctx, creation)
	}
}

func (e *Engine) processCreation(ctx context.Context, creation chain.Creation) {
	if !e.seen.CheckAndAdd(creation.Address) {
		return
	}
	e.count(e.metricOrNil().ContractsDiscovered)

	hasCode, err := e.gateway.HasCode(ctx, creation.Address)
	if err != nil {
		e.logger.Debug("code check failed",
			zap.String("address", creation.Address.Hex()), zap.Error(err))
		return
	}
	if !hasCode {
		// Not materialized yet; not an error.
		return
	}

	candidate, err := e.resolver.Candidate(ctx, creation.Address)
	if err != nil {
		e.logger.Debug("candidate rejected",
			zap.String("address", creation.Address.Hex()), zap.Error(err))
		return
	}
	e.count(e.metricOrNil().CandidatesResolved)
	e.logger.Info("token discovered",
		zap.String("chain", e.scope.Name),
		zap.String("symbol", candidate.Symbol),
		zap.String("address", candidate.Address.Hex()),
		zap.Uint64("block", creation.Block))

	e.journalDiscovery(candidate, creation)

	if !e.alertsEnabled {
		return
	}

	verification := newVerificationFuture()
	go func() {
		verification.complete(e.verifier.VerifiedSource(ctx, e.scope, creation.Address))
	}()

	deployerBalance := e.bestEffortBalance(ctx, creation.Deployer)

	// Liquidity and the contract's own balance are computed at most once per
	// candidate and shared across every subscription checked in this pass.
	var (
		liquidityOnce sync.Once
		liquidityInfo model.LiquidityInfo
	)
	liquidity := func() model.LiquidityInfo {
		liquidityOnce.Do(func() {
			liquidityInfo = e.resolver.Liquidity(ctx, candidate)
		})
		return liquidityInfo
	}

	var (
		balanceOnce     sync.Once
		contractBalance *big.Int
	)
	balance := func() *big.Int {
		balanceOnce.Do(func() {
			contractBalance = e.bestEffortBalance(ctx, candidate.Address)
		})
		return contractBalance
	}

	symbol := model.NormalizeTicker(candidate.Symbol)
	for _, scoped := range e.registry.Scopes() {
		for _, sub := range scoped.Subscriptions {
			if sub.Chain != e.scope.Name {
				continue
			}

			// A set ticker takes priority; the threshold is ignored then.
			if sub.Ticker != "" {
				if sub.Ticker != symbol {
					continue
				}
				e.sendImmediate(ctx, scoped.Scope, candidate, creation, deployerBalance, verification)
				e.spawnEnrichment(ctx, scoped.Scope, candidate, liquidity, verification)
				continue
			}

			if model.WeiToNative(balance()) >= sub.Threshold ||
				model.WeiToNative(liquidity().NativeReserve) >= sub.Threshold {
				info, ready := verification.peek()
				text := thresholdMessage(e.scope, candidate, creation.Deployer, deployerBalance, liquidity(), info, !ready)
				e.send(ctx, scoped.Scope, text)
			}
		}
	}
}

func (e *Engine) sendImmediate(ctx context.Context, scope model.Scope, candidate model.TokenCandidate, creation chain.Creation, deployerBalance *big.Int, verification *verificationFuture) {
	info, ready := verification.peek()
	text := immediateMessage(e.scope, candidate, creation.Deployer, deployerBalance, info, !ready)
	e.send(ctx, scope, text)
}

// spawnEnrichment schedules the follow-up message as a detached task. Its
// failure is logged and swallowed; the already-sent immediate alert is
// unaffected.
func (e *Engine) spawnEnrichment(ctx context.Context, scope model.Scope, candidate model.TokenCandidate, liquidity func() model.LiquidityInfo, verification *verificationFuture) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		info := verification.wait(ctx)
		markers := e.patterns.Scan(info.SourceCode)
		text := enrichmentMessage(e.scope, candidate, liquidity(), info, markers)

		if err := e.notifier.Send(ctx, scope, text, false); err != nil {
			e.logger.Warn("enrichment send failed",
				zap.Int64("chat", scope.ChatID), zap.Error(err))
			e.count(e.metricOrNil().SendFailures)
		}
	}()
}

func (e *Engine) send(ctx context.Context, scope model.Scope, text string) {
	if err := e.notifier.Send(ctx, scope, text, false); err != nil {
		e.logger.Warn("alert send failed",
			zap.Int64("chat", scope.ChatID), zap.Error(err))
		e.count(e.metricOrNil().SendFailures)
		return
	}
	e.count(e.metricOrNil().AlertsSent)
}

func (e *Engine) bestEffortBalance(ctx context.Context, address common.Address) *big.Int {
	if address == (common.Address{}) {
		return new(big.Int)
	}
	balance, err := e.gateway.NativeBalance(ctx, address)
	if err != nil || balance == nil {
		return new(big.Int)
	}
	return balance
}

func (e *Engine) journalDiscovery(candidate model.TokenCandidate, creation chain.Creation) {
	if e.journal == nil {
		return
	}
	record := model.DiscoveryRecord{
		Chain:        e.scope.Name,
		ChainID:      e.scope.ChainID,
		Address:      candidate.Address.Hex(),
		Symbol:       candidate.Symbol,
		Name:         candidate.Name,
		Decimals:     candidate.Decimals,
		Deployer:     creation.Deployer.Hex(),
		TxHash:       creation.TxHash.Hex(),
		BlockNumber:  creation.Block,
		DiscoveredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := e.journal.PutDiscoveries([]model.DiscoveryRecord{record}); err != nil {
		e.logger.Warn("journal write failed",
			zap.String("address", record.Address), zap.Error(err))
	}
}

func (e *Engine) count(vec *prometheus.CounterVec) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(e.scope.Name).Inc()
}

// metricOrNil lets call sites stay terse when metrics are not wired (tests).
func (e *Engine) metricOrNil() *metrics.Metrics {
	if e.metrics == nil {
		return &metrics.Metrics{}
	}
	return e.metrics
}

// verificationFuture is a write-once holder for the concurrent source
// lookup. peek never blocks; wait does.
type verificationFuture struct {
	done chan struct{}
	info model.VerificationInfo
}

func newVerificationFuture() *verificationFuture {
	return &verificationFuture{done: make(chan struct{})}
}

func (f *verificationFuture) complete(info model.VerificationInfo) {
	f.info = info
	close(f.done)
}

func (f *verificationFuture) peek() (model.VerificationInfo, bool) {
	select {
	case <-f.done:
		return f.info, true
	default:
		return model.VerificationInfo{}, false
	}
}

func (f *verificationFuture) wait(ctx context.Context) model.VerificationInfo {
	select {
	case <-f.done:
		return f.info
	case <-ctx.Done():
		return model.VerificationInfo{}
	}
}
