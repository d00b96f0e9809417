package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"deployScope/internal/chain"
	"deployScope/internal/config"
	"deployScope/internal/dex"
	"deployScope/internal/metrics"
	"deployScope/internal/notify"
	"deployScope/internal/patterns"
	"deployScope/internal/storage"
	"deployScope/internal/storage/postgres"
	"deployScope/internal/subs"
	"deployScope/internal/verify"
	"deployScope/internal/watch"
)

func main() {
	// Local development keeps the bot token in a .env file.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "watcher",
		Short:        "New-token watcher and alert bot",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Watch chains live and alert subscribers",
		RunE:  runWatcher,
	}

	runCmd.Flags().String("telegram-token", "", "Telegram bot token")
	runCmd.Flags().String("chains", "", "chain RPC endpoints (comma-separated name=url)")
	runCmd.Flags().String("explorer-keys", "", "explorer API keys (comma-separated name=key)")
	runCmd.Flags().String("patterns", "", "risk pattern JSON file (empty uses the built-in set)")
	runCmd.Flags().String("journal", "./data/discoveries.jsonl", "discovery journal JSONL path (empty disables)")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the discovery journal")
	runCmd.Flags().String("listen", ":9090", "metrics/health listen address")
	runCmd.Flags().Duration("verify-delay", 20*time.Second, "delay between source verification attempts")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Scan a historical block range into the discovery journal",
		RunE:  runBackfill,
	}

	backfillCmd.Flags().String("chain", "eth", "chain name")
	backfillCmd.Flags().String("rpc", "", "RPC URL")
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	backfillCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	backfillCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	backfillCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	backfillCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	backfillCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	backfillCmd.Flags().String("journal", "./data/discoveries.jsonl", "discovery journal JSONL path (empty disables)")
	backfillCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the discovery journal")
	backfillCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatcher(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.TelegramToken == "" {
		return fmt.Errorf("telegram token is required")
	}
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("at least one chain rpc is required (chains name=url)")
	}

	pats, err := patterns.Load(cfg.PatternsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal, closeJournal, err := newJournal(ctx, cfg.JournalPath, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeJournal()

	telegram, err := notify.NewTelegram(cfg.TelegramToken, logger)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}

	registry := subs.NewRegistry()
	verifier := verify.NewClient(cfg.VerifyDelay, cfg.ExplorerKeys, logger)

	promRegistry := prometheus.NewRegistry()
	counters := metrics.New(promRegistry)

	group, ctx := errgroup.WithContext(ctx)

	for name, rpcURL := range cfg.Chains {
		scope, ok := chain.LookupScope(name)
		if !ok {
			return fmt.Errorf("unknown chain %q (supported: %v)", name, chain.ScopeNames())
		}

		client, err := chain.NewClient(ctx, scope, rpcURL, logger)
		if err != nil {
			return fmt.Errorf("connect %s rpc: %w", name, err)
		}
		defer client.Close()

		engine := watch.NewEngine(watch.EngineConfig{
			Scope:         scope,
			Gateway:       client,
			Resolver:      dex.NewResolver(client, scope, logger),
			Verifier:      verifier,
			Registry:      registry,
			Notifier:      telegram,
			Patterns:      pats,
			Journal:       journal,
			Metrics:       counters,
			Logger:        logger,
			AlertsEnabled: true,
		})
		group.Go(func() error {
			return engine.Run(ctx)
		})
	}

	handler := notify.NewCommandHandler(telegram, registry, logger)
	group.Go(func() error {
		return handler.Run(ctx)
	})
	group.Go(func() error {
		return metrics.Serve(ctx, cfg.ListenAddr, promRegistry, logger)
	})

	logger.Info("watcher start",
		zap.Int("chains", len(cfg.Chains)),
		zap.String("listen", cfg.ListenAddr),
	)

	return group.Wait()
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBackfill(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	scope, ok := chain.LookupScope(cfg.Chain)
	if !ok {
		return fmt.Errorf("unknown chain %q (supported: %v)", cfg.Chain, chain.ScopeNames())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, scope, cfg.RPCURL, logger)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	journal, closeJournal, err := newJournal(ctx, cfg.JournalPath, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeJournal()

	engine := watch.NewEngine(watch.EngineConfig{
		Scope:         scope,
		Gateway:       client,
		Resolver:      dex.NewResolver(client, scope, logger),
		Registry:      subs.NewRegistry(),
		Journal:       journal,
		Logger:        logger,
		AlertsEnabled: false,
	})

	return engine.Backfill(ctx, watch.BackfillConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	})
}

// newJournal assembles the discovery sink. Both the JSONL file and Postgres
// are optional; with neither configured discoveries are only logged.
func newJournal(ctx context.Context, path, dsn string) (storage.Storage, func(), error) {
	closeFn := func() {}

	var sinks []storage.Storage
	if path != "" {
		sinks = append(sinks, storage.NewJsonlStorage(path))
	}
	if dsn != "" {
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sinks = append(sinks, store)
		closeFn = store.Close
	}

	switch len(sinks) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return sinks[0], closeFn, nil
	default:
		return storage.Tee(sinks...), closeFn, nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
