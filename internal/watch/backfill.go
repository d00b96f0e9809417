package watch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"deployScope/internal/chain"
)

// BackfillConfig controls a bounded historical scan.
type BackfillConfig struct {
	FromBlock uint64
	ToBlock   uint64 // 0 means the chain head at start
	BatchSize uint64

	CheckpointPath    string
	CheckpointEnabled bool

	MaxRetries   int
	RetryBackoff time.Duration
}

// Backfill scans a historical block range through the same discovery path as
// live watching. The engine should run with alerts disabled so old blocks
// only feed the journal and the seen set.
func (e *Engine) Backfill(ctx context.Context, cfg BackfillConfig) error {
	to := cfg.ToBlock
	if to == 0 {
		head, err := e.gateway.LatestBlock(ctx)
		if err != nil {
			return fmt.Errorf("resolve chain head: %w", err)
		}
		to = head
	}

	from := cfg.FromBlock
	checkpoint := NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled)
	if saved, ok, err := checkpoint.Load(); err != nil {
		e.logger.Warn("checkpoint load failed", zap.Error(err))
	} else if ok && saved.LastProcessedBlock >= from {
		from = saved.LastProcessedBlock + 1
		e.logger.Info("resuming from checkpoint", zap.Uint64("from", from))
	}
	if from > to {
		e.logger.Info("nothing to backfill",
			zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, cfg.BatchSize)
	if err != nil {
		return err
	}
	e.logger.Info("backfill start",
		zap.String("chain", e.scope.Name),
		zap.Uint64("from", from), zap.Uint64("to", to),
		zap.Int("batches", len(ranges)))

	for _, blockRange := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}

		for number := blockRange.From; number <= blockRange.To; number++ {
			var creations []chain.Creation
			err := withRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
				var err error
				creations, err = e.gateway.BlockCreations(ctx, number)
				return err
			})
			if err != nil {
				return fmt.Errorf("fetch block %d: %w", number, err)
			}
			e.count(e.metricOrNil().BlocksProcessed)
			for _, creation := range creations {
				e.processCreation(ctx, creation)
			}
		}

		if err := checkpoint.Save(blockRange.To); err != nil {
			e.logger.Warn("checkpoint save failed", zap.Error(err))
		}
		e.logger.Info("batch complete",
			zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	e.logger.Info("backfill complete",
		zap.String("chain", e.scope.Name), zap.Uint64("to", to))
	return nil
}
