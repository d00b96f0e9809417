package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deployScope/internal/model"
)

// Store provides Postgres persistence for the discovery journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertDiscoveries inserts or updates discovery records. A re-discovered
// address keeps its earliest block.
func (s *Store) UpsertDiscoveries(ctx context.Context, records []model.DiscoveryRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO discoveries (
				chain_id, chain, address, symbol, name, decimals, deployer, tx_hash, block_number, discovered_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (chain_id, address)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				name = EXCLUDED.name,
				decimals = EXCLUDED.decimals,
				deployer = EXCLUDED.deployer,
				tx_hash = EXCLUDED.tx_hash,
				block_number = LEAST(discoveries.block_number, EXCLUDED.block_number),
				updated_at = now()
		`,
			int64(record.ChainID),
			record.Chain,
			record.Address,
			record.Symbol,
			record.Name,
			int16(record.Decimals),
			record.Deployer,
			record.TxHash,
			int64(record.BlockNumber),
			record.DiscoveredAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutDiscoveries satisfies storage.Storage.
func (s *Store) PutDiscoveries(records []model.DiscoveryRecord) error {
	return s.UpsertDiscoveries(context.Background(), records)
}
