package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store issues queries through.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists feed samples in Postgres.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// New creates a Store backed by the given pool.
func New(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

// RecordHeight inserts a block height row unless one already exists.
// Idempotent by height: recording a known height succeeds without writing.
func (s *Store) RecordHeight(ctx context.Context, height int32, ts int64) error {
	stamp, err := formatTimestamp(ts)
	if err != nil {
		return fmt.Errorf("height %d: %w", height, err)
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocks WHERE height = $1)`,
		height,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check height %d: %w", height, err)
	}

	if exists {
		s.logger.Debug("block height already recorded", "height", height)
		return nil
	}

	// The pre-check is only an optimization. A concurrent writer that got
	// here first surfaces as a conflict, which counts as already recorded.
	ct, err := s.db.Exec(ctx,
		`INSERT INTO blocks (height, timestamp) VALUES ($1, $2)
		 ON CONFLICT (height) DO NOTHING`,
		height, stamp,
	)
	if err != nil {
		return fmt.Errorf("insert height %d: %w", height, err)
	}

	if ct.RowsAffected() == 0 {
		s.logger.Debug("block height already recorded", "height", height)
		return nil
	}

	s.logger.Info("recorded block height", "height", height, "timestamp", stamp)
	return nil
}

// RecordPrice appends a price row. Repeated identical prices are legitimate,
// so there is no uniqueness requirement.
func (s *Store) RecordPrice(ctx context.Context, price float64, ts int64) error {
	stamp, err := formatTimestamp(ts)
	if err != nil {
		return fmt.Errorf("price %f: %w", price, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO bitcoin_prices (price, timestamp) VALUES ($1, $2)`,
		price, stamp,
	)
	if err != nil {
		return fmt.Errorf("insert price %f: %w", price, err)
	}

	s.logger.Debug("recorded price", "price", price, "timestamp", stamp)
	return nil
}

// BlockRow is one stored height row, as served by the read API.
type BlockRow struct {
	Height    int32  `json:"height"`
	Timestamp string `json:"timestamp"`
}

// RecentBlocks returns the most recently observed heights, newest first.
func (s *Store) RecentBlocks(ctx context.Context, limit int) ([]BlockRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT height, timestamp FROM blocks ORDER BY height DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent blocks: %w", err)
	}
	defer rows.Close()

	var blocks []BlockRow
	for rows.Next() {
		var b BlockRow
		if err := rows.Scan(&b.Height, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read block rows: %w", err)
	}

	return blocks, nil
}
