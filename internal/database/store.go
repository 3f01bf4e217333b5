package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kunnuv/niftyflow/internal/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS daily_option_chains (
    trading_date    TEXT PRIMARY KEY,
    seen_timestamps JSONB NOT NULL,
    strike_series   JSONB NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store persists daily aggregates, one row per trading date.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store on an existing pool.
func NewStore(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the aggregate table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create daily_option_chains: %w", err)
	}
	return nil
}

// Load returns the aggregate stored for date, or (nil, nil) when no row
// exists yet.
func (s *Store) Load(ctx context.Context, date string) (*model.DailyAggregate, error) {
	var seenJSON, strikesJSON []byte
	err := s.db.QueryRow(ctx,
		`SELECT seen_timestamps, strike_series FROM daily_option_chains WHERE trading_date = $1`,
		date,
	).Scan(&seenJSON, &strikesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load aggregate %s: %w", date, err)
	}

	agg := &model.DailyAggregate{Date: date}
	if err := json.Unmarshal(seenJSON, &agg.SeenTimestamps); err != nil {
		return nil, fmt.Errorf("decode seen_timestamps for %s: %w", date, err)
	}
	if err := json.Unmarshal(strikesJSON, &agg.Strikes); err != nil {
		return nil, fmt.Errorf("decode strike_series for %s: %w", date, err)
	}

	return agg, nil
}

// Save upserts the aggregate row for its date.
func (s *Store) Save(ctx context.Context, agg *model.DailyAggregate) error {
	seenJSON, err := json.Marshal(agg.SeenTimestamps)
	if err != nil {
		return fmt.Errorf("encode seen_timestamps for %s: %w", agg.Date, err)
	}
	strikesJSON, err := json.Marshal(agg.Strikes)
	if err != nil {
		return fmt.Errorf("encode strike_series for %s: %w", agg.Date, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO daily_option_chains (trading_date, seen_timestamps, strike_series, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (trading_date) DO UPDATE SET
			seen_timestamps = EXCLUDED.seen_timestamps,
			strike_series   = EXCLUDED.strike_series,
			updated_at      = now()`,
		agg.Date, seenJSON, strikesJSON,
	)
	if err != nil {
		return fmt.Errorf("save aggregate %s: %w", agg.Date, err)
	}

	s.logger.Debug("aggregate saved",
		"date", agg.Date,
		"timestamps", len(agg.SeenTimestamps),
		"strikes", len(agg.Strikes),
	)

	return nil
}

// Ping verifies the underlying connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
