package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyNotionalStore implements domain.DailyNotionalStore using PostgreSQL.
// The counter row is keyed by the UTC calendar day, so a new day starts at
// zero without any reset job.
type DailyNotionalStore struct {
	pool *pgxpool.Pool
}

// NewDailyNotionalStore creates a new DailyNotionalStore backed by the given
// pool.
func NewDailyNotionalStore(pool *pgxpool.Pool) *DailyNotionalStore {
	return &DailyNotionalStore{pool: pool}
}

// Get returns the accumulated notional for a day key, 0 when no row exists.
func (s *DailyNotionalStore) Get(ctx context.Context, day string) (float64, error) {
	const query = `SELECT notional FROM daily_notional WHERE day = $1`

	var total float64
	err := s.pool.QueryRow(ctx, query, day).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: get daily notional %s: %w", day, err)
	}
	return total, nil
}

// Add atomically increments a day's counter, creating the row on first use.
func (s *DailyNotionalStore) Add(ctx context.Context, day string, amount float64) error {
	const query = `
		INSERT INTO daily_notional (day, notional, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (day) DO UPDATE
		SET notional = daily_notional.notional + EXCLUDED.notional,
		    updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query, day, amount)
	if err != nil {
		return fmt.Errorf("postgres: add daily notional %s: %w", day, err)
	}
	return nil
}
