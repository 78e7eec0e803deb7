package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// ImbalanceStore implements domain.ImbalanceStore using PostgreSQL.
type ImbalanceStore struct {
	pool *pgxpool.Pool
}

// NewImbalanceStore creates a new ImbalanceStore backed by the given pool.
func NewImbalanceStore(pool *pgxpool.Pool) *ImbalanceStore {
	return &ImbalanceStore{pool: pool}
}

// Insert records a reconciliation imbalance.
func (s *ImbalanceStore) Insert(ctx context.Context, r domain.ImbalanceRecord) error {
	const query = `
		INSERT INTO imbalances (
			id, run_id, market_id, yes_token_id, no_token_id, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		r.ID, r.RunID, r.MarketID, r.YesTokenID, r.NoTokenID, r.Note, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert imbalance %s: %w", r.ID, err)
	}
	return nil
}

// ListBefore returns up to limit imbalances created before the cutoff, oldest
// first.
func (s *ImbalanceStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.ImbalanceRecord, error) {
	const query = `
		SELECT id, run_id, market_id, yes_token_id, no_token_id, note, created_at
		FROM imbalances
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list imbalances: %w", err)
	}
	defer rows.Close()

	var records []domain.ImbalanceRecord
	for rows.Next() {
		var r domain.ImbalanceRecord
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.MarketID, &r.YesTokenID, &r.NoTokenID, &r.Note, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan imbalance: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate imbalances: %w", err)
	}
	return records, nil
}
