package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// RunStore implements domain.RunStore using PostgreSQL.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a new RunStore backed by the given connection pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Create inserts a new run row.
func (s *RunStore) Create(ctx context.Context, r domain.Run) error {
	const query = `INSERT INTO runs (id, mode, started_at) VALUES ($1, $2, $3)`

	_, err := s.pool.Exec(ctx, query, r.ID, r.Mode, r.StartedAt)
	if err != nil {
		return fmt.Errorf("postgres: create run %s: %w", r.ID, err)
	}
	return nil
}
