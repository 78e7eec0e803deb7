package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Insert records a detected opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, o domain.OpportunityRecord) error {
	const query = `
		INSERT INTO opportunities (
			id, run_id, market_id, yes_token_id, no_token_id,
			yes_ask, no_ask, edge_bps, all_in_cost, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		o.ID, o.RunID, o.MarketID, o.YesTokenID, o.NoTokenID,
		o.YesAsk, o.NoAsk, o.EdgeBps, o.AllInCost, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", o.ID, err)
	}
	return nil
}

// ListBefore returns up to limit opportunities created before the cutoff,
// oldest first.
func (s *OpportunityStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.OpportunityRecord, error) {
	const query = `
		SELECT id, run_id, market_id, yes_token_id, no_token_id,
		       yes_ask, no_ask, edge_bps, all_in_cost, created_at
		FROM opportunities
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var records []domain.OpportunityRecord
	for rows.Next() {
		var o domain.OpportunityRecord
		if err := rows.Scan(
			&o.ID, &o.RunID, &o.MarketID, &o.YesTokenID, &o.NoTokenID,
			&o.YesAsk, &o.NoAsk, &o.EdgeBps, &o.AllInCost, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		records = append(records, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return records, nil
}
