package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Create inserts a new order into the database.
func (s *OrderStore) Create(ctx context.Context, o domain.Order) error {
	const query = `
		INSERT INTO orders (
			id, run_id, market_id, token_id, side,
			price, size, status, exchange_order_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		o.ID, o.RunID, o.MarketID, o.TokenID, string(o.Side),
		o.Price, o.Size, o.Status, o.ExchangeOrderID, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create order %s: %w", o.ID, err)
	}
	return nil
}

// ListBefore returns up to limit orders created before the cutoff, oldest
// first.
func (s *OrderStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Order, error) {
	const query = `
		SELECT id, run_id, market_id, token_id, side,
		       price, size, status, exchange_order_id, created_at
		FROM orders
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var side string
		if err := rows.Scan(
			&o.ID, &o.RunID, &o.MarketID, &o.TokenID, &side,
			&o.Price, &o.Size, &o.Status, &o.ExchangeOrderID, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		o.Side = domain.OrderSide(side)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate orders: %w", err)
	}
	return orders, nil
}
