package domain

import (
	"context"
	"time"
)

// RunStore persists run metadata.
type RunStore interface {
	Create(ctx context.Context, run Run) error
}

// OpportunityStore persists detected opportunities.
type OpportunityStore interface {
	Insert(ctx context.Context, rec OpportunityRecord) error
	ListBefore(ctx context.Context, before time.Time, limit int) ([]OpportunityRecord, error)
}

// OrderStore persists submitted order legs.
type OrderStore interface {
	Create(ctx context.Context, order Order) error
	ListBefore(ctx context.Context, before time.Time, limit int) ([]Order, error)
}

// ImbalanceStore persists reconciliation audit records.
type ImbalanceStore interface {
	Insert(ctx context.Context, rec ImbalanceRecord) error
	ListBefore(ctx context.Context, before time.Time, limit int) ([]ImbalanceRecord, error)
}

// DailyNotionalStore accumulates committed notional per UTC calendar day.
// Day keys are strings of the form "2006-01-02". Add must be atomic: two
// concurrent increments against the same day key may not lose an update.
type DailyNotionalStore interface {
	Get(ctx context.Context, day string) (float64, error)
	Add(ctx context.Context, day string, amount float64) error
}

// RunLock is a held exclusive run guard. Refresh extends the lease; Release
// drops it and is safe to call more than once.
type RunLock interface {
	Refresh(ctx context.Context, ttl time.Duration) error
	Release()
}

// LockManager hands out process-scoped exclusive run guards. Acquire returns
// ErrLockHeld when another instance holds the guard.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (RunLock, error)
}
