// Package risk validates prospective trades against per-trade, per-day, and
// open-order capital limits. The Gate owns the daily notional counter; its
// read-modify-write is a single-writer critical section guarded both by the
// Gate's mutex and by an atomic upsert in the backing store.
package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// DayKey formats t as the UTC calendar-day key used by the daily counter.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Gate applies the configured risk limits before capital is committed.
type Gate struct {
	store  domain.DailyNotionalStore
	limits domain.RiskLimits
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewGate creates a Gate backed by the given counter store.
func NewGate(store domain.DailyNotionalStore, limits domain.RiskLimits, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		limits: limits,
		logger: logger.With(slog.String("component", "risk_gate")),
		now:    time.Now,
	}
}

// Limits returns the limits this gate was configured with.
func (g *Gate) Limits() domain.RiskLimits { return g.limits }

// CheckTradeLimits validates a single trade's notional and the current open
// order count against the per-trade limits. It returns a domain.ErrTradeLimit
// wrapped error describing the first failed check.
func (g *Gate) CheckTradeLimits(notional float64, openOrders int) error {
	if notional > g.limits.MaxNotionalPerTrade {
		return fmt.Errorf("%w: notional %.2f exceeds per-trade max %.2f",
			domain.ErrTradeLimit, notional, g.limits.MaxNotionalPerTrade)
	}
	if openOrders >= g.limits.MaxOpenOrders {
		return fmt.Errorf("%w: %d open orders at max %d",
			domain.ErrTradeLimit, openOrders, g.limits.MaxOpenOrders)
	}
	return nil
}

// DailyNotional returns the accumulated notional for the given day key, 0
// when no record exists.
func (g *Gate) DailyNotional(ctx context.Context, day string) (float64, error) {
	total, err := g.store.Get(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("risk: get daily notional for %s: %w", day, err)
	}
	return total, nil
}

// CheckDailyLimit validates that committing amount today would not push the
// daily counter past the configured maximum. It returns a domain.ErrDailyLimit
// wrapped error on breach.
func (g *Gate) CheckDailyLimit(ctx context.Context, amount float64) error {
	day := DayKey(g.now())
	current, err := g.DailyNotional(ctx, day)
	if err != nil {
		return err
	}
	if current+amount > g.limits.MaxDailyNotional {
		return fmt.Errorf("%w: %.2f + %.2f exceeds daily max %.2f",
			domain.ErrDailyLimit, current, amount, g.limits.MaxDailyNotional)
	}
	return nil
}

// AddDailyNotional commits amount to today's counter. The counter is
// monotonically non-decreasing within a day and starts fresh when the day key
// changes.
func (g *Gate) AddDailyNotional(ctx context.Context, amount float64) error {
	day := DayKey(g.now())

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Add(ctx, day, amount); err != nil {
		return fmt.Errorf("risk: add daily notional for %s: %w", day, err)
	}
	g.logger.DebugContext(ctx, "daily notional committed",
		slog.String("day", day),
		slog.Float64("amount", amount),
	)
	return nil
}
