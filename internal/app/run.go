package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/pairbot/internal/discovery"
	"github.com/alanyoungcy/pairbot/internal/domain"
	"github.com/alanyoungcy/pairbot/internal/engine"
	"github.com/alanyoungcy/pairbot/internal/notify"
	"github.com/alanyoungcy/pairbot/internal/risk"
	"github.com/alanyoungcy/pairbot/internal/scanner"
)

const (
	// runLockKey guards against concurrent bot instances sharing a database.
	runLockKey = "pairbot:run"

	lockTTL          = 30 * time.Second
	lockRenewalEvery = 10 * time.Second
)

// RunTrading acquires the run lock, records the run, and sweeps the
// discovered markets once. With live=false opportunities are only recorded;
// with live=true each one is handed to the execution engine.
func (a *App) RunTrading(ctx context.Context, deps *Dependencies, live bool) error {
	lock, err := deps.LockManager.Acquire(ctx, runLockKey, lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return fmt.Errorf("app: another instance is already running: %w", err)
		}
		return fmt.Errorf("app: acquire run lock: %w", err)
	}
	defer lock.Release()

	mode := "scan"
	if live {
		mode = "live"
	}

	run := domain.Run{
		ID:        uuid.New().String(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
	if err := deps.RunStore.Create(ctx, run); err != nil {
		return fmt.Errorf("app: record run: %w", err)
	}

	a.logger.InfoContext(ctx, "run started",
		slog.String("run_id", run.ID),
		slog.String("mode", mode),
	)

	// The sweep and the lock renewal share a cancellable group: losing the
	// lease aborts the sweep, and a finished sweep stops the renewal.
	g, gctx := errgroup.WithContext(ctx)
	sweepDone, cancelRenewal := context.WithCancel(gctx)

	g.Go(func() error {
		defer cancelRenewal()
		return a.sweep(sweepDone, deps, run.ID, live)
	})
	g.Go(func() error {
		return renewLock(sweepDone, lock)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "run complete", slog.String("run_id", run.ID))
	return nil
}

// renewLock keeps the run lease alive until ctx is cancelled. A failed
// refresh means another instance may take over, so it is a hard error.
func renewLock(ctx context.Context, lock domain.RunLock) error {
	ticker := time.NewTicker(lockRenewalEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := lock.Refresh(ctx, lockTTL); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("app: run lock lost: %w", err)
			}
		}
	}
}

// sweep discovers candidate markets and evaluates each one sequentially,
// pausing for the configured cooldown between markets.
func (a *App) sweep(ctx context.Context, deps *Dependencies, runID string, live bool) error {
	disc := discovery.New(deps.Gamma, discovery.Config{
		IncludeKeywords: a.cfg.Discovery.IncludeKeywords,
		ExcludeKeywords: a.cfg.Discovery.ExcludeKeywords,
		Categories:      a.cfg.Discovery.Categories,
		MinVolume:       a.cfg.Discovery.MinVolume,
		MinLiquidity:    a.cfg.Discovery.MinLiquidity,
		OnlyActive:      a.cfg.Discovery.OnlyActive,
		MaxMarkets:      a.cfg.Discovery.MaxMarkets,
	}, a.logger)

	markets, err := disc.Discover(ctx)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	gate := risk.NewGate(deps.DailyNotional, domain.RiskLimits{
		MaxNotionalPerTrade: a.cfg.Trading.MaxNotionalPerTrade,
		MaxDailyNotional:    a.cfg.Trading.MaxDailyNotional,
		MaxOpenOrders:       a.cfg.Trading.MaxOpenOrders,
		MinOrderSize:        a.cfg.Trading.MinOrderSize,
	}, a.logger)

	var eng *engine.Engine
	if live {
		eng = engine.New(
			deps.Clob,
			deps.OrderStore,
			deps.ImbalanceStore,
			gate,
			runID,
			a.cfg.Trading.MaxSlippageLiveBps,
			a.cfg.Trading.SettleWait.Duration,
			a.logger,
		)
	}

	for i, market := range markets {
		if i > 0 && a.cfg.Trading.Cooldown.Duration > 0 {
			if err := sleepCtx(ctx, a.cfg.Trading.Cooldown.Duration); err != nil {
				return err
			}
		}

		if err := a.evaluateMarket(ctx, deps, eng, runID, market); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// One broken market should not end the sweep.
			a.logger.WarnContext(ctx, "market evaluation failed",
				slog.String("market", market.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// evaluateMarket fetches both books, scans for an edge, records the
// opportunity, and (in live mode) executes it.
func (a *App) evaluateMarket(ctx context.Context, deps *Dependencies, eng *engine.Engine, runID string, market domain.MarketInfo) error {
	yesBook, err := deps.Clob.GetOrderBook(ctx, market.YesTokenID)
	if err != nil {
		return err
	}
	noBook, err := deps.Clob.GetOrderBook(ctx, market.NoTokenID)
	if err != nil {
		return err
	}

	opp, ok := scanner.Scan(market, yesBook, noBook,
		a.cfg.Trading.FeeBps, a.cfg.Trading.SlippageBps, a.cfg.Trading.MinOrderSize)
	if !ok || opp.EdgeBps < a.cfg.Trading.MinEdgeBps {
		return nil
	}

	a.logger.InfoContext(ctx, "opportunity detected",
		slog.String("market", market.ID),
		slog.Float64("edge_bps", opp.EdgeBps),
		slog.Float64("all_in_cost", opp.AllInCost),
	)

	rec := domain.OpportunityRecord{
		ID:         uuid.New().String(),
		RunID:      runID,
		MarketID:   market.ID,
		YesTokenID: market.YesTokenID,
		NoTokenID:  market.NoTokenID,
		YesAsk:     opp.Yes.Price,
		NoAsk:      opp.No.Price,
		EdgeBps:    opp.EdgeBps,
		AllInCost:  opp.AllInCost,
		CreatedAt:  time.Now().UTC(),
	}
	if err := deps.OpportunityStore.Insert(ctx, rec); err != nil {
		return err
	}

	_ = deps.Notifier.Notify(ctx, notify.EventOpportunity, "Opportunity detected",
		fmt.Sprintf("%s\nedge: %.1f bps, all-in cost: %.4f", market.Question, opp.EdgeBps, opp.AllInCost))

	if eng == nil {
		return nil
	}

	res, err := eng.Execute(ctx, opp)
	if err != nil {
		return err
	}

	switch {
	case res.Success:
		_ = deps.Notifier.Notify(ctx, notify.EventFill, "Both legs filled",
			fmt.Sprintf("%s\nnotional: %.4f", market.Question, opp.Yes.Price+opp.No.Price))
	case res.Message == domain.ErrTradeLimit.Error() || res.Message == domain.ErrDailyLimit.Error():
		_ = deps.Notifier.Notify(ctx, notify.EventLimit, "Execution blocked by risk limits",
			fmt.Sprintf("%s\n%s", market.Question, res.Message))
	default:
		_ = deps.Notifier.Notify(ctx, notify.EventImbalance, "Execution imbalance",
			fmt.Sprintf("%s\n%s", market.Question, res.Message))
	}
	return nil
}

// RunArchive exports records older than the retention window to object
// storage.
func (a *App) RunArchive(ctx context.Context, deps *Dependencies) error {
	if deps.Archiver == nil {
		return fmt.Errorf("app: archive mode requires s3 configuration")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Trading.ArchiveRetentionDays)

	count, err := deps.Archiver.ArchiveAll(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("app: archive: %w", err)
	}

	a.logger.InfoContext(ctx, "archive complete",
		slog.Time("cutoff", cutoff),
		slog.Int64("records", count),
	)
	return nil
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
