// Package engine drives a single arbitrage opportunity through risk checks,
// two-leg order submission, a settlement wait, and partial-fill
// reconciliation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/pairbot/internal/domain"
	"github.com/alanyoungcy/pairbot/internal/risk"
)

// ExchangeClient is the exchange capability set the engine needs. All calls
// return explicit errors; the engine decides per call site whether a failure
// fails the attempt or degrades it.
type ExchangeClient interface {
	PlaceLimitBuy(ctx context.Context, tokenID string, price, size float64) (domain.OrderResult, error)
	Cancel(ctx context.Context, orderID string) error
	GetOrderStatus(ctx context.Context, orderID string) (domain.OrderState, error)
}

// Result is the terminal outcome of one execution attempt.
type Result struct {
	Success bool
	Message string
}

const (
	msgBothFilled  = "both legs filled"
	msgPartialFill = "partial fill; imbalance recorded"
	msgNoFills     = "no fills; retried with slippage"
)

// Engine executes opportunities sequentially. One Execute call runs the full
// attempt to a terminal state before returning; the caller moves on to the
// next market afterwards.
type Engine struct {
	exchange   ExchangeClient
	orders     domain.OrderStore
	imbalances domain.ImbalanceStore
	gate       *risk.Gate
	runID      string
	logger     *slog.Logger

	maxSlippageLiveBps float64
	settleWait         time.Duration

	// openOrders is the count of live orders outside this attempt. The scan
	// loop is sequential, so it stays at its initial value for now.
	openOrders int

	// wait is the settlement pause, injectable for tests.
	wait func(ctx context.Context, d time.Duration) error
}

// New creates an Engine for the given run.
func New(
	exchange ExchangeClient,
	orders domain.OrderStore,
	imbalances domain.ImbalanceStore,
	gate *risk.Gate,
	runID string,
	maxSlippageLiveBps float64,
	settleWait time.Duration,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		exchange:           exchange,
		orders:             orders,
		imbalances:         imbalances,
		gate:               gate,
		runID:              runID,
		logger:             logger.With(slog.String("component", "engine")),
		maxSlippageLiveBps: maxSlippageLiveBps,
		settleWait:         settleWait,
		wait:               sleepCtx,
	}
}

// Execute drives one opportunity to a terminal state. Risk-limit breaches are
// recovered outcomes: they return a failure Result with a nil error and place
// no orders. A non-nil error means the attempt failed against an external
// collaborator (exchange or ledger) and the caller should skip the
// opportunity.
func (e *Engine) Execute(ctx context.Context, opp domain.Opportunity) (Result, error) {
	log := e.logger.With(slog.String("market", opp.Market.ID))

	// Notional is the price sum of the two legs, matching the committed
	// daily amount on a full fill.
	notional := opp.Yes.Price + opp.No.Price

	if err := e.gate.CheckTradeLimits(notional, e.openOrders); err != nil {
		log.WarnContext(ctx, "trade limits blocked execution", slog.String("error", err.Error()))
		return Result{Success: false, Message: domain.ErrTradeLimit.Error()}, nil
	}
	if err := e.gate.CheckDailyLimit(ctx, notional); err != nil {
		if errors.Is(err, domain.ErrDailyLimit) {
			log.WarnContext(ctx, "daily limit blocked execution", slog.String("error", err.Error()))
			return Result{Success: false, Message: domain.ErrDailyLimit.Error()}, nil
		}
		return Result{}, err
	}

	size := e.gate.Limits().MinOrderSize

	yesLeg, err := e.submitLeg(ctx, opp.Market, opp.Market.YesTokenID, opp.Yes.Price, size)
	if err != nil {
		return Result{}, fmt.Errorf("engine: submit yes leg: %w", err)
	}
	noLeg, err := e.submitLeg(ctx, opp.Market, opp.Market.NoTokenID, opp.No.Price, size)
	if err != nil {
		// The yes leg is already live; cancel it best-effort before failing
		// the attempt so we do not sit on an unhedged position.
		if cancelErr := e.exchange.Cancel(ctx, yesLeg.OrderID); cancelErr != nil {
			log.ErrorContext(ctx, "cancel of orphaned yes leg failed",
				slog.String("order_id", yesLeg.OrderID),
				slog.String("error", cancelErr.Error()),
			)
		}
		return Result{}, fmt.Errorf("engine: submit no leg: %w", err)
	}

	log.InfoContext(ctx, "both legs submitted",
		slog.String("yes_order", yesLeg.OrderID),
		slog.String("no_order", noLeg.OrderID),
		slog.Float64("notional", notional),
	)

	if err := e.wait(ctx, e.settleWait); err != nil {
		return Result{}, err
	}

	// One status sample per leg; what we observe now is final for this
	// attempt.
	yesFilled := e.legFilled(ctx, yesLeg.OrderID, log)
	noFilled := e.legFilled(ctx, noLeg.OrderID, log)

	switch {
	case yesFilled && noFilled:
		if err := e.gate.AddDailyNotional(ctx, notional); err != nil {
			return Result{}, err
		}
		log.InfoContext(ctx, "execution filled", slog.Float64("notional", notional))
		return Result{Success: true, Message: msgBothFilled}, nil

	case yesFilled != noFilled:
		unfilled := yesLeg.OrderID
		if yesFilled {
			unfilled = noLeg.OrderID
		}
		if err := e.exchange.Cancel(ctx, unfilled); err != nil {
			return Result{}, fmt.Errorf("engine: cancel unfilled leg %s: %w", unfilled, err)
		}
		if err := e.recordImbalance(ctx, opp.Market, "partial fill - canceled remaining leg"); err != nil {
			return Result{}, err
		}
		log.WarnContext(ctx, "partial fill reconciled", slog.String("canceled_order", unfilled))
		return Result{Success: false, Message: msgPartialFill}, nil

	default:
		e.retryWithSlippage(ctx, opp, size, log)
		if err := e.recordImbalance(ctx, opp.Market, "no fills - retried with slippage"); err != nil {
			return Result{}, err
		}
		return Result{Success: false, Message: msgNoFills}, nil
	}
}

// submitLeg places one limit buy and persists the Order record with the
// exchange-reported status.
func (e *Engine) submitLeg(ctx context.Context, market domain.MarketInfo, tokenID string, price, size float64) (domain.OrderResult, error) {
	res, err := e.exchange.PlaceLimitBuy(ctx, tokenID, price, size)
	if err != nil {
		return domain.OrderResult{}, err
	}

	order := domain.Order{
		ID:              uuid.New().String(),
		RunID:           e.runID,
		MarketID:        market.ID,
		TokenID:         tokenID,
		Side:            domain.OrderSideBuy,
		Price:           price,
		Size:            size,
		Status:          res.Status,
		ExchangeOrderID: res.OrderID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := e.orders.Create(ctx, order); err != nil {
		return domain.OrderResult{}, fmt.Errorf("record order %s: %w", res.OrderID, err)
	}
	return res, nil
}

// legFilled samples a leg's status once. Poll failures and unrecognized
// payloads both count as not filled; only the single observation matters.
func (e *Engine) legFilled(ctx context.Context, orderID string, log *slog.Logger) bool {
	state, err := e.exchange.GetOrderStatus(ctx, orderID)
	if err != nil {
		log.WarnContext(ctx, "status poll failed, treating leg as unfilled",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return IsFilled(state)
}

// IsFilled reports whether a polled state counts as filled. The venue reports
// under either the status or state key; matching is case-insensitive.
func IsFilled(state domain.OrderState) bool {
	s := state.Status
	if s == "" {
		s = state.State
	}
	switch strings.ToLower(s) {
	case "filled", "complete", "completed":
		return true
	default:
		return false
	}
}

// retryWithSlippage resubmits both legs once at prices bumped by the live
// slippage allowance. The resubmission is fire-and-forget: errors are logged,
// and the new orders are neither recorded nor reconciled.
// TODO: persist the retry orders and reconcile their eventual fill/cancel
// state in a follow-up pass.
func (e *Engine) retryWithSlippage(ctx context.Context, opp domain.Opportunity, size float64, log *slog.Logger) {
	bump := 1 + e.maxSlippageLiveBps/10000

	for _, leg := range []struct {
		tokenID string
		price   float64
	}{
		{opp.Market.YesTokenID, opp.Yes.Price * bump},
		{opp.Market.NoTokenID, opp.No.Price * bump},
	} {
		if _, err := e.exchange.PlaceLimitBuy(ctx, leg.tokenID, leg.price, size); err != nil {
			log.WarnContext(ctx, "slippage retry submission failed",
				slog.String("token_id", leg.tokenID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (e *Engine) recordImbalance(ctx context.Context, market domain.MarketInfo, note string) error {
	rec := domain.ImbalanceRecord{
		ID:         uuid.New().String(),
		RunID:      e.runID,
		MarketID:   market.ID,
		YesTokenID: market.YesTokenID,
		NoTokenID:  market.NoTokenID,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.imbalances.Insert(ctx, rec); err != nil {
		return fmt.Errorf("engine: record imbalance for %s: %w", market.ID, err)
	}
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
