package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pairbot/internal/domain"
	"github.com/alanyoungcy/pairbot/internal/risk"
)

type placedOrder struct {
	TokenID string
	Price   float64
	Size    float64
}

// fakeExchange scripts per-order status responses and records every call.
type fakeExchange struct {
	placed   []placedOrder
	canceled []string
	statuses map[string]domain.OrderState

	placeErr  map[string]error
	cancelErr error
	statusErr map[string]error

	nextID int
	ids    []string
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		statuses:  make(map[string]domain.OrderState),
		placeErr:  make(map[string]error),
		statusErr: make(map[string]error),
	}
}

func (f *fakeExchange) PlaceLimitBuy(_ context.Context, tokenID string, price, size float64) (domain.OrderResult, error) {
	if err := f.placeErr[tokenID]; err != nil {
		return domain.OrderResult{}, err
	}
	f.nextID++
	id := fmt.Sprintf("ex-%d", f.nextID)
	f.ids = append(f.ids, id)
	f.placed = append(f.placed, placedOrder{TokenID: tokenID, Price: price, Size: size})
	return domain.OrderResult{OrderID: id, Status: "live"}, nil
}

func (f *fakeExchange) Cancel(_ context.Context, orderID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.canceled = append(f.canceled, orderID)
	return nil
}

func (f *fakeExchange) GetOrderStatus(_ context.Context, orderID string) (domain.OrderState, error) {
	if err := f.statusErr[orderID]; err != nil {
		return domain.OrderState{}, err
	}
	return f.statuses[orderID], nil
}

type memOrderStore struct {
	orders []domain.Order
}

func (m *memOrderStore) Create(_ context.Context, o domain.Order) error {
	m.orders = append(m.orders, o)
	return nil
}

func (m *memOrderStore) ListBefore(_ context.Context, _ time.Time, _ int) ([]domain.Order, error) {
	return m.orders, nil
}

type memImbalanceStore struct {
	records []domain.ImbalanceRecord
}

func (m *memImbalanceStore) Insert(_ context.Context, r domain.ImbalanceRecord) error {
	m.records = append(m.records, r)
	return nil
}

func (m *memImbalanceStore) ListBefore(_ context.Context, _ time.Time, _ int) ([]domain.ImbalanceRecord, error) {
	return m.records, nil
}

type memCounter struct {
	totals map[string]float64
}

func (m *memCounter) Get(_ context.Context, day string) (float64, error) {
	return m.totals[day], nil
}

func (m *memCounter) Add(_ context.Context, day string, amount float64) error {
	m.totals[day] += amount
	return nil
}

type fixture struct {
	exchange   *fakeExchange
	orders     *memOrderStore
	imbalances *memImbalanceStore
	counter    *memCounter
	engine     *Engine
}

func newFixture(t *testing.T, limits domain.RiskLimits) *fixture {
	t.Helper()

	f := &fixture{
		exchange:   newFakeExchange(),
		orders:     &memOrderStore{},
		imbalances: &memImbalanceStore{},
		counter:    &memCounter{totals: make(map[string]float64)},
	}
	gate := risk.NewGate(f.counter, limits, slog.Default())
	f.engine = New(f.exchange, f.orders, f.imbalances, gate, "run-1", 150, time.Second, slog.Default())
	f.engine.wait = func(context.Context, time.Duration) error { return nil }
	return f
}

func defaultLimits() domain.RiskLimits {
	return domain.RiskLimits{
		MaxNotionalPerTrade: 10,
		MaxDailyNotional:    100,
		MaxOpenOrders:       5,
		MinOrderSize:        2,
	}
}

func testOpportunity() domain.Opportunity {
	return domain.Opportunity{
		Market: domain.MarketInfo{ID: "m1", YesTokenID: "tok-yes", NoTokenID: "tok-no"},
		Yes:    domain.OrderBookTop{Price: 0.45, Size: 30},
		No:     domain.OrderBookTop{Price: 0.45, Size: 40},
	}
}

func (f *fixture) markFilled(orderIDs ...string) {
	for _, id := range orderIDs {
		f.exchange.statuses[id] = domain.OrderState{Status: "FILLED"}
	}
}

func TestExecute_BothLegsFill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())
	opp := testOpportunity()

	// Both legs fill on the single status sample.
	f.exchange.statuses["ex-1"] = domain.OrderState{Status: "filled"}
	f.exchange.statuses["ex-2"] = domain.OrderState{State: "Completed"}

	res, err := f.engine.Execute(ctx, opp)
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, f.exchange.placed, 2)
	assert.Equal(t, placedOrder{TokenID: "tok-yes", Price: 0.45, Size: 2}, f.exchange.placed[0])
	assert.Equal(t, placedOrder{TokenID: "tok-no", Price: 0.45, Size: 2}, f.exchange.placed[1])
	assert.Empty(t, f.exchange.canceled)

	// Daily counter committed the combined leg prices.
	today := risk.DayKey(time.Now())
	assert.InDelta(t, 0.90, f.counter.totals[today], 1e-9)

	// Both orders persisted against the run.
	require.Len(t, f.orders.orders, 2)
	for _, o := range f.orders.orders {
		assert.Equal(t, "run-1", o.RunID)
		assert.Equal(t, domain.OrderSideBuy, o.Side)
	}
	assert.Empty(t, f.imbalances.records)
}

func TestExecute_OneLegFills_CancelsOther(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())

	// Yes leg (ex-1) fills, no leg (ex-2) does not.
	f.markFilled("ex-1")

	res, err := f.engine.Execute(ctx, testOpportunity())
	require.NoError(t, err)
	assert.False(t, res.Success)

	// The unfilled leg is canceled exactly once and the imbalance is recorded.
	assert.Equal(t, []string{"ex-2"}, f.exchange.canceled)
	require.Len(t, f.imbalances.records, 1)
	assert.Equal(t, "partial fill - canceled remaining leg", f.imbalances.records[0].Note)
	assert.Equal(t, "m1", f.imbalances.records[0].MarketID)

	// No daily notional committed on a partial fill.
	today := risk.DayKey(time.Now())
	assert.Zero(t, f.counter.totals[today])
}

func TestExecute_OneLegFills_OtherSide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())

	f.markFilled("ex-2")

	res, err := f.engine.Execute(ctx, testOpportunity())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"ex-1"}, f.exchange.canceled)
}

func TestExecute_NoFills_RetriesWithSlippage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())

	res, err := f.engine.Execute(ctx, testOpportunity())
	require.NoError(t, err)
	assert.False(t, res.Success)

	// Two originals plus two resubmissions at bumped prices.
	require.Len(t, f.exchange.placed, 4)
	bumped := 0.45 * (1 + 150.0/10000)
	assert.Equal(t, "tok-yes", f.exchange.placed[2].TokenID)
	assert.InDelta(t, bumped, f.exchange.placed[2].Price, 1e-12)
	assert.Equal(t, "tok-no", f.exchange.placed[3].TokenID)
	assert.InDelta(t, bumped, f.exchange.placed[3].Price, 1e-12)

	assert.Empty(t, f.exchange.canceled)
	require.Len(t, f.imbalances.records, 1)
	assert.Equal(t, "no fills - retried with slippage", f.imbalances.records[0].Note)

	// Only the original legs are persisted; retries are fire-and-forget.
	assert.Len(t, f.orders.orders, 2)
}

func TestExecute_TradeLimitBlocks(t *testing.T) {
	ctx := context.Background()
	limits := defaultLimits()
	limits.MaxNotionalPerTrade = 0.5
	f := newFixture(t, limits)

	res, err := f.engine.Execute(ctx, testOpportunity())
	require.NoError(t, err)
	assert.False(t, res.Success)

	// Blocked before any exchange interaction.
	assert.Empty(t, f.exchange.placed)
	assert.Empty(t, f.orders.orders)
}

func TestExecute_DailyLimitBlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())

	today := risk.DayKey(time.Now())
	f.counter.totals[today] = 99.5

	res, err := f.engine.Execute(ctx, testOpportunity())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, f.exchange.placed)
}

func TestExecute_SecondLegSubmitFails_CancelsFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())
	f.exchange.placeErr["tok-no"] = errors.New("insufficient balance")

	_, err := f.engine.Execute(ctx, testOpportunity())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit no leg")

	// The orphaned yes leg was canceled best-effort.
	assert.Equal(t, []string{"ex-1"}, f.exchange.canceled)
	assert.Empty(t, f.imbalances.records)
}

func TestExecute_FirstLegSubmitFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())
	f.exchange.placeErr["tok-yes"] = errors.New("rate limited")

	_, err := f.engine.Execute(ctx, testOpportunity())
	require.Error(t, err)
	assert.Empty(t, f.exchange.canceled)
	assert.Empty(t, f.orders.orders)
}

func TestExecute_StatusPollErrorCountsAsUnfilled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLimits())

	// Yes leg fills; the no leg's poll errors out, so it reconciles as a
	// partial fill.
	f.markFilled("ex-1")
	f.exchange.statusErr["ex-2"] = errors.New("timeout")

	res, err := f.engine.Execute(ctx, testOpportunity())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"ex-2"}, f.exchange.canceled)
}

func TestIsFilled(t *testing.T) {
	assert.True(t, IsFilled(domain.OrderState{Status: "filled"}))
	assert.True(t, IsFilled(domain.OrderState{Status: "FILLED"}))
	assert.True(t, IsFilled(domain.OrderState{State: "complete"}))
	assert.True(t, IsFilled(domain.OrderState{State: "Completed"}))
	assert.False(t, IsFilled(domain.OrderState{Status: "live"}))
	assert.False(t, IsFilled(domain.OrderState{State: "open"}))
	assert.False(t, IsFilled(domain.OrderState{}))
}
