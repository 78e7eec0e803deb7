package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

func book(levels ...domain.PriceLevel) domain.OrderBook {
	return domain.OrderBook{Asks: levels}
}

func TestComputeEdgeBps_KnownValue(t *testing.T) {
	// cost 0.90, fees+slippage 1.5% -> all-in 0.9135 -> edge (1-0.9135)*10000
	edge := ComputeEdgeBps(0.45, 0.45, 100, 50)
	assert.InDelta(t, 865.0, edge, 1e-9)
}

func TestComputeEdgeBps_Symmetric(t *testing.T) {
	a := ComputeEdgeBps(0.42, 0.51, 100, 50)
	b := ComputeEdgeBps(0.51, 0.42, 100, 50)
	assert.Equal(t, a, b)
}

func TestComputeEdgeBps_DecreasingInCosts(t *testing.T) {
	base := ComputeEdgeBps(0.45, 0.45, 100, 50)
	assert.Less(t, ComputeEdgeBps(0.45, 0.45, 200, 50), base)
	assert.Less(t, ComputeEdgeBps(0.45, 0.45, 100, 100), base)
}

func TestTopOfBook_EmptyAsks(t *testing.T) {
	_, ok := TopOfBook(book())
	assert.False(t, ok)
}

func TestTopOfBook_DegenerateLevels(t *testing.T) {
	_, ok := TopOfBook(book(domain.PriceLevel{Price: 0, Size: 10}))
	assert.False(t, ok)

	_, ok = TopOfBook(book(domain.PriceLevel{Price: -0.1, Size: 10}))
	assert.False(t, ok)

	_, ok = TopOfBook(book(domain.PriceLevel{Price: 0.45, Size: 0}))
	assert.False(t, ok)
}

func TestTopOfBook_ReturnsFirstAsk(t *testing.T) {
	top, ok := TopOfBook(book(
		domain.PriceLevel{Price: 0.45, Size: 20},
		domain.PriceLevel{Price: 0.46, Size: 100},
	))
	require.True(t, ok)
	assert.Equal(t, 0.45, top.Price)
	assert.Equal(t, 20.0, top.Size)
}

func TestScan_RejectsThinSide(t *testing.T) {
	market := domain.MarketInfo{ID: "m1", YesTokenID: "yes", NoTokenID: "no"}
	yes := book(domain.PriceLevel{Price: 0.40, Size: 0.5})
	no := book(domain.PriceLevel{Price: 0.40, Size: 50})

	// Prices alone would give a large positive edge, but the yes side is
	// below the minimum order size.
	_, ok := Scan(market, yes, no, 100, 50, 1)
	assert.False(t, ok)

	_, ok = Scan(market, no, yes, 100, 50, 1)
	assert.False(t, ok)
}

func TestScan_RejectsMissingTop(t *testing.T) {
	market := domain.MarketInfo{ID: "m1"}
	good := book(domain.PriceLevel{Price: 0.40, Size: 50})

	_, ok := Scan(market, book(), good, 100, 50, 1)
	assert.False(t, ok)

	_, ok = Scan(market, good, book(), 100, 50, 1)
	assert.False(t, ok)
}

func TestScan_BuildsOpportunity(t *testing.T) {
	market := domain.MarketInfo{ID: "m1", YesTokenID: "yes", NoTokenID: "no"}
	yes := book(domain.PriceLevel{Price: 0.45, Size: 30})
	no := book(domain.PriceLevel{Price: 0.45, Size: 40})

	opp, ok := Scan(market, yes, no, 100, 50, 1)
	require.True(t, ok)

	assert.Equal(t, market, opp.Market)
	assert.Equal(t, 0.45, opp.Yes.Price)
	assert.Equal(t, 0.45, opp.No.Price)
	assert.InDelta(t, 865.0, opp.EdgeBps, 1e-9)
	assert.InDelta(t, 0.9135, opp.AllInCost, 1e-9)
	// The two invariants agree: edge_bps = (1 - all_in_cost) * 10000.
	assert.InDelta(t, (1-opp.AllInCost)*10000, opp.EdgeBps, 1e-9)
}
