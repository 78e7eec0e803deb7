// Package scanner computes the two-sided arbitrage edge for a binary-outcome
// market from order-book snapshots. All functions are pure; the heterogeneous
// wire encodings of book levels are normalized before they reach this package.
package scanner

import (
	"github.com/alanyoungcy/pairbot/internal/domain"
)

// TopOfBook returns the best ask of the book. It reports false for an empty
// ask list or a degenerate top (price or size not strictly positive), so
// callers never see a zero-priced level.
func TopOfBook(book domain.OrderBook) (domain.OrderBookTop, bool) {
	if len(book.Asks) == 0 {
		return domain.OrderBookTop{}, false
	}
	top := book.Asks[0]
	if top.Price <= 0 || top.Size <= 0 {
		return domain.OrderBookTop{}, false
	}
	return domain.OrderBookTop{Price: top.Price, Size: top.Size}, true
}

// ComputeEdgeBps returns the arbitrage edge in basis points of a $1 payout
// for buying one unit of each side at the given ask prices. Fees and slippage
// are both charged proportionally on the combined cost, so the result is
// symmetric in the two prices and strictly decreasing in both bps arguments.
func ComputeEdgeBps(yesPrice, noPrice, feeBps, slippageBps float64) float64 {
	cost := yesPrice + noPrice
	fees := cost * feeBps / 10000
	slippage := cost * slippageBps / 10000
	allIn := cost + fees + slippage
	return (1.0 - allIn) * 10000
}

// Scan evaluates one market's yes and no books and returns an Opportunity
// when both tops are present and each side has at least minOrderSize
// available. It reports false otherwise. Scan has no side effects; whether
// the edge clears the execution threshold is the caller's decision.
func Scan(market domain.MarketInfo, yesBook, noBook domain.OrderBook, feeBps, slippageBps, minOrderSize float64) (domain.Opportunity, bool) {
	yesTop, ok := TopOfBook(yesBook)
	if !ok {
		return domain.Opportunity{}, false
	}
	noTop, ok := TopOfBook(noBook)
	if !ok {
		return domain.Opportunity{}, false
	}
	if yesTop.Size < minOrderSize || noTop.Size < minOrderSize {
		return domain.Opportunity{}, false
	}

	cost := yesTop.Price + noTop.Price
	return domain.Opportunity{
		Market:    market,
		Yes:       yesTop,
		No:        noTop,
		EdgeBps:   ComputeEdgeBps(yesTop.Price, noTop.Price, feeBps, slippageBps),
		AllInCost: cost * (1 + (feeBps+slippageBps)/10000),
	}, true
}
