package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook. The venue's
// heterogeneous level encodings are normalized into this type at the
// platform boundary.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBook is the ask/bid ladder for a single outcome token.
type OrderBook struct {
	AssetID   string
	Asks      []PriceLevel
	Bids      []PriceLevel
	Timestamp time.Time
}

// OrderBookTop is the best ask and its available size.
type OrderBookTop struct {
	Price float64
	Size  float64
}

// Opportunity is a two-sided arbitrage candidate: buying one unit of the yes
// token and one unit of the no token costs AllInCost against a $1 redemption.
// It is created once per market per scan cycle and consumed immediately.
type Opportunity struct {
	Market    MarketInfo
	Yes       OrderBookTop
	No        OrderBookTop
	EdgeBps   float64
	AllInCost float64
}
