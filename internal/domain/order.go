package domain

import "time"

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Order is one leg of a paired submission. It is written once at submission
// time with the exchange-reported status; later status changes are read from
// the exchange, not written back to this record.
type Order struct {
	ID              string
	RunID           string
	MarketID        string
	TokenID         string
	Side            OrderSide
	Price           float64
	Size            float64
	Status          string // exchange-reported status at submission
	ExchangeOrderID string
	CreatedAt       time.Time
}

// OrderResult is the exchange's response to an order submission.
type OrderResult struct {
	OrderID string
	Status  string
}

// OrderState is a status poll response. Venues report the lifecycle state
// under either "status" or "state"; both are carried so the caller can
// coalesce.
type OrderState struct {
	Status string
	State  string
}
