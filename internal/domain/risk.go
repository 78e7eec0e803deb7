package domain

// RiskLimits holds the capital limits applied before any order is placed.
// Loaded once per run, immutable afterwards.
type RiskLimits struct {
	MaxNotionalPerTrade float64
	MaxDailyNotional    float64
	MaxOpenOrders       int
	MinOrderSize        float64
}
