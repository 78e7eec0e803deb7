package domain

// MarketInfo describes a binary-outcome market as produced by discovery.
// It is immutable once built; the scan loop consumes it read-only.
type MarketInfo struct {
	ID         string
	Question   string
	YesTokenID string
	NoTokenID  string
	Volume     float64 // 0 when the venue did not report it
	Liquidity  float64 // 0 when the venue did not report it
	Category   string
	Active     bool
}
