package domain

import "time"

// Run records one invocation of the bot. Every persisted opportunity, order,
// and imbalance carries the run id for audit.
type Run struct {
	ID        string
	Mode      string // "scan" or "live"
	StartedAt time.Time
}

// OpportunityRecord is the persisted form of a detected opportunity.
type OpportunityRecord struct {
	ID         string
	RunID      string
	MarketID   string
	YesTokenID string
	NoTokenID  string
	YesAsk     float64
	NoAsk      float64
	EdgeBps    float64
	AllInCost  float64
	CreatedAt  time.Time
}

// ImbalanceRecord is an audit entry written once per reconciliation outcome
// that is not "both legs filled".
type ImbalanceRecord struct {
	ID         string
	RunID      string
	MarketID   string
	YesTokenID string
	NoTokenID  string
	Note       string
	CreatedAt  time.Time
}
