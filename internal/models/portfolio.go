package models

import "time"

// PositionKey identifies an instrument within a portfolio.
type PositionKey struct {
	Kind   InstrumentKind
	Symbol string
}

// Position is a currently-held instrument reconstructed from the ledger.
// Recomputed on every snapshot; never persisted.
type Position struct {
	Kind           InstrumentKind `json:"kind"`
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name,omitempty"`
	Quantity       float64        `json:"quantity"`
	TotalCostBasis float64        `json:"total_cost_basis"`
	AverageCost    float64        `json:"average_cost"`

	// Valuation fields — populated by the valuation engine, zero until then.
	CurrentPrice   float64 `json:"current_price"`
	MarketValue    float64 `json:"market_value"`
	UnrealizedGain float64 `json:"unrealized_gain"`
	GainPercent    float64 `json:"gain_percent"`
	WeightPercent  float64 `json:"weight_percent"` // share of total equity
}

// Key returns the position's instrument key.
func (p *Position) Key() PositionKey {
	return PositionKey{Kind: p.Kind, Symbol: p.Symbol}
}

// AllocationBucket is one slice of the portfolio allocation breakdown:
// a stock sector, the "Mutual Funds" bucket, or "Cash".
type AllocationBucket struct {
	Category      string  `json:"category"`
	Value         float64 `json:"value"`
	WeightPercent float64 `json:"weight_percent"`
}

// Allocation bucket names for non-sector categories.
const (
	AllocationCash  = "Cash"
	AllocationFunds = "Mutual Funds"
	AllocationOther = "Other"
)

// RiskLabel classifies a risk score into a user-facing band.
type RiskLabel string

const (
	RiskConservative RiskLabel = "Conservative"
	RiskModerate     RiskLabel = "Moderate"
	RiskAggressive   RiskLabel = "Aggressive"
	RiskVeryHigh     RiskLabel = "Very High"
)

// RiskAssessment is the heuristic concentration-based risk score.
// Not a financial model — a coaching aid for the simulator.
type RiskAssessment struct {
	Score     int       `json:"score"` // 0–100
	Label     RiskLabel `json:"label"`
	ColorHint string    `json:"color_hint"`
}

// SummaryMetrics are the portfolio-level headline numbers.
type SummaryMetrics struct {
	PositionCount   int     `json:"position_count"`
	WinRate         float64 `json:"win_rate"` // % of positions with positive gain, rounded
	BestSymbol      string  `json:"best_symbol,omitempty"`
	BestGainPct     float64 `json:"best_gain_pct"`
	WorstSymbol     string  `json:"worst_symbol,omitempty"`
	WorstGainPct    float64 `json:"worst_gain_pct"`
	AvgPositionSize float64 `json:"avg_position_size"` // stock market value / stock position count
}

// PortfolioSnapshot is a fully computed, point-in-time view of a user's
// simulated portfolio. Owned by the requesting computation; rebuilt from the
// full transaction history on every request.
type PortfolioSnapshot struct {
	UserID      string    `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`

	CashBalance float64     `json:"cash_balance"`
	Positions   []*Position `json:"positions"`
	StockValue  float64     `json:"stock_value"`
	FundValue   float64     `json:"fund_value"`
	TotalEquity float64     `json:"total_equity"` // cash + market value of all positions

	TotalCostBasis      float64 `json:"total_cost_basis"`
	TotalUnrealizedGain float64 `json:"total_unrealized_gain"`
	TotalGainPercent    float64 `json:"total_gain_percent"`

	Allocation []AllocationBucket `json:"allocation"`
	Risk       RiskAssessment     `json:"risk"`
	Metrics    SummaryMetrics     `json:"metrics"`

	// Warnings surfaced from aggregation (e.g. over-sell clamps); Degraded
	// names upstream sources that fell back to defaults during assembly.
	Warnings []LedgerWarning `json:"warnings,omitempty"`
	Degraded []string        `json:"degraded_sources,omitempty"`
}

// DashboardSummary is the condensed projection of a snapshot used by the
// dashboard view. Always derived from a full snapshot, never computed
// independently.
type DashboardSummary struct {
	TotalEquity    float64            `json:"total_equity"`
	CashBalance    float64            `json:"cash_balance"`
	InvestedValue  float64            `json:"invested_value"`
	UnrealizedGain float64            `json:"unrealized_gain"`
	GainPercent    float64            `json:"gain_percent"`
	PositionCount  int                `json:"position_count"`
	WinRate        float64            `json:"win_rate"`
	Risk           RiskAssessment     `json:"risk"`
	TopAllocations []AllocationBucket `json:"top_allocations"`
}
