package models

import (
	"errors"
	"time"
)

// Fund is a mutual fund in the simulator's catalog.
type Fund struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"` // e.g. "Equity", "Bond", "Balanced"
	NAV            float64   `json:"nav"`      // current net asset value per unit
	EntryFeeRate   float64   `json:"entry_fee_rate"`
	ExitFeeRate    float64   `json:"exit_fee_rate"`
	MinHoldingDays int       `json:"min_holding_days"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FundBuyOrder sizes a proposed fund purchase either by cash amount or
// by units. The two are mutually exclusive; exactly one must be set.
type FundBuyOrder struct {
	Amount float64 `json:"amount,omitempty"`
	Units  float64 `json:"units,omitempty"`
}

// Validate checks that exactly one sizing mode is given.
func (o FundBuyOrder) Validate() error {
	if o.Amount > 0 && o.Units > 0 {
		return errors.New("amount and units are mutually exclusive")
	}
	if o.Amount <= 0 && o.Units <= 0 {
		return errors.New("either amount or units must be positive")
	}
	return nil
}

// FundBuyPreview is the computed outcome of a proposed fund purchase.
// Pure function of current NAV and fee rates; nothing is committed.
type FundBuyPreview struct {
	FundID    string  `json:"fund_id"`
	UnitNAV   float64 `json:"unit_nav"`
	Units     float64 `json:"units"`
	Amount    float64 `json:"amount"` // units × NAV
	EntryFee  float64 `json:"entry_fee"`
	TotalCost float64 `json:"total_cost"` // amount + entry fee, debited from cash
}

// FundRedeemPreview is the computed outcome of a proposed redemption.
type FundRedeemPreview struct {
	FundID      string  `json:"fund_id"`
	UnitNAV     float64 `json:"unit_nav"`
	Units       float64 `json:"units"`
	GrossValue  float64 `json:"gross_value"`
	ExitFee     float64 `json:"exit_fee"`
	NetProceeds float64 `json:"net_proceeds"`

	// Advisory set when redeeming before the fund's minimum holding period
	// has elapsed. Informational, never blocking.
	HoldingAdvisory string `json:"holding_advisory,omitempty"`
}

// TradeResult is the structured outcome of a commit-style operation
// (stock buy/sell, fund buy/redeem). Business rejections — insufficient
// cash, insufficient units — come back here, not as errors.
type TradeResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	Transaction *LedgerEntry `json:"transaction,omitempty"`
	CashBalance float64      `json:"cash_balance"`
}
