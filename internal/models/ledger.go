package models

import (
	"fmt"
	"math"
	"time"
)

// InstrumentKind distinguishes the two tradeable instrument families.
type InstrumentKind string

const (
	KindStock InstrumentKind = "stock"
	KindFund  InstrumentKind = "fund"
)

// TradeAction is the recorded action of a ledger entry. Stocks use
// buy/sell, funds use subscribe/redeem; both pairs reduce to the same
// increase/decrease semantics during aggregation.
type TradeAction string

const (
	ActionBuy       TradeAction = "buy"
	ActionSell      TradeAction = "sell"
	ActionSubscribe TradeAction = "subscribe"
	ActionRedeem    TradeAction = "redeem"
)

// Direction is a trade action reduced to its effect on a position.
type Direction int

const (
	DirectionIncrease Direction = iota
	DirectionDecrease
)

// Direction maps the action to its position effect. The second return is
// false for unrecognized actions.
func (a TradeAction) Direction() (Direction, bool) {
	switch a {
	case ActionBuy, ActionSubscribe:
		return DirectionIncrease, true
	case ActionSell, ActionRedeem:
		return DirectionDecrease, true
	default:
		return 0, false
	}
}

// LedgerEntry is one immutable transaction record. The ledger is
// append-only; positions are always reconstructed from it, never stored.
//
// GrossAmount follows the recording convention: for stocks it is
// quantity × unit price with any commission embedded, for funds it is
// units × NAV with fees accounted separately, so fund cost basis
// excludes the entry fee.
type LedgerEntry struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Kind        InstrumentKind `json:"kind"`
	Symbol      string         `json:"symbol"`
	Action      TradeAction    `json:"action"`
	Quantity    float64        `json:"quantity"`
	UnitPrice   float64        `json:"unit_price"`
	GrossAmount float64        `json:"gross_amount"`
	ExecutedAt  time.Time      `json:"executed_at"`
}

// Validate checks the entry is structurally sound before it is written.
func (e *LedgerEntry) Validate() error {
	switch e.Kind {
	case KindStock, KindFund:
	default:
		return fmt.Errorf("unknown instrument kind %q", e.Kind)
	}
	if _, ok := e.Action.Direction(); !ok {
		return fmt.Errorf("unknown trade action %q", e.Action)
	}
	if e.Symbol == "" {
		return fmt.Errorf("ledger entry missing symbol")
	}
	if e.Quantity <= 0 || math.IsNaN(e.Quantity) || math.IsInf(e.Quantity, 0) {
		return fmt.Errorf("quantity must be positive and finite, got %v", e.Quantity)
	}
	if e.UnitPrice < 0 || math.IsNaN(e.UnitPrice) || math.IsInf(e.UnitPrice, 0) {
		return fmt.Errorf("unit price must be non-negative and finite, got %v", e.UnitPrice)
	}
	return nil
}

// LedgerWarning is a non-fatal diagnostic produced while folding the
// ledger, e.g. a decrease exceeding the held quantity that was clamped
// to a full liquidation.
type LedgerWarning struct {
	Kind      InstrumentKind `json:"kind"`
	Symbol    string         `json:"symbol"`
	Requested float64        `json:"requested"`
	Available float64        `json:"available"`
	Message   string         `json:"message"`
}
