package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/mkellaway/papertrade/internal/models"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func stockEntry(symbol string, action models.TradeAction, qty, price float64, at time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		UserID:      "u1",
		Kind:        models.KindStock,
		Symbol:      symbol,
		Action:      action,
		Quantity:    qty,
		UnitPrice:   price,
		GrossAmount: qty * price,
		ExecutedAt:  at,
	}
}

func fundEntry(fundID string, action models.TradeAction, units, nav float64, at time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		UserID:      "u1",
		Kind:        models.KindFund,
		Symbol:      fundID,
		Action:      action,
		Quantity:    units,
		UnitPrice:   nav,
		GrossAmount: units * nav,
		ExecutedAt:  at,
	}
}

var t0 = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestAggregate_SingleBuy(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
	}

	positions, warnings := Aggregate(entries)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	p := positions[0]
	if p.Quantity != 100 {
		t.Errorf("Quantity = %v, want 100", p.Quantity)
	}
	if !approxEqual(p.TotalCostBasis, 1000.00, 1e-9) {
		t.Errorf("TotalCostBasis = %v, want 1000", p.TotalCostBasis)
	}
	if !approxEqual(p.AverageCost, 10.00, 1e-9) {
		t.Errorf("AverageCost = %v, want 10", p.AverageCost)
	}
}

func TestAggregate_MultipleBuys_WeightedAverage(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
		stockEntry("AAPL", models.ActionBuy, 50, 16.00, t0.Add(time.Hour)),
	}

	positions, _ := Aggregate(entries)

	p := positions[0]
	// 100*10 + 50*16 = 1800 over 150 shares
	if !approxEqual(p.TotalCostBasis, 1800.00, 1e-9) {
		t.Errorf("TotalCostBasis = %v, want 1800", p.TotalCostBasis)
	}
	if !approxEqual(p.AverageCost, 12.00, 1e-9) {
		t.Errorf("AverageCost = %v, want 12", p.AverageCost)
	}
	// Invariant: average cost is always total cost over quantity
	if !approxEqual(p.AverageCost, p.TotalCostBasis/p.Quantity, 1e-9) {
		t.Errorf("AverageCost %v != TotalCostBasis/Quantity %v", p.AverageCost, p.TotalCostBasis/p.Quantity)
	}
}

func TestAggregate_PartialSell_AverageCostUnchanged(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
		stockEntry("AAPL", models.ActionSell, 40, 15.00, t0.Add(time.Hour)),
	}

	positions, warnings := Aggregate(entries)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	p := positions[0]
	if p.Quantity != 60 {
		t.Errorf("Quantity = %v, want 60", p.Quantity)
	}
	if !approxEqual(p.TotalCostBasis, 600.00, 1e-9) {
		t.Errorf("TotalCostBasis = %v, want 600", p.TotalCostBasis)
	}
	if !approxEqual(p.AverageCost, 10.00, 1e-9) {
		t.Errorf("AverageCost = %v, want 10 (sells leave average cost unchanged)", p.AverageCost)
	}
}

func TestAggregate_FullLiquidation_RemovesPosition(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
		stockEntry("AAPL", models.ActionSell, 100, 12.00, t0.Add(time.Hour)),
	}

	positions, warnings := Aggregate(entries)

	if len(positions) != 0 {
		t.Errorf("positions = %d, want 0 after full liquidation", len(positions))
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none for exact liquidation", warnings)
	}
}

func TestAggregate_OverSell_ClampsWithWarning(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
		stockEntry("AAPL", models.ActionSell, 40, 12.00, t0.Add(time.Hour)),
		stockEntry("AAPL", models.ActionSell, 1000, 12.00, t0.Add(2*time.Hour)),
	}

	positions, warnings := Aggregate(entries)

	if len(positions) != 0 {
		t.Errorf("positions = %d, want 0 (over-sell clamps to full liquidation)", len(positions))
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Symbol != "AAPL" {
		t.Errorf("warning symbol = %q, want AAPL", w.Symbol)
	}
	if w.Requested != 1000 || w.Available != 60 {
		t.Errorf("warning requested/available = %v/%v, want 1000/60", w.Requested, w.Available)
	}
}

func TestAggregate_NeverNegative(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 10, 10.00, t0),
		stockEntry("AAPL", models.ActionSell, 50, 10.00, t0.Add(time.Hour)),
		stockEntry("AAPL", models.ActionBuy, 20, 8.00, t0.Add(2*time.Hour)),
	}

	positions, _ := Aggregate(entries)

	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1 (re-buy after liquidation)", len(positions))
	}
	p := positions[0]
	if p.Quantity < 0 || p.TotalCostBasis < 0 {
		t.Errorf("negative state: qty=%v cost=%v", p.Quantity, p.TotalCostBasis)
	}
	if p.Quantity != 20 || !approxEqual(p.TotalCostBasis, 160.00, 1e-9) {
		t.Errorf("got qty=%v cost=%v, want 20/160", p.Quantity, p.TotalCostBasis)
	}
}

func TestAggregate_OutOfOrderEntries_SortedByTime(t *testing.T) {
	// Sell recorded before the buy; execution order must win.
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionSell, 40, 12.00, t0.Add(time.Hour)),
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
	}

	positions, warnings := Aggregate(entries)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none when sorted by execution time", warnings)
	}
	if len(positions) != 1 || positions[0].Quantity != 60 {
		t.Fatalf("got %+v, want single position of 60", positions)
	}
}

func TestAggregate_FundSubscribeRedeem(t *testing.T) {
	entries := []models.LedgerEntry{
		fundEntry("fund-balanced", models.ActionSubscribe, 200, 5.00, t0),
		fundEntry("fund-balanced", models.ActionRedeem, 100, 5.50, t0.Add(time.Hour)),
	}

	positions, _ := Aggregate(entries)

	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	p := positions[0]
	if p.Kind != models.KindFund {
		t.Errorf("Kind = %v, want fund", p.Kind)
	}
	if p.Quantity != 100 || !approxEqual(p.TotalCostBasis, 500.00, 1e-9) {
		t.Errorf("got qty=%v cost=%v, want 100/500", p.Quantity, p.TotalCostBasis)
	}
}

func TestAggregate_SameSymbolDifferentKind_SeparatePositions(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("VGS", models.ActionBuy, 10, 100.00, t0),
		fundEntry("VGS", models.ActionSubscribe, 10, 1.00, t0),
	}

	positions, _ := Aggregate(entries)

	if len(positions) != 2 {
		t.Fatalf("positions = %d, want 2 (stock and fund tracked separately)", len(positions))
	}
}

func TestAggregate_FirstSeenOrderPreserved(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("MSFT", models.ActionBuy, 1, 300.00, t0),
		stockEntry("AAPL", models.ActionBuy, 1, 150.00, t0.Add(time.Minute)),
		stockEntry("MSFT", models.ActionBuy, 1, 310.00, t0.Add(2*time.Minute)),
	}

	positions, _ := Aggregate(entries)

	if len(positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(positions))
	}
	if positions[0].Symbol != "MSFT" || positions[1].Symbol != "AAPL" {
		t.Errorf("order = [%s, %s], want [MSFT, AAPL]", positions[0].Symbol, positions[1].Symbol)
	}
}

func TestAggregate_UnknownAction_SkippedWithWarning(t *testing.T) {
	entries := []models.LedgerEntry{
		stockEntry("AAPL", models.ActionBuy, 100, 10.00, t0),
		{
			Kind: models.KindStock, Symbol: "AAPL", Action: "split",
			Quantity: 2, ExecutedAt: t0.Add(time.Hour),
		},
	}

	positions, warnings := Aggregate(entries)

	if len(positions) != 1 || positions[0].Quantity != 100 {
		t.Errorf("unknown action must not affect position state")
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(warnings))
	}
}

func TestAggregate_Empty(t *testing.T) {
	positions, warnings := Aggregate(nil)
	if len(positions) != 0 || len(warnings) != 0 {
		t.Errorf("empty ledger: got %d positions, %d warnings", len(positions), len(warnings))
	}
}
