package portfolio

import (
	"math"
	"sort"

	"github.com/mkellaway/papertrade/internal/models"
)

// PriceLookup resolves the current price for an instrument. ok is false
// when no price is known; the position is then valued at zero rather
// than failing the whole snapshot.
type PriceLookup func(kind models.InstrumentKind, symbol string) (price float64, ok bool)

// SectorLookup resolves a stock's sector for allocation bucketing.
// Empty string falls into the "Other" bucket.
type SectorLookup func(symbol string) string

// NameLookup resolves an instrument's display name, or "".
type NameLookup func(kind models.InstrumentKind, symbol string) string

// Valuate prices positions, computes portfolio totals, allocation,
// risk, and summary metrics, and returns them assembled as a snapshot.
// Pure: all market state comes in through the lookups. The positions
// slice is mutated in place with valuation fields.
func Valuate(positions []*models.Position, cash float64, priceFor PriceLookup, sectorFor SectorLookup, nameFor NameLookup) *models.PortfolioSnapshot {
	snap := &models.PortfolioSnapshot{
		CashBalance: cash,
		Positions:   positions,
	}

	for _, pos := range positions {
		price, ok := priceFor(pos.Kind, pos.Symbol)
		if !ok {
			price = 0
		}
		pos.CurrentPrice = price
		pos.MarketValue = pos.Quantity * price
		pos.UnrealizedGain = pos.MarketValue - pos.TotalCostBasis
		if pos.TotalCostBasis > 0 {
			pos.GainPercent = pos.UnrealizedGain / pos.TotalCostBasis * 100
		}
		if nameFor != nil && pos.Name == "" {
			pos.Name = nameFor(pos.Kind, pos.Symbol)
		}

		switch pos.Kind {
		case models.KindStock:
			snap.StockValue += pos.MarketValue
		case models.KindFund:
			snap.FundValue += pos.MarketValue
		}
		snap.TotalCostBasis += pos.TotalCostBasis
		snap.TotalUnrealizedGain += pos.UnrealizedGain
	}

	snap.TotalEquity = cash + snap.StockValue + snap.FundValue
	if snap.TotalCostBasis > 0 {
		snap.TotalGainPercent = snap.TotalUnrealizedGain / snap.TotalCostBasis * 100
	}

	if snap.TotalEquity > 0 {
		for _, pos := range positions {
			pos.WeightPercent = pos.MarketValue / snap.TotalEquity * 100
		}
	}

	snap.Allocation = buildAllocation(positions, cash, snap.TotalEquity, sectorFor)
	snap.Risk = assessRisk(snap.Allocation, snap.StockValue, snap.TotalEquity)
	snap.Metrics = summarize(positions, snap.StockValue)

	return snap
}

// buildAllocation groups market value into buckets: one per stock
// sector, one for mutual funds, one for cash when any is held. Bucket
// values sum to total equity. Sorted by value descending.
func buildAllocation(positions []*models.Position, cash, totalEquity float64, sectorFor SectorLookup) []models.AllocationBucket {
	values := make(map[string]float64)
	var order []string

	add := func(category string, value float64) {
		if _, seen := values[category]; !seen {
			order = append(order, category)
		}
		values[category] += value
	}

	for _, pos := range positions {
		switch pos.Kind {
		case models.KindFund:
			add(models.AllocationFunds, pos.MarketValue)
		default:
			sector := ""
			if sectorFor != nil {
				sector = sectorFor(pos.Symbol)
			}
			if sector == "" {
				sector = models.AllocationOther
			}
			add(sector, pos.MarketValue)
		}
	}
	if cash > 0 {
		add(models.AllocationCash, cash)
	}

	buckets := make([]models.AllocationBucket, 0, len(order))
	for _, category := range order {
		b := models.AllocationBucket{Category: category, Value: values[category]}
		if totalEquity > 0 {
			b.WeightPercent = b.Value / totalEquity * 100
		}
		buckets = append(buckets, b)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})
	return buckets
}

// assessRisk scores portfolio risk from equity exposure and allocation
// concentration — the largest non-cash bucket, so a sector counts as one
// exposure and all funds pool together. A coaching heuristic for
// learners, not a risk model.
func assessRisk(allocation []models.AllocationBucket, stockValue, totalEquity float64) models.RiskAssessment {
	if totalEquity <= 0 {
		return models.RiskAssessment{Score: 0, Label: models.RiskConservative, ColorHint: "green"}
	}

	stockWeight := stockValue / totalEquity

	var largest float64
	for _, b := range allocation {
		if b.Category == models.AllocationCash {
			continue
		}
		if b.Value > largest {
			largest = b.Value
		}
	}
	concentration := largest / totalEquity

	score := int(math.Round(stockWeight*60 + concentration*40))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	label, color := riskBand(score)
	return models.RiskAssessment{Score: score, Label: label, ColorHint: color}
}

func riskBand(score int) (models.RiskLabel, string) {
	switch {
	case score > 75:
		return models.RiskVeryHigh, "red"
	case score > 50:
		return models.RiskAggressive, "orange"
	case score > 25:
		return models.RiskModerate, "yellow"
	default:
		return models.RiskConservative, "green"
	}
}

// summarize computes headline metrics over valued positions.
func summarize(positions []*models.Position, stockValue float64) models.SummaryMetrics {
	m := models.SummaryMetrics{PositionCount: len(positions)}
	if len(positions) == 0 {
		return m
	}

	winners := 0
	stockCount := 0
	best, worst := positions[0], positions[0]
	for _, pos := range positions {
		if pos.GainPercent > 0 {
			winners++
		}
		if pos.Kind == models.KindStock {
			stockCount++
		}
		if pos.GainPercent > best.GainPercent {
			best = pos
		}
		if pos.GainPercent < worst.GainPercent {
			worst = pos
		}
	}

	m.WinRate = math.Round(float64(winners) / float64(len(positions)) * 100)
	m.BestSymbol = best.Symbol
	m.BestGainPct = best.GainPercent
	m.WorstSymbol = worst.Symbol
	m.WorstGainPct = worst.GainPercent
	if stockCount > 0 {
		m.AvgPositionSize = stockValue / float64(stockCount)
	}
	return m
}
