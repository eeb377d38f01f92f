// Package portfolio computes portfolio views from the transaction ledger
package portfolio

import (
	"fmt"
	"math"
	"sort"

	"github.com/mkellaway/papertrade/internal/models"
)

// quantityEpsilon is the threshold below which a holding counts as fully
// liquidated. Guards against float residue after a complete sell-off.
const quantityEpsilon = 1e-9

// Aggregate folds ledger entries into current positions using the
// weighted-average-cost method. It is a pure function: entries in,
// positions out, no storage or clock access.
//
// Entries are processed in execution-time order. A decrease larger than
// the held quantity is clamped to a full liquidation and reported as a
// warning rather than an error; the ledger is historical fact and
// aggregation must always produce a usable result. Positions whose
// quantity reaches zero are dropped. Result order is first-seen order of
// each instrument, which keeps downstream tie-breaks stable.
func Aggregate(entries []models.LedgerEntry) ([]*models.Position, []models.LedgerWarning) {
	sorted := make([]models.LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExecutedAt.Before(sorted[j].ExecutedAt)
	})

	byKey := make(map[models.PositionKey]*models.Position)
	var order []models.PositionKey
	var warnings []models.LedgerWarning

	for _, e := range sorted {
		dir, ok := e.Action.Direction()
		if !ok {
			warnings = append(warnings, models.LedgerWarning{
				Kind:    e.Kind,
				Symbol:  e.Symbol,
				Message: fmt.Sprintf("skipped ledger entry with unknown action %q", e.Action),
			})
			continue
		}
		if e.Quantity <= 0 || math.IsNaN(e.Quantity) || math.IsInf(e.Quantity, 0) {
			warnings = append(warnings, models.LedgerWarning{
				Kind:      e.Kind,
				Symbol:    e.Symbol,
				Requested: e.Quantity,
				Message:   fmt.Sprintf("skipped ledger entry with invalid quantity %v", e.Quantity),
			})
			continue
		}

		key := models.PositionKey{Kind: e.Kind, Symbol: e.Symbol}
		pos, exists := byKey[key]
		if !exists {
			pos = &models.Position{Kind: e.Kind, Symbol: e.Symbol}
			byKey[key] = pos
			order = append(order, key)
		}

		switch dir {
		case models.DirectionIncrease:
			pos.Quantity += e.Quantity
			pos.TotalCostBasis += e.GrossAmount
			pos.AverageCost = pos.TotalCostBasis / pos.Quantity

		case models.DirectionDecrease:
			qty := e.Quantity
			if qty > pos.Quantity {
				warnings = append(warnings, models.LedgerWarning{
					Kind:      e.Kind,
					Symbol:    e.Symbol,
					Requested: qty,
					Available: pos.Quantity,
					Message: fmt.Sprintf("decrease of %v exceeds held %v for %s; clamped to full liquidation",
						qty, pos.Quantity, e.Symbol),
				})
				qty = pos.Quantity
			}
			pos.TotalCostBasis = math.Max(0, pos.TotalCostBasis-pos.AverageCost*qty)
			pos.Quantity = math.Max(0, pos.Quantity-qty)
			if pos.Quantity > quantityEpsilon {
				pos.AverageCost = pos.TotalCostBasis / pos.Quantity
			} else {
				pos.Quantity = 0
				pos.TotalCostBasis = 0
				pos.AverageCost = 0
			}
		}
	}

	positions := make([]*models.Position, 0, len(order))
	for _, key := range order {
		pos := byKey[key]
		if pos.Quantity > quantityEpsilon {
			positions = append(positions, pos)
		}
	}
	return positions, warnings
}
