// Package fund manages the mutual fund catalog and fund transactions
package fund

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
	"github.com/mkellaway/papertrade/internal/services/portfolio"
)

// Service implements FundService. Fee arithmetic runs on decimals so
// previews and commits agree to the cent; results convert to float64 at
// the boundary.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new fund service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

var _ interfaces.FundService = (*Service)(nil)

// ListFunds returns the fund catalog.
func (s *Service) ListFunds(ctx context.Context) ([]models.Fund, error) {
	return s.storage.FundStore().ListFunds(ctx)
}

// GetFund returns one fund by ID.
func (s *Service) GetFund(ctx context.Context, fundID string) (*models.Fund, error) {
	f, err := s.storage.FundStore().GetFund(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("fund %s: %w", fundID, err)
	}
	return f, nil
}

// PreviewBuy computes the outcome of a purchase sized by amount or by
// units at the current NAV. Pure calculation; nothing is committed.
func (s *Service) PreviewBuy(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("fund buy order: %w", err)
	}
	f, err := s.GetFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	if f.NAV <= 0 {
		return nil, fmt.Errorf("fund %s has no current NAV", fundID)
	}

	nav := decimal.NewFromFloat(f.NAV)

	var amt, units decimal.Decimal
	if order.Units > 0 {
		units = decimal.NewFromFloat(order.Units).Round(4)
		amt = units.Mul(nav)
	} else {
		amt = decimal.NewFromFloat(order.Amount)
		units = amt.Div(nav).Round(4)
	}
	entryFee := amt.Mul(decimal.NewFromFloat(f.EntryFeeRate)).Round(2)
	totalCost := amt.Add(entryFee).Round(2)

	return &models.FundBuyPreview{
		FundID:    f.ID,
		UnitNAV:   f.NAV,
		Units:     units.InexactFloat64(),
		Amount:    amt.Round(2).InexactFloat64(),
		EntryFee:  entryFee.InexactFloat64(),
		TotalCost: totalCost.InexactFloat64(),
	}, nil
}

// PreviewRedeem computes the outcome of redeeming units at the current
// NAV, including the minimum-holding-period advisory. The advisory is
// informational only; early redemption is never blocked.
func (s *Service) PreviewRedeem(ctx context.Context, userID, fundID string, units float64) (*models.FundRedeemPreview, error) {
	if units <= 0 {
		return nil, fmt.Errorf("units must be positive, got %v", units)
	}
	f, err := s.GetFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	if f.NAV <= 0 {
		return nil, fmt.Errorf("fund %s has no current NAV", fundID)
	}

	u := decimal.NewFromFloat(units)
	nav := decimal.NewFromFloat(f.NAV)

	gross := u.Mul(nav).Round(2)
	exitFee := gross.Mul(decimal.NewFromFloat(f.ExitFeeRate)).Round(2)
	net := gross.Sub(exitFee)

	preview := &models.FundRedeemPreview{
		FundID:      f.ID,
		UnitNAV:     f.NAV,
		Units:       units,
		GrossValue:  gross.InexactFloat64(),
		ExitFee:     exitFee.InexactFloat64(),
		NetProceeds: net.InexactFloat64(),
	}

	if userID != "" && f.MinHoldingDays > 0 {
		if advisory := s.holdingAdvisory(ctx, userID, f); advisory != "" {
			preview.HoldingAdvisory = advisory
		}
	}
	return preview, nil
}

// holdingAdvisory checks the user's most recent subscription against the
// fund's minimum holding period. Ledger errors yield no advisory; the
// preview must not fail over an optional hint.
func (s *Service) holdingAdvisory(ctx context.Context, userID string, f *models.Fund) string {
	entries, err := s.storage.LedgerStore().ListByUser(ctx, userID, models.KindFund)
	if err != nil {
		s.logger.Warn().Err(err).Str("fund_id", f.ID).Msg("Skipping holding advisory, ledger unavailable")
		return ""
	}

	var lastSubscribe time.Time
	for _, e := range entries {
		if e.Symbol == f.ID && e.Action == models.ActionSubscribe && e.ExecutedAt.After(lastSubscribe) {
			lastSubscribe = e.ExecutedAt
		}
	}
	if lastSubscribe.IsZero() {
		return ""
	}

	heldUntil := lastSubscribe.AddDate(0, 0, f.MinHoldingDays)
	if s.now().Before(heldUntil) {
		return fmt.Sprintf("This fund has a recommended minimum holding period of %d days; your most recent purchase was on %s. You can still redeem now.",
			f.MinHoldingDays, lastSubscribe.Format("2006-01-02"))
	}
	return ""
}

// Buy commits a fund subscription. Re-runs the preview against current
// catalog state, checks cash, debits the total cost, and appends the
// ledger entry. Business rejections come back on the result.
func (s *Service) Buy(ctx context.Context, userID, fundID string, order models.FundBuyOrder) (*models.TradeResult, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}

	preview, err := s.PreviewBuy(ctx, fundID, order)
	if err != nil {
		return nil, err
	}

	user, err := s.storage.InternalStore().GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if user.CashBalance < preview.TotalCost {
		return &models.TradeResult{
			Success:     false,
			Message:     fmt.Sprintf("Insufficient cash: need %.2f, have %.2f", preview.TotalCost, user.CashBalance),
			CashBalance: user.CashBalance,
		}, nil
	}

	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        models.KindFund,
		Symbol:      fundID,
		Action:      models.ActionSubscribe,
		Quantity:    preview.Units,
		UnitPrice:   preview.UnitNAV,
		GrossAmount: preview.Amount,
		ExecutedAt:  s.now(),
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("fund buy entry: %w", err)
	}
	if err := s.storage.LedgerStore().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append fund buy: %w", err)
	}

	balance, err := s.storage.InternalStore().AdjustCash(ctx, userID, -preview.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("debit cash: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("fund_id", fundID).
		Float64("units", preview.Units).
		Float64("total_cost", preview.TotalCost).
		Msg("Fund subscription committed")

	return &models.TradeResult{Success: true, Transaction: entry, CashBalance: balance}, nil
}

// Redeem commits a fund redemption. Verifies held units from the
// ledger, appends the redeem entry, and credits net proceeds.
func (s *Service) Redeem(ctx context.Context, userID, fundID string, units float64) (*models.TradeResult, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}

	preview, err := s.PreviewRedeem(ctx, userID, fundID, units)
	if err != nil {
		return nil, err
	}

	held, err := s.heldUnits(ctx, userID, fundID)
	if err != nil {
		return nil, err
	}
	if units > held+1e-9 {
		return &models.TradeResult{
			Success: false,
			Message: fmt.Sprintf("Insufficient units: requested %.4f, holding %.4f", units, held),
		}, nil
	}

	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        models.KindFund,
		Symbol:      fundID,
		Action:      models.ActionRedeem,
		Quantity:    units,
		UnitPrice:   preview.UnitNAV,
		GrossAmount: preview.GrossValue,
		ExecutedAt:  s.now(),
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("fund redeem entry: %w", err)
	}
	if err := s.storage.LedgerStore().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append fund redeem: %w", err)
	}

	balance, err := s.storage.InternalStore().AdjustCash(ctx, userID, preview.NetProceeds)
	if err != nil {
		return nil, fmt.Errorf("credit cash: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("fund_id", fundID).
		Float64("units", units).
		Float64("net_proceeds", preview.NetProceeds).
		Msg("Fund redemption committed")

	return &models.TradeResult{Success: true, Transaction: entry, CashBalance: balance}, nil
}

// Holdings returns the user's current fund positions valued at NAV.
func (s *Service) Holdings(ctx context.Context, userID string) ([]*models.Position, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}

	entries, err := s.storage.LedgerStore().ListByUser(ctx, userID, models.KindFund)
	if err != nil {
		return nil, fmt.Errorf("list fund ledger: %w", err)
	}
	funds, err := s.storage.FundStore().ListFunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list funds: %w", err)
	}
	fundByID := make(map[string]models.Fund, len(funds))
	for _, f := range funds {
		fundByID[f.ID] = f
	}

	positions, _ := portfolio.Aggregate(entries)
	for _, pos := range positions {
		f, ok := fundByID[pos.Symbol]
		if !ok {
			continue
		}
		pos.Name = f.Name
		pos.CurrentPrice = f.NAV
		pos.MarketValue = pos.Quantity * f.NAV
		pos.UnrealizedGain = pos.MarketValue - pos.TotalCostBasis
		if pos.TotalCostBasis > 0 {
			pos.GainPercent = pos.UnrealizedGain / pos.TotalCostBasis * 100
		}
	}
	return positions, nil
}

// heldUnits folds the user's fund ledger down to units held of one fund.
func (s *Service) heldUnits(ctx context.Context, userID, fundID string) (float64, error) {
	entries, err := s.storage.LedgerStore().ListByUser(ctx, userID, models.KindFund)
	if err != nil {
		return 0, fmt.Errorf("list fund ledger: %w", err)
	}
	positions, _ := portfolio.Aggregate(entries)
	for _, pos := range positions {
		if pos.Symbol == fundID {
			return pos.Quantity, nil
		}
	}
	return 0, nil
}
