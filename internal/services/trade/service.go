// Package trade executes simulated stock trades
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
	"github.com/mkellaway/papertrade/internal/services/portfolio"
)

// Service implements TradeService. Trades execute at the current quote;
// there is no order book or partial fill in the simulator.
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketService
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new trade service
func NewService(storage interfaces.StorageManager, market interfaces.MarketService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
		now:     time.Now,
	}
}

var _ interfaces.TradeService = (*Service)(nil)

// BuyStock buys quantity shares at the current quote.
func (s *Service) BuyStock(ctx context.Context, userID, symbol string, quantity float64) (*models.TradeResult, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", quantity)
	}

	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		return &models.TradeResult{
			Success: false,
			Message: fmt.Sprintf("No price available for %s", symbol),
		}, nil
	}
	if quote.Price <= 0 {
		return &models.TradeResult{
			Success: false,
			Message: fmt.Sprintf("No price available for %s", symbol),
		}, nil
	}

	cost := quantity * quote.Price
	user, err := s.storage.InternalStore().GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if user.CashBalance < cost {
		return &models.TradeResult{
			Success:     false,
			Message:     fmt.Sprintf("Insufficient cash: need %.2f, have %.2f", cost, user.CashBalance),
			CashBalance: user.CashBalance,
		}, nil
	}

	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        models.KindStock,
		Symbol:      symbol,
		Action:      models.ActionBuy,
		Quantity:    quantity,
		UnitPrice:   quote.Price,
		GrossAmount: cost,
		ExecutedAt:  s.now(),
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("buy entry: %w", err)
	}
	if err := s.storage.LedgerStore().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append buy: %w", err)
	}

	balance, err := s.storage.InternalStore().AdjustCash(ctx, userID, -cost)
	if err != nil {
		return nil, fmt.Errorf("debit cash: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", quote.Price).
		Msg("Stock buy committed")

	return &models.TradeResult{Success: true, Transaction: entry, CashBalance: balance}, nil
}

// SellStock sells quantity shares at the current quote. Selling more
// than held is a business rejection, not a clamp; the clamp tolerance in
// aggregation exists for historical ledgers, new trades are validated.
func (s *Service) SellStock(ctx context.Context, userID, symbol string, quantity float64) (*models.TradeResult, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", quantity)
	}

	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil || quote.Price <= 0 {
		return &models.TradeResult{
			Success: false,
			Message: fmt.Sprintf("No price available for %s", symbol),
		}, nil
	}

	held, err := s.heldShares(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if quantity > held+1e-9 {
		return &models.TradeResult{
			Success: false,
			Message: fmt.Sprintf("Insufficient shares: requested %v, holding %v", quantity, held),
		}, nil
	}

	proceeds := quantity * quote.Price
	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        models.KindStock,
		Symbol:      symbol,
		Action:      models.ActionSell,
		Quantity:    quantity,
		UnitPrice:   quote.Price,
		GrossAmount: proceeds,
		ExecutedAt:  s.now(),
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("sell entry: %w", err)
	}
	if err := s.storage.LedgerStore().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append sell: %w", err)
	}

	balance, err := s.storage.InternalStore().AdjustCash(ctx, userID, proceeds)
	if err != nil {
		return nil, fmt.Errorf("credit cash: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", quote.Price).
		Msg("Stock sell committed")

	return &models.TradeResult{Success: true, Transaction: entry, CashBalance: balance}, nil
}

// heldShares folds the stock ledger down to shares held of one symbol.
func (s *Service) heldShares(ctx context.Context, userID, symbol string) (float64, error) {
	entries, err := s.storage.LedgerStore().ListByUser(ctx, userID, models.KindStock)
	if err != nil {
		return 0, fmt.Errorf("list stock ledger: %w", err)
	}
	positions, _ := portfolio.Aggregate(entries)
	for _, pos := range positions {
		if pos.Symbol == symbol {
			return pos.Quantity, nil
		}
	}
	return 0, nil
}
