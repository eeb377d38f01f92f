package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// MarketStore holds the database mirror of stock quotes.
type MarketStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.MarketStore = (*MarketStore)(nil)

func NewMarketStore(db *surrealdb.DB, logger *common.Logger) *MarketStore {
	return &MarketStore{
		db:     db,
		logger: logger,
	}
}

func (s *MarketStore) GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	quote, err := surrealdb.Select[models.StockQuote](ctx, s.db, surrealmodels.NewRecordID("quote", symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to select quote: %w", err)
	}
	if quote == nil || quote.Symbol == "" {
		return nil, fmt.Errorf("quote %s: %w", symbol, common.ErrNotFound)
	}
	return quote, nil
}

func (s *MarketStore) ListQuotes(ctx context.Context) ([]models.StockQuote, error) {
	list, err := surrealdb.Select[[]models.StockQuote](ctx, s.db, surrealmodels.Table("quote"))
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	if list == nil {
		return nil, nil
	}
	return *list, nil
}

func (s *MarketStore) SaveQuote(ctx context.Context, quote *models.StockQuote) error {
	sql := "UPSERT type::record('quote', $id) CONTENT $quote"
	vars := map[string]any{"id": quote.Symbol, "quote": quote}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.StockQuote](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save quote after retries: %w", err)
		}
	}
	return nil
}
