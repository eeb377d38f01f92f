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

// FundStore holds the mutual fund catalog.
type FundStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.FundStore = (*FundStore)(nil)

func NewFundStore(db *surrealdb.DB, logger *common.Logger) *FundStore {
	return &FundStore{
		db:     db,
		logger: logger,
	}
}

func (s *FundStore) GetFund(ctx context.Context, fundID string) (*models.Fund, error) {
	fund, err := surrealdb.Select[models.Fund](ctx, s.db, surrealmodels.NewRecordID("fund", fundID))
	if err != nil {
		return nil, fmt.Errorf("failed to select fund: %w", err)
	}
	if fund == nil || fund.ID == "" {
		return nil, fmt.Errorf("fund %s: %w", fundID, common.ErrNotFound)
	}
	return fund, nil
}

func (s *FundStore) ListFunds(ctx context.Context) ([]models.Fund, error) {
	list, err := surrealdb.Select[[]models.Fund](ctx, s.db, surrealmodels.Table("fund"))
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	if list == nil {
		return nil, nil
	}
	return *list, nil
}

func (s *FundStore) SaveFund(ctx context.Context, fund *models.Fund) error {
	sql := "UPSERT type::record('fund', $id) CONTENT $fund"
	vars := map[string]any{"id": fund.ID, "fund": fund}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Fund](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save fund after retries: %w", err)
		}
	}
	return nil
}
