package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// LedgerStore persists the append-only transaction ledger. Entries are
// only ever created; there is no update or delete path.
type LedgerStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.LedgerStore = (*LedgerStore)(nil)

func NewLedgerStore(db *surrealdb.DB, logger *common.Logger) *LedgerStore {
	return &LedgerStore{
		db:     db,
		logger: logger,
	}
}

func (s *LedgerStore) Append(ctx context.Context, entry *models.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}

	sql := "CREATE type::record('ledger', $id) CONTENT $entry"
	vars := map[string]any{"id": entry.ID, "entry": entry}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.LedgerEntry](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to append ledger entry after retries: %w", err)
		}
	}
	return nil
}

func (s *LedgerStore) ListByUser(ctx context.Context, userID string, kind models.InstrumentKind) ([]models.LedgerEntry, error) {
	sql := "SELECT * FROM ledger WHERE user_id = $user_id AND kind = $kind ORDER BY executed_at ASC"
	vars := map[string]any{"user_id": userID, "kind": string(kind)}

	results, err := surrealdb.Query[[]models.LedgerEntry](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

func (s *LedgerStore) ListRecent(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	sql := "SELECT * FROM ledger WHERE user_id = $user_id ORDER BY executed_at DESC LIMIT $limit"
	vars := map[string]any{"user_id": userID, "limit": limit}

	results, err := surrealdb.Query[[]models.LedgerEntry](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent ledger entries: %w", err)
	}
	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}
