// Package surrealdb implements the storage layer on SurrealDB
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	internalStore *InternalStore
	ledgerStore   *LedgerStore
	marketStore   *MarketStore
	fundStore     *FundStore
	learnStore    *LearnStore
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// Define tables up front (SurrealDB v3 errors on querying non-existent tables)
	tables := []string{"user", "user_kv", "ledger", "quote", "fund", "course", "course_progress", "chat_message"}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	m := &Manager{
		db:     db,
		logger: logger,
	}

	m.internalStore = NewInternalStore(db, logger)
	m.ledgerStore = NewLedgerStore(db, logger)
	m.marketStore = NewMarketStore(db, logger)
	m.fundStore = NewFundStore(db, logger)
	m.learnStore = NewLearnStore(db, logger)

	logger.Info().
		Str("url", config.Storage.URL).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internalStore
}

func (m *Manager) LedgerStore() interfaces.LedgerStore {
	return m.ledgerStore
}

func (m *Manager) MarketStore() interfaces.MarketStore {
	return m.marketStore
}

func (m *Manager) FundStore() interfaces.FundStore {
	return m.fundStore
}

func (m *Manager) LearnStore() interfaces.LearnStore {
	return m.learnStore
}

// Ping verifies the connection is still serviceable.
func (m *Manager) Ping(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, m.db, "RETURN 1", nil); err != nil {
		return fmt.Errorf("storage ping: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}
