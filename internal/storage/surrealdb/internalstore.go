package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// InternalStore manages user accounts and per-user key-value settings.
type InternalStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.InternalStore = (*InternalStore)(nil)

func NewInternalStore(db *surrealdb.DB, logger *common.Logger) *InternalStore {
	return &InternalStore{
		db:     db,
		logger: logger,
	}
}

func (s *InternalStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.UserID == "" {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return user, nil
}

func (s *InternalStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := "SELECT * FROM user WHERE email = $email LIMIT 1"
	vars := map[string]any{"email": email}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, fmt.Errorf("user with email %s: %w", email, common.ErrNotFound)
}

func (s *InternalStore) SaveUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	sql := "UPSERT type::record('user', $id) CONTENT $user"
	vars := map[string]any{"id": user.UserID, "user": user}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save user after retries: %w", err)
		}
	}
	return nil
}

func (s *InternalStore) DeleteUser(ctx context.Context, userID string) error {
	_, err := surrealdb.Delete[models.User](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// EnsureCashBalance seeds the user's cash to startingBalance when the
// stored balance is absent or non-positive. Idempotent: an already
// funded account passes through untouched.
func (s *InternalStore) EnsureCashBalance(ctx context.Context, userID string, startingBalance float64) (float64, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.CashBalance > 0 {
		return user.CashBalance, nil
	}

	user.CashBalance = startingBalance
	if err := s.SaveUser(ctx, user); err != nil {
		return 0, fmt.Errorf("failed to seed cash balance: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Float64("balance", startingBalance).
		Msg("Cash balance seeded")

	return startingBalance, nil
}

// AdjustCash applies a signed delta atomically in the database and
// returns the new balance.
func (s *InternalStore) AdjustCash(ctx context.Context, userID string, delta float64) (float64, error) {
	sql := "UPDATE type::record('user', $id) SET cash_balance += $delta, updated_at = time::now() RETURN AFTER"
	vars := map[string]any{"id": userID, "delta": delta}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust cash: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return (*results)[0].Result[0].CashBalance, nil
}

// UserKeyValue ID format: user_kv:<userID>_<key>
func kvID(userID, key string) string {
	return userID + "_" + key
}

func (s *InternalStore) GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error) {
	kv, err := surrealdb.Select[models.UserKeyValue](ctx, s.db, surrealmodels.NewRecordID("user_kv", kvID(userID, key)))
	if err != nil {
		return nil, fmt.Errorf("failed to select user KV: %w", err)
	}
	if kv == nil || kv.Key == "" {
		return nil, fmt.Errorf("user KV %s/%s: %w", userID, key, common.ErrNotFound)
	}
	return kv, nil
}

func (s *InternalStore) SetUserKV(ctx context.Context, userID, key, value string) error {
	kv := models.UserKeyValue{
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	sql := "UPSERT type::record('user_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": kvID(userID, key), "kv": kv}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.UserKeyValue](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set user KV after retries: %w", err)
		}
	}
	return nil
}
