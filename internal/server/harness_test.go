package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/mkellaway/papertrade/internal/app"
	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// newTestServer builds a Server around a bare App. Individual tests set
// the service fields they exercise.
func newTestServer(configure func(a *app.App)) *Server {
	logger := common.NewSilentLogger()
	a := &app.App{
		Config: common.NewDefaultConfig(),
		Logger: logger,
	}
	if configure != nil {
		configure(a)
	}
	return &Server{app: a, logger: logger}
}

// authedRequest attaches a UserContext, bypassing the bearer middleware.
func authedRequest(r *http.Request, userID string) *http.Request {
	uc := &common.UserContext{UserID: userID, Email: userID + "@example.com", Role: models.RoleUser}
	return r.WithContext(common.WithUserContext(r.Context(), uc))
}

func doRequest(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// --- in-memory InternalStore for auth and middleware tests ---

type memoryInternalStore struct {
	users map[string]*models.User
}

var _ interfaces.InternalStore = (*memoryInternalStore)(nil)

func newMemoryInternalStore() *memoryInternalStore {
	return &memoryInternalStore{users: map[string]*models.User{}}
}

func (s *memoryInternalStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := s.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
}

func (s *memoryInternalStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, common.ErrNotFound)
}

func (s *memoryInternalStore) SaveUser(ctx context.Context, user *models.User) error {
	copied := *user
	s.users[user.UserID] = &copied
	return nil
}

func (s *memoryInternalStore) DeleteUser(ctx context.Context, userID string) error {
	delete(s.users, userID)
	return nil
}

func (s *memoryInternalStore) EnsureCashBalance(ctx context.Context, userID string, startingBalance float64) (float64, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	if u.CashBalance > 0 {
		return u.CashBalance, nil
	}
	u.CashBalance = startingBalance
	return startingBalance, nil
}

func (s *memoryInternalStore) AdjustCash(ctx context.Context, userID string, delta float64) (float64, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	u.CashBalance += delta
	return u.CashBalance, nil
}

func (s *memoryInternalStore) GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error) {
	return nil, common.ErrNotFound
}

func (s *memoryInternalStore) SetUserKV(ctx context.Context, userID, key, value string) error {
	return nil
}

// memoryStorage satisfies interfaces.StorageManager for handler tests.
// Stores not set by a test stay nil.
type memoryStorage struct {
	internal *memoryInternalStore
	ledger   interfaces.LedgerStore
}

var _ interfaces.StorageManager = (*memoryStorage)(nil)

func (m *memoryStorage) InternalStore() interfaces.InternalStore { return m.internal }
func (m *memoryStorage) LedgerStore() interfaces.LedgerStore     { return m.ledger }
func (m *memoryStorage) MarketStore() interfaces.MarketStore     { return nil }
func (m *memoryStorage) FundStore() interfaces.FundStore         { return nil }
func (m *memoryStorage) LearnStore() interfaces.LearnStore       { return nil }
func (m *memoryStorage) Ping(ctx context.Context) error          { return nil }
func (m *memoryStorage) Close() error                            { return nil }
