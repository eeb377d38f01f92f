// Package interfaces defines service contracts for Papertrade
package interfaces

import (
	"context"

	"github.com/mkellaway/papertrade/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	// Storage accessors
	InternalStore() InternalStore
	LedgerStore() LedgerStore
	MarketStore() MarketStore
	FundStore() FundStore
	LearnStore() LearnStore

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// InternalStore manages user accounts and per-user key-value settings.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error

	// EnsureCashBalance seeds the user's cash to startingBalance when the
	// stored balance is absent or non-positive, and returns the effective
	// balance. Idempotent.
	EnsureCashBalance(ctx context.Context, userID string, startingBalance float64) (float64, error)

	// AdjustCash applies a signed delta to the user's cash balance and
	// returns the new balance.
	AdjustCash(ctx context.Context, userID string, delta float64) (float64, error)

	// Per-user key-value settings
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
}

// LedgerStore persists the append-only transaction ledger.
type LedgerStore interface {
	// Append writes one immutable entry. Entries are never updated or
	// deleted.
	Append(ctx context.Context, entry *models.LedgerEntry) error

	// ListByUser returns the user's entries of one instrument kind,
	// ordered by execution time ascending.
	ListByUser(ctx context.Context, userID string, kind models.InstrumentKind) ([]models.LedgerEntry, error)

	// ListRecent returns the user's most recent entries across both
	// kinds, newest first, capped at limit.
	ListRecent(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
}

// MarketStore holds the database mirror of stock quotes.
type MarketStore interface {
	GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error)
	ListQuotes(ctx context.Context) ([]models.StockQuote, error)
	SaveQuote(ctx context.Context, quote *models.StockQuote) error
}

// FundStore holds the mutual fund catalog.
type FundStore interface {
	GetFund(ctx context.Context, fundID string) (*models.Fund, error)
	ListFunds(ctx context.Context) ([]models.Fund, error)
	SaveFund(ctx context.Context, fund *models.Fund) error
}

// LearnStore holds courses, per-user progress, and tutor chat history.
type LearnStore interface {
	// Courses
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	SaveCourse(ctx context.Context, course *models.Course) error

	// Progress
	GetProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error)
	SaveProgress(ctx context.Context, progress *models.CourseProgress) error
	ListProgress(ctx context.Context, userID string) ([]models.CourseProgress, error)

	// Tutor chat
	AppendChat(ctx context.Context, msg *models.ChatMessage) error
	ListChat(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
}
