// Package interfaces defines service contracts for Papertrade
package interfaces

import (
	"context"

	"github.com/mkellaway/papertrade/internal/models"
)

// PortfolioService computes portfolio views from the ledger.
type PortfolioService interface {
	// Snapshot assembles a full point-in-time portfolio view for the user.
	// Upstream source failures degrade the snapshot rather than failing it;
	// degraded sources are named on the result.
	Snapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error)

	// Dashboard returns the condensed dashboard projection, derived from a
	// full snapshot.
	Dashboard(ctx context.Context, userID string) (*models.DashboardSummary, error)

	// Activity returns the user's most recent ledger entries, newest first.
	Activity(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
}

// TradeService executes simulated stock trades against the ledger and
// the user's cash balance.
type TradeService interface {
	// BuyStock buys quantity shares at the current quote. Business
	// rejections (unknown symbol, insufficient cash) come back on the
	// result, not as errors.
	BuyStock(ctx context.Context, userID, symbol string, quantity float64) (*models.TradeResult, error)

	// SellStock sells quantity shares at the current quote. Selling more
	// than held is rejected.
	SellStock(ctx context.Context, userID, symbol string, quantity float64) (*models.TradeResult, error)
}

// FundService manages the mutual fund catalog and fund transactions.
// Previews are pure calculations; Buy and Redeem re-validate and commit.
type FundService interface {
	ListFunds(ctx context.Context) ([]models.Fund, error)
	GetFund(ctx context.Context, fundID string) (*models.Fund, error)

	// PreviewBuy computes units, entry fee, and total cost for a purchase
	// sized by amount or by units at the current NAV. Nothing is committed.
	PreviewBuy(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error)

	// PreviewRedeem computes gross value, exit fee, and net proceeds for
	// redeeming units at the current NAV, including a non-blocking
	// minimum-holding-period advisory when applicable.
	PreviewRedeem(ctx context.Context, userID, fundID string, units float64) (*models.FundRedeemPreview, error)

	// Buy commits a fund subscription: debits cash, appends to the ledger.
	Buy(ctx context.Context, userID, fundID string, order models.FundBuyOrder) (*models.TradeResult, error)

	// Redeem commits a fund redemption: appends to the ledger, credits
	// cash with the net proceeds.
	Redeem(ctx context.Context, userID, fundID string, units float64) (*models.TradeResult, error)

	// Holdings returns the user's current fund positions valued at NAV.
	Holdings(ctx context.Context, userID string) ([]*models.Position, error)
}

// MarketService serves stock quotes and derived chart data. Quotes come
// from the live feed when available and fall back to the database mirror.
type MarketService interface {
	GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error)
	ListQuotes(ctx context.Context) ([]models.StockQuote, error)

	// History generates a synthetic OHLC series anchored at the current
	// quote, for charting only.
	History(ctx context.Context, symbol string, days int) (*models.PriceHistory, error)

	// Chart renders the history series as a PNG.
	Chart(ctx context.Context, symbol string, days int) ([]byte, error)
}

// CourseService serves the learning curriculum and tracks progress.
type CourseService interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	GetProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error)

	// CompleteLesson marks a lesson done and returns the updated progress.
	// Completing an already-completed lesson is a no-op.
	CompleteLesson(ctx context.Context, userID, courseID, lessonID string) (*models.CourseProgress, error)
}

// TutorService is the AI investment tutor.
type TutorService interface {
	// Chat sends the user's message, persists both turns, and returns the
	// tutor's reply.
	Chat(ctx context.Context, userID, message string) (*models.ChatMessage, error)

	// History returns the user's recent conversation, oldest first.
	History(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
}
