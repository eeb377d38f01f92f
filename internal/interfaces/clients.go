// Package interfaces defines service contracts for Papertrade
package interfaces

import (
	"context"

	"github.com/mkellaway/papertrade/internal/models"
)

// MarketFeedClient provides access to the live market data feed.
type MarketFeedClient interface {
	// GetQuote retrieves the current quote for one symbol.
	GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error)

	// GetQuotes retrieves current quotes for a set of symbols. Symbols the
	// feed does not know are omitted from the result, not errors.
	GetQuotes(ctx context.Context, symbols []string) ([]models.StockQuote, error)
}

// AIClient generates tutor responses from a language model.
type AIClient interface {
	// GenerateText produces a completion for the prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
}
