// Package market serves stock quotes with live-feed-primary and
// database-mirror fallback
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// feedRetries is the number of live feed attempts before falling back
// to the mirror.
const feedRetries = 3

// retryBaseDelay grows linearly per attempt.
var retryBaseDelay = 200 * time.Millisecond

// Service implements MarketService. The live feed is primary; every
// successful live quote refreshes the database mirror so the mirror
// stays serviceable when the feed is down.
type Service struct {
	feed    interfaces.MarketFeedClient
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new market service.
// feed may be nil when no API key is configured — the mirror then
// serves everything.
func NewService(feed interfaces.MarketFeedClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		feed:    feed,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

var _ interfaces.MarketService = (*Service)(nil)

// GetQuote retrieves the current quote for one symbol: live feed first
// with bounded retries, then the database mirror.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	if s.feed != nil {
		quote, err := s.fetchLive(ctx, symbol)
		if err == nil {
			s.mirror(ctx, quote)
			return quote, nil
		}
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Live feed failed, trying mirror")
	}

	quote, err := s.storage.MarketStore().GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}
	quote.Source = "mirror"
	return quote, nil
}

// ListQuotes returns current quotes for the whole traded universe. The
// mirror defines the universe; live prices overlay it when available.
func (s *Service) ListQuotes(ctx context.Context) ([]models.StockQuote, error) {
	mirrored, err := s.storage.MarketStore().ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	for i := range mirrored {
		mirrored[i].Source = "mirror"
	}

	if s.feed == nil || len(mirrored) == 0 {
		return mirrored, nil
	}

	symbols := make([]string, len(mirrored))
	for i, q := range mirrored {
		symbols[i] = q.Symbol
	}

	live, err := s.feed.GetQuotes(ctx, symbols)
	if err != nil {
		s.logger.Warn().Err(err).Int("symbols", len(symbols)).Msg("Live feed failed, serving mirror")
		return mirrored, nil
	}

	liveBySymbol := make(map[string]models.StockQuote, len(live))
	for _, q := range live {
		q.Source = "live"
		liveBySymbol[q.Symbol] = q
	}

	for i, q := range mirrored {
		if lq, ok := liveBySymbol[q.Symbol]; ok {
			// Mirror keeps catalog fields the feed does not carry
			if lq.Name == "" {
				lq.Name = q.Name
			}
			if lq.Sector == "" {
				lq.Sector = q.Sector
			}
			mirrored[i] = lq
			s.mirror(ctx, &lq)
		}
	}
	return mirrored, nil
}

// fetchLive calls the feed with bounded retries and linear backoff.
func (s *Service) fetchLive(ctx context.Context, symbol string) (*models.StockQuote, error) {
	var lastErr error
	for attempt := 1; attempt <= feedRetries; attempt++ {
		quote, err := s.feed.GetQuote(ctx, symbol)
		if err == nil {
			quote.Source = "live"
			return quote, nil
		}
		lastErr = err

		if attempt < feedRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}
	}
	return nil, fmt.Errorf("live feed after %d attempts: %w", feedRetries, lastErr)
}

// mirror writes a live quote back to the database mirror. Best effort;
// a mirror write failure never fails the read path.
func (s *Service) mirror(ctx context.Context, quote *models.StockQuote) {
	saved := *quote
	saved.UpdatedAt = s.now()
	if err := s.storage.MarketStore().SaveQuote(ctx, &saved); err != nil {
		s.logger.Warn().Err(err).Str("symbol", quote.Symbol).Msg("Mirror update failed")
	}
}
