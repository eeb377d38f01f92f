package market

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/mkellaway/papertrade/internal/models"
)

// Synthetic series tuning. Daily drift and volatility are chosen to
// look like a plausible equity chart over a few months.
const (
	dailyDrift      = 0.0004
	dailyVolatility = 0.018
	maxHistoryDays  = 365
)

// History generates a synthetic OHLC series anchored at the symbol's
// current quote. The walk is seeded from the symbol so repeated calls
// draw the same chart. Illustrative only; valuation never reads it.
func (s *Service) History(ctx context.Context, symbol string, days int) (*models.PriceHistory, error) {
	if days <= 0 {
		days = 90
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	quote, err := s.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 {
		return nil, fmt.Errorf("no anchor price for %s", symbol)
	}

	candles := generateWalk(symbol, quote.Price, days, s.now())
	return &models.PriceHistory{
		Symbol:    symbol,
		Synthetic: true,
		Candles:   candles,
	}, nil
}

// generateWalk builds the series backwards from the anchor price so the
// final close equals today's quote exactly.
func generateWalk(symbol string, anchorPrice float64, days int, now time.Time) []models.Candle {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	closes := make([]float64, days)
	closes[days-1] = anchorPrice
	for i := days - 2; i >= 0; i-- {
		step := dailyDrift + dailyVolatility*rng.NormFloat64()
		closes[i] = closes[i+1] / (1 + step)
		if closes[i] < 0.01 {
			closes[i] = 0.01
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, days)
	for i := 0; i < days; i++ {
		open := closes[i]
		if i > 0 {
			open = closes[i-1]
		}
		c := closes[i]
		high := math.Max(open, c) * (1 + math.Abs(rng.NormFloat64())*0.004)
		low := math.Min(open, c) * (1 - math.Abs(rng.NormFloat64())*0.004)
		candles[i] = models.Candle{
			Date:   today.AddDate(0, 0, -(days - 1 - i)),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(c),
			Volume: 100000 + rng.Int63n(900000),
		}
	}
	return candles
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
