package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mkellaway/papertrade/internal/models"
)

// Seed populates the stock, fund, and course catalogs when they are
// empty. Existing catalogs are left untouched, so restarting the server
// never resets prices or rewrites course content.
func (a *App) Seed(ctx context.Context) error {
	if err := a.seedQuotes(ctx); err != nil {
		return fmt.Errorf("seed quotes: %w", err)
	}
	if err := a.seedFunds(ctx); err != nil {
		return fmt.Errorf("seed funds: %w", err)
	}
	if err := a.seedCourses(ctx); err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}
	return nil
}

func (a *App) seedQuotes(ctx context.Context) error {
	store := a.Storage.MarketStore()

	existing, err := store.ListQuotes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	catalog := []models.StockQuote{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Price: 232.50},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", Price: 428.10},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", Price: 178.35},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary", Price: 205.70},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financials", Price: 248.90},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", Price: 162.40},
		{Symbol: "PG", Name: "Procter & Gamble Co.", Sector: "Consumer Staples", Price: 168.15},
		{Symbol: "XOM", Name: "Exxon Mobil Corporation", Sector: "Energy", Price: 118.25},
		{Symbol: "KO", Name: "The Coca-Cola Company", Sector: "Consumer Staples", Price: 71.80},
		{Symbol: "DIS", Name: "The Walt Disney Company", Sector: "Communication Services", Price: 112.60},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", Price: 142.30},
		{Symbol: "V", Name: "Visa Inc.", Sector: "Financials", Price: 312.45},
	}

	for i := range catalog {
		catalog[i].UpdatedAt = now
		catalog[i].Source = "catalog"
		if err := store.SaveQuote(ctx, &catalog[i]); err != nil {
			return err
		}
	}

	a.Logger.Info().Int("count", len(catalog)).Msg("Stock catalog seeded")
	return nil
}

func (a *App) seedFunds(ctx context.Context) error {
	store := a.Storage.FundStore()

	existing, err := store.ListFunds(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	catalog := []models.Fund{
		{
			ID:             "balanced-growth",
			Name:           "Balanced Growth Fund",
			Category:       "Balanced",
			NAV:            5.00,
			EntryFeeRate:   0.015,
			ExitFeeRate:    0.01,
			MinHoldingDays: 30,
		},
		{
			ID:             "global-equity",
			Name:           "Global Equity Index Fund",
			Category:       "Equity",
			NAV:            12.42,
			EntryFeeRate:   0.01,
			ExitFeeRate:    0.005,
			MinHoldingDays: 90,
		},
		{
			ID:             "stable-income",
			Name:           "Stable Income Bond Fund",
			Category:       "Fixed Income",
			NAV:            10.18,
			EntryFeeRate:   0.005,
			ExitFeeRate:    0.0025,
			MinHoldingDays: 7,
		},
		{
			ID:             "money-market",
			Name:           "Money Market Reserve Fund",
			Category:       "Money Market",
			NAV:            1.00,
			EntryFeeRate:   0,
			ExitFeeRate:    0,
			MinHoldingDays: 0,
		},
	}

	for i := range catalog {
		catalog[i].UpdatedAt = now
		if err := store.SaveFund(ctx, &catalog[i]); err != nil {
			return err
		}
	}

	a.Logger.Info().Int("count", len(catalog)).Msg("Fund catalog seeded")
	return nil
}

func (a *App) seedCourses(ctx context.Context) error {
	store := a.Storage.LearnStore()

	existing, err := store.ListCourses(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	catalog := []models.Course{
		{
			ID:      "investing-basics",
			Title:   "Investing Basics",
			Summary: "What stocks, funds, and cash are, and why diversification matters.",
			Level:   "beginner",
			Lessons: []models.Lesson{
				{ID: "what-is-a-stock", Title: "What is a stock?", Body: "A stock is a share of ownership in a company. When the company does well, the value of your share can grow; when it struggles, the value can fall."},
				{ID: "what-is-a-fund", Title: "What is a mutual fund?", Body: "A mutual fund pools money from many investors and spreads it across many holdings. You buy units at the fund's net asset value, and fees apply when entering or leaving."},
				{ID: "risk-and-return", Title: "Risk and return", Body: "Higher potential returns come with higher potential losses. Your mix of stocks, funds, and cash determines how bumpy the ride is."},
				{ID: "diversification", Title: "Diversification", Body: "Concentrating everything in one holding magnifies both gains and losses. Spreading across sectors and asset types smooths the swings."},
			},
		},
		{
			ID:      "reading-your-portfolio",
			Title:   "Reading Your Portfolio",
			Summary: "How cost basis, unrealized gains, and allocation are calculated.",
			Level:   "beginner",
			Lessons: []models.Lesson{
				{ID: "average-cost", Title: "Average cost", Body: "Every buy adds to your total cost. Your average cost is total cost divided by shares held, and it only changes when you buy, not when prices move."},
				{ID: "unrealized-gains", Title: "Unrealized gains", Body: "An unrealized gain is the difference between what your holdings are worth today and what you paid. It becomes real only when you sell."},
				{ID: "allocation", Title: "Allocation", Body: "Allocation shows where your money sits: stock sectors, mutual funds, and cash. The percentages always add up to your total equity."},
			},
		},
		{
			ID:      "fund-fees",
			Title:   "Understanding Fund Fees",
			Summary: "Entry fees, exit fees, and minimum holding periods.",
			Level:   "intermediate",
			Lessons: []models.Lesson{
				{ID: "entry-fees", Title: "Entry fees", Body: "An entry fee is charged on top of the amount you invest. Investing 1000 at a 1.5% entry fee costs 1015 in cash while only 1000 buys units."},
				{ID: "exit-fees", Title: "Exit fees", Body: "An exit fee is deducted from the gross value when you redeem. It reduces the cash you receive, not the units you sell."},
				{ID: "holding-periods", Title: "Holding periods", Body: "Many funds suggest a minimum holding period. Redeeming early is allowed here, but in real funds it can trigger penalty fees."},
			},
		},
	}

	for i := range catalog {
		if err := store.SaveCourse(ctx, &catalog[i]); err != nil {
			return err
		}
	}

	a.Logger.Info().Int("count", len(catalog)).Msg("Course catalog seeded")
	return nil
}
