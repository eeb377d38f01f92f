package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// Degraded source names reported on a snapshot when an upstream fetch
// fails during assembly.
const (
	SourceStockLedger = "stock_ledger"
	SourceFundLedger  = "fund_ledger"
	SourceMarketData  = "market_data"
	SourceProfile     = "profile"
)

// Service implements PortfolioService
type Service struct {
	storage         interfaces.StorageManager
	market          interfaces.MarketService
	logger          *common.Logger
	startingBalance float64
	now             func() time.Time
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, market interfaces.MarketService, startingBalance float64, logger *common.Logger) *Service {
	return &Service{
		storage:         storage,
		market:          market,
		logger:          logger,
		startingBalance: startingBalance,
		now:             time.Now,
	}
}

var _ interfaces.PortfolioService = (*Service)(nil)

// snapshotInputs holds the four independently fetched source results.
// Each source carries its own error so one failure never masks the
// others.
type snapshotInputs struct {
	stockEntries []models.LedgerEntry
	stockErr     error

	fundEntries []models.LedgerEntry
	fundErr     error

	quotes    []models.StockQuote
	funds     []models.Fund
	marketErr error

	cash    float64
	cashErr error
}

// Snapshot assembles a full point-in-time portfolio view. The four
// upstream sources are fetched concurrently; a failed source degrades
// its slice of the snapshot to an empty or default value and is named
// in Degraded. The snapshot itself only fails when there is no user.
func (s *Service) Snapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}

	in := s.fetchInputs(ctx, userID)

	var degraded []string
	if in.stockErr != nil {
		s.logger.Warn().Err(in.stockErr).Str("user_id", userID).Msg("Stock ledger unavailable, degrading snapshot")
		degraded = append(degraded, SourceStockLedger)
	}
	if in.fundErr != nil {
		s.logger.Warn().Err(in.fundErr).Str("user_id", userID).Msg("Fund ledger unavailable, degrading snapshot")
		degraded = append(degraded, SourceFundLedger)
	}
	if in.marketErr != nil {
		s.logger.Warn().Err(in.marketErr).Str("user_id", userID).Msg("Market data unavailable, degrading snapshot")
		degraded = append(degraded, SourceMarketData)
	}
	if in.cashErr != nil {
		s.logger.Warn().Err(in.cashErr).Str("user_id", userID).Msg("Profile unavailable, using starting balance")
		degraded = append(degraded, SourceProfile)
		in.cash = s.startingBalance
	}

	entries := make([]models.LedgerEntry, 0, len(in.stockEntries)+len(in.fundEntries))
	entries = append(entries, in.stockEntries...)
	entries = append(entries, in.fundEntries...)

	positions, warnings := Aggregate(entries)

	quoteBySymbol := make(map[string]models.StockQuote, len(in.quotes))
	for _, q := range in.quotes {
		quoteBySymbol[q.Symbol] = q
	}
	fundByID := make(map[string]models.Fund, len(in.funds))
	for _, f := range in.funds {
		fundByID[f.ID] = f
	}

	priceFor := func(kind models.InstrumentKind, symbol string) (float64, bool) {
		switch kind {
		case models.KindFund:
			f, ok := fundByID[symbol]
			return f.NAV, ok
		default:
			q, ok := quoteBySymbol[symbol]
			return q.Price, ok
		}
	}
	sectorFor := func(symbol string) string {
		return quoteBySymbol[symbol].Sector
	}
	nameFor := func(kind models.InstrumentKind, symbol string) string {
		if kind == models.KindFund {
			return fundByID[symbol].Name
		}
		return quoteBySymbol[symbol].Name
	}

	snap := Valuate(positions, in.cash, priceFor, sectorFor, nameFor)
	snap.UserID = userID
	snap.GeneratedAt = s.now()
	snap.Warnings = warnings
	snap.Degraded = degraded

	s.logger.Debug().
		Str("user_id", userID).
		Int("positions", len(snap.Positions)).
		Float64("total_equity", snap.TotalEquity).
		Int("degraded_sources", len(degraded)).
		Msg("Snapshot assembled")

	return snap, nil
}

// fetchInputs runs the four source fetches concurrently.
func (s *Service) fetchInputs(ctx context.Context, userID string) *snapshotInputs {
	in := &snapshotInputs{}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		in.stockEntries, in.stockErr = s.storage.LedgerStore().ListByUser(ctx, userID, models.KindStock)
	}()
	go func() {
		defer wg.Done()
		in.fundEntries, in.fundErr = s.storage.LedgerStore().ListByUser(ctx, userID, models.KindFund)
	}()
	go func() {
		defer wg.Done()
		quotes, err := s.market.ListQuotes(ctx)
		if err != nil {
			in.marketErr = err
			return
		}
		funds, err := s.storage.FundStore().ListFunds(ctx)
		if err != nil {
			in.marketErr = err
			return
		}
		in.quotes, in.funds = quotes, funds
	}()
	go func() {
		defer wg.Done()
		in.cash, in.cashErr = s.storage.InternalStore().EnsureCashBalance(ctx, userID, s.startingBalance)
	}()

	wg.Wait()
	return in
}

// Dashboard derives the condensed dashboard projection from a full
// snapshot.
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	top := snap.Allocation
	if len(top) > 3 {
		top = top[:3]
	}

	return &models.DashboardSummary{
		TotalEquity:    snap.TotalEquity,
		CashBalance:    snap.CashBalance,
		InvestedValue:  snap.StockValue + snap.FundValue,
		UnrealizedGain: snap.TotalUnrealizedGain,
		GainPercent:    snap.TotalGainPercent,
		PositionCount:  snap.Metrics.PositionCount,
		WinRate:        snap.Metrics.WinRate,
		Risk:           snap.Risk,
		TopAllocations: top,
	}, nil
}

// Activity returns the user's most recent ledger entries, newest first.
func (s *Service) Activity(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}
	if limit <= 0 {
		limit = 20
	}
	return s.storage.LedgerStore().ListRecent(ctx, userID, limit)
}
