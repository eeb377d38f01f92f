// Package app wires configuration, storage, clients, and services into
// the shared application core used by cmd/papertrade-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkellaway/papertrade/internal/clients/gemini"
	"github.com/mkellaway/papertrade/internal/clients/marketfeed"
	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/services/course"
	"github.com/mkellaway/papertrade/internal/services/fund"
	"github.com/mkellaway/papertrade/internal/services/market"
	"github.com/mkellaway/papertrade/internal/services/portfolio"
	"github.com/mkellaway/papertrade/internal/services/trade"
	"github.com/mkellaway/papertrade/internal/services/tutor"
	surrealstorage "github.com/mkellaway/papertrade/internal/storage/surrealdb"
)

// App holds all initialized services, clients, and storage. It is the
// shared core behind the HTTP server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketFeedClient interfaces.MarketFeedClient
	GeminiClient     interfaces.AIClient
	PortfolioService interfaces.PortfolioService
	TradeService     interfaces.TradeService
	FundService      interfaces.FundService
	MarketService    interfaces.MarketService
	CourseService    interfaces.CourseService
	TutorService     interfaces.TutorService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, PAPERTRADE_CONFIG, then
	// binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("PAPERTRADE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "papertrade.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/papertrade.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := surrealstorage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	// Resolve API keys. Both clients are optional: the market service
	// falls back to the database mirror and the tutor answers with a
	// canned offline message.
	var feedClient interfaces.MarketFeedClient
	feedKey, err := common.ResolveAPIKey("market_feed_api_key", config.Clients.MarketFeed.APIKey)
	if err != nil {
		logger.Warn().Msg("Market feed API key not configured - quotes will come from the database mirror")
	} else {
		opts := []marketfeed.ClientOption{
			marketfeed.WithLogger(logger),
			marketfeed.WithRateLimit(config.Clients.MarketFeed.RateLimit),
			marketfeed.WithTimeout(config.Clients.MarketFeed.GetTimeout()),
		}
		if config.Clients.MarketFeed.BaseURL != "" {
			opts = append(opts, marketfeed.WithBaseURL(config.Clients.MarketFeed.BaseURL))
		}
		feedClient = marketfeed.NewClient(feedKey, opts...)
	}

	var aiClient interfaces.AIClient
	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - AI tutor will be unavailable")
	} else {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			aiClient = client
		}
	}

	// Initialize services
	marketService := market.NewService(feedClient, storageManager, logger)
	portfolioService := portfolio.NewService(storageManager, marketService, config.Simulation.StartingBalance, logger)
	tradeService := trade.NewService(storageManager, marketService, logger)
	fundService := fund.NewService(storageManager, logger)
	courseService := course.NewService(storageManager, logger)
	tutorService := tutor.NewService(aiClient, storageManager, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketFeedClient: feedClient,
		GeminiClient:     aiClient,
		PortfolioService: portfolioService,
		TradeService:     tradeService,
		FundService:      fundService,
		MarketService:    marketService,
		CourseService:    courseService,
		TutorService:     tutorService,
		StartupTime:      startupStart,
	}

	if err := a.Seed(ctx); err != nil {
		logger.Warn().Err(err).Msg("Catalog seeding incomplete")
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close shuts down storage connections.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
