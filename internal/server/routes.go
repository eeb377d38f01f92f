package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/mkellaway/papertrade/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/validate", s.handleAuthValidate)

	// Users
	mux.HandleFunc("/api/users/me", s.handleUserMe)

	// Portfolio
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/activity", s.handlePortfolioActivity)

	// Stock trades
	mux.HandleFunc("/api/trades", s.handleTrades)
	mux.HandleFunc("/api/trades/buy", s.handleTradeBuy)
	mux.HandleFunc("/api/trades/sell", s.handleTradeSell)

	// Mutual funds
	mux.HandleFunc("/api/funds/holdings", s.handleFundHoldings)
	mux.HandleFunc("/api/funds/", s.routeFunds)
	mux.HandleFunc("/api/funds", s.handleFundList)

	// Market data
	mux.HandleFunc("/api/market/quotes", s.handleMarketQuotes)
	mux.HandleFunc("/api/market/quote/", s.handleMarketQuote)
	mux.HandleFunc("/api/market/history/", s.handleMarketHistory)
	mux.HandleFunc("/api/market/chart/", s.handleMarketChart)

	// Learning
	mux.HandleFunc("/api/courses/", s.routeCourses)
	mux.HandleFunc("/api/courses", s.handleCourseList)
	mux.HandleFunc("/api/tutor/chat", s.handleTutorChat)
	mux.HandleFunc("/api/tutor/history", s.handleTutorHistory)
}

// routeFunds dispatches /api/funds/{id}/* to the appropriate handler.
func (s *Server) routeFunds(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/funds/")
	if path == "" {
		s.handleFundList(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	fundID := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleFundGet(w, r, fundID)
	case "preview-buy":
		s.handleFundPreviewBuy(w, r, fundID)
	case "preview-redeem":
		s.handleFundPreviewRedeem(w, r, fundID)
	case "buy":
		s.handleFundBuy(w, r, fundID)
	case "redeem":
		s.handleFundRedeem(w, r, fundID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeCourses dispatches /api/courses/{id}/* to the appropriate handler.
func (s *Server) routeCourses(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/courses/")
	if path == "" {
		s.handleCourseList(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	courseID := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleCourseGet(w, r, courseID)
	case "progress":
		// GET reads progress, POST marks a lesson complete
		if r.Method == http.MethodPost {
			s.handleCourseComplete(w, r, courseID)
			return
		}
		s.handleCourseProgress(w, r, courseID)
	case "complete":
		s.handleCourseComplete(w, r, courseID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig handles GET /api/config — a masked view of the runtime
// configuration. Secrets never leave the server.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":            cfg.Environment,
		"storage_url":            cfg.Storage.URL,
		"storage_namespace":      cfg.Storage.Namespace,
		"storage_database":       cfg.Storage.Database,
		"logging_level":          cfg.Logging.Level,
		"starting_balance":       cfg.Simulation.StartingBalance,
		"history_days":           cfg.Simulation.HistoryDays,
		"market_feed_configured": s.app.MarketFeedClient != nil,
		"gemini_configured":      s.app.GeminiClient != nil,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
