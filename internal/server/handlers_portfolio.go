package server

import (
	"net/http"
	"strconv"

	"github.com/mkellaway/papertrade/internal/common"
)

// handleDashboard handles GET /api/dashboard — the condensed home view.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.PortfolioService.Dashboard(r.Context(), common.ResolveUserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// handlePortfolio handles GET /api/portfolio — the full snapshot with
// positions, allocation, risk, and any degraded sources.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), common.ResolveUserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioActivity handles GET /api/portfolio/activity?limit=N.
func (s *Server) handlePortfolioActivity(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	entries, err := s.app.PortfolioService.Activity(r.Context(), common.ResolveUserID(r.Context()), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
