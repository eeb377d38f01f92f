package server

import (
	"net/http"
	"strconv"
	"strings"
)

// handleMarketQuotes handles GET /api/market/quotes — the traded universe.
func (s *Server) handleMarketQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	quotes, err := s.app.MarketService.ListQuotes(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

// handleMarketQuote handles GET /api/market/quote/{symbol}.
func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/market/quote/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	quote, err := s.app.MarketService.GetQuote(r.Context(), symbol)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// daysParam parses the optional ?days query parameter, 0 meaning the
// service default.
func daysParam(r *http.Request) int {
	if d := r.URL.Query().Get("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

// handleMarketHistory handles GET /api/market/history/{symbol}?days=N.
// The series is synthetic, anchored at the current quote.
func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/market/history/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	history, err := s.app.MarketService.History(r.Context(), symbol, daysParam(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, history)
}

// handleMarketChart handles GET /api/market/chart/{symbol}?days=N and
// responds with a PNG.
func (s *Server) handleMarketChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/market/chart/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	png, err := s.app.MarketService.Chart(r.Context(), symbol, daysParam(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
