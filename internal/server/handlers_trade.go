package server

import (
	"net/http"
	"strings"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/models"
)

// handleTrades handles the /api/trades collection: GET returns the
// user's stock ledger, POST commits a buy or sell by action.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTradeList(w, r)
	case http.MethodPost:
		s.handleTradeCommit(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTradeList(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := s.app.Storage.LedgerStore().ListByUser(r.Context(), userID, models.KindStock)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trades": entries,
		"count":  len(entries),
	})
}

func (s *Server) handleTradeCommit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		tradeRequest
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if !req.tradeRequest.validate(w) {
		return
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)

	var result *models.TradeResult
	var err error
	switch req.Action {
	case "buy":
		result, err = s.app.TradeService.BuyStock(ctx, userID, req.Symbol, req.Quantity)
	case "sell":
		result, err = s.app.TradeService.SellStock(ctx, userID, req.Symbol, req.Quantity)
	default:
		WriteError(w, http.StatusBadRequest, "action must be 'buy' or 'sell'")
		return
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type tradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

func (req *tradeRequest) validate(w http.ResponseWriter) bool {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return false
	}
	if req.Quantity <= 0 {
		WriteError(w, http.StatusBadRequest, "quantity must be positive")
		return false
	}
	return true
}

// handleTradeBuy handles POST /api/trades/buy. Business rejections
// (unknown symbol, insufficient cash) come back as a 200 with
// success=false rather than an HTTP error.
func (s *Server) handleTradeBuy(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req tradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if !req.validate(w) {
		return
	}

	result, err := s.app.TradeService.BuyStock(r.Context(), common.ResolveUserID(r.Context()), req.Symbol, req.Quantity)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleTradeSell handles POST /api/trades/sell.
func (s *Server) handleTradeSell(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req tradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if !req.validate(w) {
		return
	}

	result, err := s.app.TradeService.SellStock(r.Context(), common.ResolveUserID(r.Context()), req.Symbol, req.Quantity)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
