package server

import (
	"net/http"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/models"
)

// handleFundList handles GET /api/funds — the fund catalog.
func (s *Server) handleFundList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	funds, err := s.app.FundService.ListFunds(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"funds": funds,
		"count": len(funds),
	})
}

// handleFundGet handles GET /api/funds/{id}.
func (s *Server) handleFundGet(w http.ResponseWriter, r *http.Request, fundID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	fund, err := s.app.FundService.GetFund(r.Context(), fundID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, fund)
}

// decodeFundBuyOrder reads a buy sizing from the body: amount or units,
// exactly one. Writes a 400 and returns false on bad input.
func decodeFundBuyOrder(w http.ResponseWriter, r *http.Request) (models.FundBuyOrder, bool) {
	var order models.FundBuyOrder
	if !DecodeJSON(w, r, &order) {
		return order, false
	}
	if err := order.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return order, false
	}
	return order, true
}

// handleFundPreviewBuy handles POST /api/funds/{id}/preview-buy.
// Pure calculation: nothing is committed.
func (s *Server) handleFundPreviewBuy(w http.ResponseWriter, r *http.Request, fundID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	order, ok := decodeFundBuyOrder(w, r)
	if !ok {
		return
	}

	preview, err := s.app.FundService.PreviewBuy(r.Context(), fundID, order)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, preview)
}

// handleFundPreviewRedeem handles POST /api/funds/{id}/preview-redeem.
func (s *Server) handleFundPreviewRedeem(w http.ResponseWriter, r *http.Request, fundID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Units float64 `json:"units"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Units <= 0 {
		WriteError(w, http.StatusBadRequest, "units must be positive")
		return
	}

	preview, err := s.app.FundService.PreviewRedeem(r.Context(), common.ResolveUserID(r.Context()), fundID, req.Units)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, preview)
}

// handleFundBuy handles POST /api/funds/{id}/buy — commit a subscription.
func (s *Server) handleFundBuy(w http.ResponseWriter, r *http.Request, fundID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	order, ok := decodeFundBuyOrder(w, r)
	if !ok {
		return
	}

	result, err := s.app.FundService.Buy(r.Context(), common.ResolveUserID(r.Context()), fundID, order)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleFundRedeem handles POST /api/funds/{id}/redeem — commit a redemption.
func (s *Server) handleFundRedeem(w http.ResponseWriter, r *http.Request, fundID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Units float64 `json:"units"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Units <= 0 {
		WriteError(w, http.StatusBadRequest, "units must be positive")
		return
	}

	result, err := s.app.FundService.Redeem(r.Context(), common.ResolveUserID(r.Context()), fundID, req.Units)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleFundHoldings handles GET /api/funds/holdings — current fund
// positions valued at NAV.
func (s *Server) handleFundHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	holdings, err := s.app.FundService.Holdings(r.Context(), common.ResolveUserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings": holdings,
		"count":    len(holdings),
	})
}
