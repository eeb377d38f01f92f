package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellaway/papertrade/internal/app"
	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/models"
)

type mockFundService struct {
	listFunds     func(ctx context.Context) ([]models.Fund, error)
	getFund       func(ctx context.Context, fundID string) (*models.Fund, error)
	previewBuy    func(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error)
	previewRedeem func(ctx context.Context, userID, fundID string, units float64) (*models.FundRedeemPreview, error)
	buy           func(ctx context.Context, userID, fundID string, order models.FundBuyOrder) (*models.TradeResult, error)
	redeem        func(ctx context.Context, userID, fundID string, units float64) (*models.TradeResult, error)
	holdings      func(ctx context.Context, userID string) ([]*models.Position, error)
}

func (m *mockFundService) ListFunds(ctx context.Context) ([]models.Fund, error) {
	if m.listFunds != nil {
		return m.listFunds(ctx)
	}
	return nil, nil
}

func (m *mockFundService) GetFund(ctx context.Context, fundID string) (*models.Fund, error) {
	if m.getFund != nil {
		return m.getFund(ctx, fundID)
	}
	return &models.Fund{ID: fundID}, nil
}

func (m *mockFundService) PreviewBuy(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error) {
	if m.previewBuy != nil {
		return m.previewBuy(ctx, fundID, order)
	}
	return &models.FundBuyPreview{}, nil
}

func (m *mockFundService) PreviewRedeem(ctx context.Context, userID, fundID string, units float64) (*models.FundRedeemPreview, error) {
	if m.previewRedeem != nil {
		return m.previewRedeem(ctx, userID, fundID, units)
	}
	return &models.FundRedeemPreview{}, nil
}

func (m *mockFundService) Buy(ctx context.Context, userID, fundID string, order models.FundBuyOrder) (*models.TradeResult, error) {
	if m.buy != nil {
		return m.buy(ctx, userID, fundID, order)
	}
	return &models.TradeResult{Success: true}, nil
}

func (m *mockFundService) Redeem(ctx context.Context, userID, fundID string, units float64) (*models.TradeResult, error) {
	if m.redeem != nil {
		return m.redeem(ctx, userID, fundID, units)
	}
	return &models.TradeResult{Success: true}, nil
}

func (m *mockFundService) Holdings(ctx context.Context, userID string) ([]*models.Position, error) {
	if m.holdings != nil {
		return m.holdings(ctx, userID)
	}
	return nil, nil
}

func fundRequest(method, path string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return authedRequest(req, "u-1")
}

func TestRouteFunds_Dispatch(t *testing.T) {
	calls := map[string]int{}
	svc := &mockFundService{
		getFund: func(ctx context.Context, fundID string) (*models.Fund, error) {
			calls["get:"+fundID]++
			return &models.Fund{ID: fundID}, nil
		},
		previewBuy: func(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error) {
			calls["preview-buy:"+fundID]++
			return &models.FundBuyPreview{}, nil
		},
		redeem: func(ctx context.Context, userID, fundID string, units float64) (*models.TradeResult, error) {
			calls["redeem:"+fundID]++
			return &models.TradeResult{Success: true}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.routeFunds, fundRequest(http.MethodGet, "/api/funds/balanced-growth", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/preview-buy", map[string]float64{"amount": 1000}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/redeem", map[string]float64{"units": 50}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv.routeFunds, fundRequest(http.MethodGet, "/api/funds/balanced-growth/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1, calls["get:balanced-growth"])
	assert.Equal(t, 1, calls["preview-buy:balanced-growth"])
	assert.Equal(t, 1, calls["redeem:balanced-growth"])
}

func TestHandleFundList(t *testing.T) {
	svc := &mockFundService{
		listFunds: func(ctx context.Context) ([]models.Fund, error) {
			return []models.Fund{
				{ID: "balanced-growth", Name: "Balanced Growth Fund", NAV: 5.00},
				{ID: "money-market", Name: "Money Market Reserve Fund", NAV: 1.00},
			}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.handleFundList, fundRequest(http.MethodGet, "/api/funds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Funds []models.Fund `json:"funds"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "balanced-growth", resp.Funds[0].ID)
}

func TestHandleFundGet_NotFound(t *testing.T) {
	svc := &mockFundService{
		getFund: func(ctx context.Context, fundID string) (*models.Fund, error) {
			return nil, fmt.Errorf("fund %s: %w", fundID, common.ErrNotFound)
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.routeFunds, fundRequest(http.MethodGet, "/api/funds/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFundPreviewBuy(t *testing.T) {
	svc := &mockFundService{
		previewBuy: func(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error) {
			require.Equal(t, "balanced-growth", fundID)
			require.Equal(t, 1000.0, order.Amount)
			return &models.FundBuyPreview{
				FundID:    fundID,
				Amount:    1000,
				Units:     200,
				EntryFee:  15,
				TotalCost: 1015,
			}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/preview-buy", map[string]float64{"amount": 1000}))
	require.Equal(t, http.StatusOK, rec.Code)

	var preview models.FundBuyPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, 200.0, preview.Units)
	assert.Equal(t, 15.0, preview.EntryFee)
	assert.Equal(t, 1015.0, preview.TotalCost)
}

func TestHandleFundPreviewBuy_ByUnits(t *testing.T) {
	svc := &mockFundService{
		previewBuy: func(ctx context.Context, fundID string, order models.FundBuyOrder) (*models.FundBuyPreview, error) {
			require.Equal(t, 200.0, order.Units)
			require.Zero(t, order.Amount)
			return &models.FundBuyPreview{
				FundID:    fundID,
				Amount:    1000,
				Units:     200,
				EntryFee:  15,
				TotalCost: 1015,
			}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/preview-buy", map[string]float64{"units": 200}))
	require.Equal(t, http.StatusOK, rec.Code)

	var preview models.FundBuyPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, 1000.0, preview.Amount)
}

func TestHandleFundPreviewBuy_InvalidOrder(t *testing.T) {
	srv := newTestServer(func(a *app.App) { a.FundService = &mockFundService{} })

	cases := []map[string]float64{
		{"amount": 0},
		{},
		{"amount": 1000, "units": 200},
	}
	for _, body := range cases {
		rec := doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/preview-buy", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}
}

func TestHandleFundPreviewRedeem_CarriesAdvisory(t *testing.T) {
	svc := &mockFundService{
		previewRedeem: func(ctx context.Context, userID, fundID string, units float64) (*models.FundRedeemPreview, error) {
			return &models.FundRedeemPreview{
				FundID:          fundID,
				Units:           100,
				GrossValue:      500,
				ExitFee:         5,
				NetProceeds:     495,
				HoldingAdvisory: "held for 10 of 30 suggested days",
			}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/preview-redeem", map[string]float64{"units": 100}))
	require.Equal(t, http.StatusOK, rec.Code)

	var preview models.FundRedeemPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, 495.0, preview.NetProceeds)
	assert.NotEmpty(t, preview.HoldingAdvisory)
}

func TestHandleFundBuy_BusinessRejectionIs200(t *testing.T) {
	svc := &mockFundService{
		buy: func(ctx context.Context, userID, fundID string, order models.FundBuyOrder) (*models.TradeResult, error) {
			return &models.TradeResult{Success: false, Message: "insufficient cash"}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.routeFunds, fundRequest(http.MethodPost, "/api/funds/balanced-growth/buy", map[string]float64{"amount": 999999}))
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.TradeResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.False(t, result.Success)
}

func TestHandleFundHoldings(t *testing.T) {
	svc := &mockFundService{
		holdings: func(ctx context.Context, userID string) ([]*models.Position, error) {
			return []*models.Position{
				{Kind: models.KindFund, Symbol: "balanced-growth", Quantity: 200, MarketValue: 1000},
			}, nil
		},
	}
	srv := newTestServer(func(a *app.App) { a.FundService = svc })

	rec := doRequest(srv.handleFundHoldings, fundRequest(http.MethodGet, "/api/funds/holdings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Holdings []*models.Position `json:"holdings"`
		Count    int                `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, models.KindFund, resp.Holdings[0].Kind)
}
