// Package marketfeed provides a client for the live market data feed
package marketfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the MarketFeedClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.MarketFeedClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market feed client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a feed API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market feed error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Market feed request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse is the feed's real-time quote payload. Numeric fields
// arrive as strings for suspended tickers, hence flexFloat64.
type quoteResponse struct {
	Code          string      `json:"code"`
	Close         flexFloat64 `json:"close"`
	Change        flexFloat64 `json:"change"`
	ChangePercent flexFloat64 `json:"change_p"`
	Timestamp     int64       `json:"timestamp"`
}

func (r *quoteResponse) toQuote() models.StockQuote {
	q := models.StockQuote{
		Symbol:         stripExchange(r.Code),
		Price:          float64(r.Close),
		DailyChange:    float64(r.Change),
		DailyChangePct: float64(r.ChangePercent),
		Source:         "live",
	}
	if r.Timestamp > 0 {
		q.UpdatedAt = time.Unix(r.Timestamp, 0).UTC()
	}
	return q
}

// stripExchange trims the exchange suffix the feed appends ("AAPL.US").
func stripExchange(code string) string {
	if i := strings.Index(code, "."); i > 0 {
		return code[:i]
	}
	return code
}

// GetQuote retrieves the current quote for one symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	path := fmt.Sprintf("/real-time/%s", url.PathEscape(symbol))

	var resp quoteResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	quote := resp.toQuote()
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if quote.Price <= 0 {
		return nil, fmt.Errorf("feed returned no price for %s", symbol)
	}
	return &quote, nil
}

// GetQuotes retrieves current quotes for a set of symbols in one
// request. Symbols the feed does not know are omitted, not errors.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) ([]models.StockQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	// The feed batches through the first symbol's endpoint with the rest
	// passed as a comma-separated parameter.
	path := fmt.Sprintf("/real-time/%s", url.PathEscape(symbols[0]))
	params := url.Values{}
	if len(symbols) > 1 {
		params.Set("s", strings.Join(symbols[1:], ","))
	}

	var raw json.RawMessage
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}

	// Single-symbol requests return an object, batches return an array.
	var responses []quoteResponse
	if err := json.Unmarshal(raw, &responses); err != nil {
		var single quoteResponse
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("failed to decode quotes: %w", err)
		}
		responses = []quoteResponse{single}
	}

	quotes := make([]models.StockQuote, 0, len(responses))
	for _, r := range responses {
		q := r.toQuote()
		if q.Symbol != "" && q.Price > 0 {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
