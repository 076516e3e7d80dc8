// Package mexc is a read-only client for the MEXC spot REST API.
package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alanyoungcy/spreadbot/internal/domain"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

// DefaultBaseURL is the public MEXC spot API root.
const DefaultBaseURL = "https://api.mexc.com"

// Name is the display label used in direction labels.
const Name = "MEXC"

// Client fetches MEXC listings and last-trade prices.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ spread.Venue = (*Client)(nil)

// NewClient creates a MEXC client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns "MEXC".
func (c *Client) Name() string { return Name }

// Listings returns every symbol from exchangeInfo. MEXC reports base and
// quote assets separately, so no symbol splitting is needed.
func (c *Client) Listings(ctx context.Context) ([]spread.Listing, error) {
	body, err := c.doGet(ctx, "/api/v3/exchangeInfo")
	if err != nil {
		return nil, fmt.Errorf("mexc: exchange info: %w", err)
	}

	var info ExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("mexc: decode exchange info: %w: %w", domain.ErrTransport, err)
	}

	listings := make([]spread.Listing, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		listings = append(listings, spread.Listing{
			Symbol: s.Symbol,
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
		})
	}
	return listings, nil
}

// Tickers returns the latest price of every symbol.
func (c *Client) Tickers(ctx context.Context) ([]spread.Ticker, error) {
	body, err := c.doGet(ctx, "/api/v3/ticker/price")
	if err != nil {
		return nil, fmt.Errorf("mexc: ticker price: %w", err)
	}

	var prices []TickerPrice
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("mexc: decode ticker price: %w: %w", domain.ErrTransport, err)
	}

	tickers := make([]spread.Ticker, 0, len(prices))
	for _, p := range prices {
		tickers = append(tickers, spread.Ticker{Symbol: p.Symbol, Price: p.Price})
	}
	return tickers, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
