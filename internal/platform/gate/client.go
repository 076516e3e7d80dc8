// Package gate is a read-only client for the Gate spot REST API.
package gate

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

// DefaultBaseURL is the public Gate API root.
const DefaultBaseURL = "https://api.gateio.ws"

// Name is the display label used in direction labels.
const Name = "Gate"

// symbolDelimiter separates base and quote in Gate currency pairs ("BTC_USDT").
const symbolDelimiter = "_"

// Client fetches Gate spot tickers. Gate's ticker feed covers every listed
// pair, so it serves as both the listing and the price source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ spread.Venue = (*Client)(nil)

// NewClient creates a Gate client. An empty baseURL selects DefaultBaseURL.
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

// Name returns "Gate".
func (c *Client) Name() string { return Name }

// Listings derives the listing from the ticker feed's currency pairs.
func (c *Client) Listings(ctx context.Context) ([]spread.Listing, error) {
	raw, err := c.spotTickers(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]spread.Listing, 0, len(raw))
	for _, t := range raw {
		listings = append(listings, spread.Listing{
			Symbol:    t.CurrencyPair,
			Delimiter: symbolDelimiter,
		})
	}
	return listings, nil
}

// Tickers returns the last trade price of every pair.
func (c *Client) Tickers(ctx context.Context) ([]spread.Ticker, error) {
	raw, err := c.spotTickers(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]spread.Ticker, 0, len(raw))
	for _, t := range raw {
		tickers = append(tickers, spread.Ticker{Symbol: t.CurrencyPair, Price: t.Last})
	}
	return tickers, nil
}

func (c *Client) spotTickers(ctx context.Context) ([]SpotTicker, error) {
	body, err := c.doGet(ctx, "/api/v4/spot/tickers")
	if err != nil {
		return nil, fmt.Errorf("gate: spot tickers: %w", err)
	}

	var out []SpotTicker
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("gate: decode spot tickers: %w: %w", domain.ErrTransport, err)
	}
	return out, nil
}

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

// checkHTTPStatus maps non-2xx status codes to domain errors. Gate reports
// failures as {"label": ..., "message": ...}; the body is kept verbatim.
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
