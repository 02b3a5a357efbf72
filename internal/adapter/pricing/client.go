// Package pricing fetches market quotes over HTTP and serves them to the
// ledger through the domain.PriceLookup interface. Quotes are cached with a
// TTL so a burst of revaluations does not hammer the upstream API.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

const defaultTTL = 5 * time.Minute

// Client fetches quotes from a Yahoo-style quote API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	ttl     time.Duration

	mu    sync.Mutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	quote     domain.Quote
	fetchedAt time.Time
}

// Option configures a Client
type Option func(*Client)

// WithTTL overrides the default cache TTL
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a new quote client against baseURL
func NewClient(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:   log.With().Str("client", "pricing").Logger(),
		ttl:   defaultTTL,
		cache: make(map[string]cachedQuote),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quoteResponse represents the response from the quote API
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			RegularMarketTime  int64   `json:"regularMarketTime"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteResponse"`
}

// Price returns the current quote for symbol, from cache when fresh.
// Upstream failures of any shape come back as ErrPriceUnavailable so
// callers can treat "no price" uniformly.
func (c *Client) Price(ctx context.Context, symbol string) (domain.Quote, error) {
	if quote, ok := c.cached(symbol); ok {
		return quote, nil
	}

	quote, err := c.fetch(ctx, symbol)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch quote")
		return domain.Quote{}, fmt.Errorf("%w: %s: %v", domain.ErrPriceUnavailable, symbol, err)
	}

	c.mu.Lock()
	c.cache[symbol] = cachedQuote{quote: quote, fetchedAt: time.Now()}
	c.mu.Unlock()

	return quote, nil
}

func (c *Client) cached(symbol string) (domain.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[symbol]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return domain.Quote{}, false
	}
	return entry.quote, true
}

func (c *Client) fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,regularMarketPrice,regularMarketTime")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Quote{}, fmt.Errorf("quote API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var result quoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.Quote{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return domain.Quote{}, fmt.Errorf("quote API error: %v", result.QuoteResponse.Error)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return domain.Quote{}, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}

	q := result.QuoteResponse.Result[0]
	if q.RegularMarketPrice <= 0 {
		return domain.Quote{}, fmt.Errorf("invalid price %v for symbol %s", q.RegularMarketPrice, symbol)
	}

	asOf := time.Now()
	if q.RegularMarketTime > 0 {
		asOf = time.Unix(q.RegularMarketTime, 0)
	}

	return domain.Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(q.RegularMarketPrice),
		AsOf:   asOf,
	}, nil
}
