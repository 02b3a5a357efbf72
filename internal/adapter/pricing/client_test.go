package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

func quoteServer(t *testing.T, hits *atomic.Int64, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPriceFetchesQuote(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits,
		`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":187.5,"regularMarketTime":1700000000}],"error":null}}`,
		http.StatusOK)

	client := NewClient(server.URL, zerolog.Nop())
	quote, err := client.Price(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "187.5", quote.Price.String())
	assert.Equal(t, time.Unix(1700000000, 0).Unix(), quote.AsOf.Unix())
}

func TestPriceCachesWithinTTL(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits,
		`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":187.5}],"error":null}}`,
		http.StatusOK)

	client := NewClient(server.URL, zerolog.Nop(), WithTTL(time.Hour))

	_, err := client.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = client.Price(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load())
}

func TestPriceExpiredCacheRefetches(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits,
		`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":187.5}],"error":null}}`,
		http.StatusOK)

	client := NewClient(server.URL, zerolog.Nop(), WithTTL(-time.Second))

	_, err := client.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = client.Price(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, int64(2), hits.Load())
}

func TestPriceUpstreamFailure(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits, `upstream down`, http.StatusInternalServerError)

	client := NewClient(server.URL, zerolog.Nop())
	_, err := client.Price(context.Background(), "AAPL")

	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestPriceUnknownSymbol(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits,
		`{"quoteResponse":{"result":[],"error":null}}`,
		http.StatusOK)

	client := NewClient(server.URL, zerolog.Nop())
	_, err := client.Price(context.Background(), "NOPE")

	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestPriceRejectsNonPositivePrice(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits,
		`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":0}],"error":null}}`,
		http.StatusOK)

	client := NewClient(server.URL, zerolog.Nop())
	_, err := client.Price(context.Background(), "AAPL")

	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}
