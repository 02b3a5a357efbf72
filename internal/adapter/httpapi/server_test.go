package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/goals"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/ledger"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/montecarlo"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/portfolio"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/projection"
)

// memState is an in-memory backing store shared by the fake repositories
// and the fake ledger store, so a buy through the API is visible to the
// portfolio endpoints in the same test.
type memState struct {
	mu       sync.Mutex
	wallets  map[uuid.UUID]domain.Wallet
	holdings map[string]domain.Holding
	txs      []domain.Transaction
	goals    map[uuid.UUID]domain.Goal
}

func newMemState() *memState {
	return &memState{
		wallets:  make(map[uuid.UUID]domain.Wallet),
		holdings: make(map[string]domain.Holding),
		goals:    make(map[uuid.UUID]domain.Goal),
	}
}

func holdingKey(userID uuid.UUID, symbol string, assetType domain.AssetType) string {
	return fmt.Sprintf("%s/%s/%s", userID, symbol, assetType)
}

type memLedgerStore struct{ state *memState }

func (s *memLedgerStore) Begin(ctx context.Context) (domain.LedgerTx, error) {
	s.state.mu.Lock()
	return &memLedgerTx{state: s.state}, nil
}

type memLedgerTx struct {
	state *memState
	done  bool
}

func (t *memLedgerTx) Wallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	w, ok := t.state.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("%w: wallet for user %s", domain.ErrNotFound, userID)
	}
	return &w, nil
}

func (t *memLedgerTx) Holding(ctx context.Context, userID uuid.UUID, symbol string, assetType domain.AssetType) (*domain.Holding, error) {
	h, ok := t.state.holdings[holdingKey(userID, symbol, assetType)]
	if !ok {
		return nil, fmt.Errorf("%w: no open position in %s", domain.ErrNotFound, symbol)
	}
	return &h, nil
}

func (t *memLedgerTx) Commit(ctx context.Context, m *domain.LedgerMutation) error {
	if m.Holding != nil {
		h := *m.Holding
		t.state.holdings[holdingKey(h.UserID, h.Symbol, h.AssetType)] = h
	}
	if m.DeleteHoldingID != nil {
		for key, h := range t.state.holdings {
			if h.ID == *m.DeleteHoldingID {
				delete(t.state.holdings, key)
			}
		}
	}
	if m.Wallet != nil {
		t.state.wallets[m.Wallet.UserID] = *m.Wallet
	}
	if m.Transaction != nil {
		t.state.txs = append(t.state.txs, *m.Transaction)
	}
	t.done = true
	t.state.mu.Unlock()
	return nil
}

func (t *memLedgerTx) Rollback() error {
	if !t.done {
		t.done = true
		t.state.mu.Unlock()
	}
	return nil
}

type memHoldingRepo struct{ state *memState }

func (r *memHoldingRepo) Get(ctx context.Context, userID uuid.UUID, symbol string, assetType domain.AssetType) (*domain.Holding, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	h, ok := r.state.holdings[holdingKey(userID, symbol, assetType)]
	if !ok {
		return nil, fmt.Errorf("%w: no open position in %s", domain.ErrNotFound, symbol)
	}
	return &h, nil
}

func (r *memHoldingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var holdings []*domain.Holding
	for _, h := range r.state.holdings {
		if h.UserID == userID {
			held := h
			holdings = append(holdings, &held)
		}
	}
	return holdings, nil
}

func (r *memHoldingRepo) UpdateValuation(ctx context.Context, holding *domain.Holding) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	key := holdingKey(holding.UserID, holding.Symbol, holding.AssetType)
	if _, ok := r.state.holdings[key]; !ok {
		return fmt.Errorf("%w: holding %s", domain.ErrNotFound, holding.ID)
	}
	r.state.holdings[key] = *holding
	return nil
}

type memWalletRepo struct{ state *memState }

func (r *memWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	w, ok := r.state.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("%w: wallet for user %s", domain.ErrNotFound, userID)
	}
	return &w, nil
}

type memTxRepo struct{ state *memState }

func (r *memTxRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []*domain.Transaction
	for i := len(r.state.txs) - 1; i >= 0; i-- {
		if r.state.txs[i].UserID != userID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		if len(out) == limit {
			break
		}
		tx := r.state.txs[i]
		out = append(out, &tx)
	}
	return out, nil
}

func (r *memTxRepo) Recent(ctx context.Context, userID uuid.UUID, n int) ([]*domain.Transaction, error) {
	return r.List(ctx, userID, n, 0)
}

func (r *memTxRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	count := 0
	for _, tx := range r.state.txs {
		if tx.UserID == userID {
			count++
		}
	}
	return count, nil
}

type memGoalRepo struct{ state *memState }

func (r *memGoalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.goals[goal.ID] = *goal
	return nil
}

func (r *memGoalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	g, ok := r.state.goals[id]
	if !ok {
		return nil, fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
	}
	return &g, nil
}

func (r *memGoalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []*domain.Goal
	for _, g := range r.state.goals {
		if g.UserID == userID {
			goal := g
			out = append(out, &goal)
		}
	}
	return out, nil
}

func (r *memGoalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.goals[goal.ID]; !ok {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, goal.ID)
	}
	r.state.goals[goal.ID] = *goal
	return nil
}

func (r *memGoalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.goals[id]; !ok {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
	}
	delete(r.state.goals, id)
	return nil
}

type fixedPrices struct {
	prices map[string]string
}

func (p *fixedPrices) Price(ctx context.Context, symbol string) (domain.Quote, error) {
	raw, ok := p.prices[symbol]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrPriceUnavailable, symbol)
	}
	return domain.Quote{
		Symbol: symbol,
		Price:  decimal.RequireFromString(raw),
		AsOf:   time.Now(),
	}, nil
}

const testToken = "test-token-123"

func newTestServer(t *testing.T, state *memState) *Server {
	t.Helper()

	store := &memLedgerStore{state: state}
	holdingRepo := &memHoldingRepo{state: state}
	walletRepo := &memWalletRepo{state: state}
	txRepo := &memTxRepo{state: state}
	goalRepo := &memGoalRepo{state: state}
	prices := &fixedPrices{prices: map[string]string{"AAPL": "150"}}

	engine := projection.NewEngine()

	return New(Config{
		Port:           0,
		APIToken:       testToken,
		AllowedOrigins: "*",
		Log:            zerolog.Nop(),
		Ledger:         ledger.NewService(store),
		Portfolio:      portfolio.NewService(holdingRepo, walletRepo, prices),
		Goals:          goals.NewService(goalRepo, engine),
		Projection:     engine,
		MonteCarlo:     montecarlo.NewEngine(montecarlo.WithSeed(42)),
		Transactions:   txRepo,
		Prices:         prices,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t, newMemState())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t, newMemState())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary?user_id="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuyThenSummaryFlow(t *testing.T) {
	state := newMemState()
	userID := uuid.New()
	state.wallets[userID] = domain.Wallet{UserID: userID, Balance: decimal.NewFromInt(10000)}
	s := newTestServer(t, state)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions/buy", map[string]interface{}{
		"user_id":    userID,
		"symbol":     "AAPL",
		"asset_type": "stock",
		"quantity":   "10",
		"price":      "100",
		"fees":       "5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	holding := body["holding"].(map[string]interface{})
	assert.Equal(t, "10", holding["units"])
	assert.Equal(t, "1005", holding["cost_basis"])
	wallet := body["wallet"].(map[string]interface{})
	assert.Equal(t, "8995", wallet["balance"])

	rec = doRequest(t, s, http.MethodGet, "/api/portfolio/summary?user_id="+userID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody(t, rec)
	assert.Equal(t, "1005", summary["total_invested"])
	assert.Equal(t, float64(1), summary["total_holdings"])

	rec = doRequest(t, s, http.MethodGet, "/api/transactions/?user_id="+userID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	assert.Equal(t, float64(1), list["total"])
}

func TestBuyFetchesPriceWhenOmitted(t *testing.T) {
	state := newMemState()
	userID := uuid.New()
	state.wallets[userID] = domain.Wallet{UserID: userID, Balance: decimal.NewFromInt(10000)}
	s := newTestServer(t, state)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions/buy", map[string]interface{}{
		"user_id":    userID,
		"symbol":     "AAPL",
		"asset_type": "stock",
		"quantity":   "2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	tx := body["transaction"].(map[string]interface{})
	assert.Equal(t, "150", tx["price"])
}

func TestBuyUnknownSymbolWithoutPrice(t *testing.T) {
	state := newMemState()
	userID := uuid.New()
	state.wallets[userID] = domain.Wallet{UserID: userID, Balance: decimal.NewFromInt(10000)}
	s := newTestServer(t, state)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions/buy", map[string]interface{}{
		"user_id":    userID,
		"symbol":     "NOPE",
		"asset_type": "stock",
		"quantity":   "2",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestInsufficientFundsMapsToBadRequest(t *testing.T) {
	state := newMemState()
	userID := uuid.New()
	state.wallets[userID] = domain.Wallet{UserID: userID, Balance: decimal.NewFromInt(10)}
	s := newTestServer(t, state)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions/buy", map[string]interface{}{
		"user_id":    userID,
		"symbol":     "AAPL",
		"asset_type": "stock",
		"quantity":   "10",
		"price":      "100",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSellUnknownHoldingMapsToNotFound(t *testing.T) {
	state := newMemState()
	userID := uuid.New()
	state.wallets[userID] = domain.Wallet{UserID: userID, Balance: decimal.NewFromInt(1000)}
	s := newTestServer(t, state)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions/sell", map[string]interface{}{
		"user_id":    userID,
		"symbol":     "AAPL",
		"asset_type": "stock",
		"quantity":   "1",
		"price":      "100",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoalLifecycle(t *testing.T) {
	state := newMemState()
	userID := uuid.New()
	s := newTestServer(t, state)

	rec := doRequest(t, s, http.MethodPost, "/api/goals/", map[string]interface{}{
		"user_id":              userID,
		"name":                 "House deposit",
		"target_amount":        "50000",
		"target_months":        36,
		"monthly_contribution": "800",
		"current_amount":       "12000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	goalID := created["id"].(string)

	rec = doRequest(t, s, http.MethodGet, "/api/goals/"+goalID+"/evaluation?annual_rate=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	evaluation := decodeBody(t, rec)
	assert.NotNil(t, evaluation["plan"])
	assert.NotNil(t, evaluation["time_to_goal"])

	rec = doRequest(t, s, http.MethodDelete, "/api/goals/"+goalID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/goals/"+goalID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectionEndpoint(t *testing.T) {
	s := newTestServer(t, newMemState())

	rec := doRequest(t, s, http.MethodPost, "/api/projections/future-value", map[string]interface{}{
		"current_amount":       10000,
		"monthly_contribution": 500,
		"annual_rate_pct":      0,
		"years":                10,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.InDelta(t, 70000, body["future_value"].(float64), 0.001)
}

func TestMonteCarloEndpoint(t *testing.T) {
	s := newTestServer(t, newMemState())

	rec := doRequest(t, s, http.MethodPost, "/api/simulations/monte-carlo", map[string]interface{}{
		"current_amount":             10000,
		"monthly_contribution":       500,
		"expected_annual_return_pct": 7,
		"annual_volatility_pct":      15,
		"years":                      10,
		"trials":                     200,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Greater(t, body["mean"].(float64), 0.0)
	assert.LessOrEqual(t, body["percentile_10"].(float64), body["percentile_90"].(float64))
}
