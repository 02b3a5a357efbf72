package httpapi

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/ledger"
)

type tradeRequest struct {
	UserID    uuid.UUID       `json:"user_id"`
	Symbol    string          `json:"symbol"`
	AssetType string          `json:"asset_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fees      decimal.Decimal `json:"fees"`
}

type tradeResponse struct {
	Holding     *holdingJSON    `json:"holding"`
	Wallet      walletJSON      `json:"wallet"`
	Transaction transactionJSON `json:"transaction"`
}

// resolvePrice fills in the market price for a trade when the caller did
// not supply one.
func (s *Server) resolvePrice(r *http.Request, req *tradeRequest) error {
	if req.Price.IsPositive() {
		return nil
	}
	quote, err := s.cfg.Prices.Price(r.Context(), req.Symbol)
	if err != nil {
		return err
	}
	req.Price = quote.Price
	return nil
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.resolvePrice(r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.cfg.Ledger.Buy(r.Context(), ledger.BuyInput{
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		AssetType: domain.AssetType(req.AssetType),
		Quantity:  req.Quantity,
		Price:     req.Price,
		Fees:      req.Fees,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, tradeResponse{
		Holding:     toHoldingJSON(result.Holding),
		Wallet:      toWalletJSON(result.Wallet),
		Transaction: toTransactionJSON(result.Transaction),
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.resolvePrice(r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.cfg.Ledger.Sell(r.Context(), ledger.SellInput{
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		AssetType: domain.AssetType(req.AssetType),
		Quantity:  req.Quantity,
		Price:     req.Price,
		Fees:      req.Fees,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, tradeResponse{
		Holding:     toHoldingJSON(result.Holding),
		Wallet:      toWalletJSON(result.Wallet),
		Transaction: toTransactionJSON(result.Transaction),
	})
}

type cashRequest struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type cashResponse struct {
	Wallet      walletJSON      `json:"wallet"`
	Transaction transactionJSON `json:"transaction"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.cfg.Ledger.Contribute(r.Context(), req.UserID, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, cashResponse{
		Wallet:      toWalletJSON(result.Wallet),
		Transaction: toTransactionJSON(result.Transaction),
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.cfg.Ledger.Withdraw(r.Context(), req.UserID, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, cashResponse{
		Wallet:      toWalletJSON(result.Wallet),
		Transaction: toTransactionJSON(result.Transaction),
	})
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	wallet, err := s.cfg.Portfolio.WalletRepo.GetByUserID(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toWalletJSON(*wallet))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 500 || offset < 0 {
		s.writeError(w, http.StatusBadRequest, "limit must be in [1,500] and offset non-negative")
		return
	}

	transactions, err := s.cfg.Transactions.List(r.Context(), userID, limit, offset)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	total, err := s.cfg.Transactions.Count(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	items := make([]transactionJSON, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, toTransactionJSON(*tx))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.queryUserID(w, r)
	if !ok {
		return
	}

	n := queryInt(r, "n", 10)
	if n <= 0 || n > 100 {
		s.writeError(w, http.StatusBadRequest, "n must be in [1,100]")
		return
	}

	transactions, err := s.cfg.Transactions.Recent(r.Context(), userID, n)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	items := make([]transactionJSON, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, toTransactionJSON(*tx))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// queryUserID parses the user_id query parameter
func (s *Server) queryUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return uuid.Nil, false
	}
	return userID, true
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
