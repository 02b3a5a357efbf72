// Package httpapi exposes the ledger, portfolio, goal, projection and
// simulation services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/goals"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/ledger"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/montecarlo"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/portfolio"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/projection"
)

// Config holds server configuration
type Config struct {
	Port           int
	APIToken       string
	AllowedOrigins string
	DevMode        bool
	Log            zerolog.Logger

	Ledger       *ledger.Service
	Portfolio    *portfolio.Service
	Goals        *goals.Service
	Projection   *projection.Engine
	MonteCarlo   *montecarlo.Engine
	Transactions domain.TransactionRepository
	Prices       domain.PriceLookup
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(s.cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.cfg.APIToken != "" {
			r.Use(BearerAuth(s.cfg.APIToken))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Get("/recent", s.handleRecentTransactions)
			r.Post("/buy", s.handleBuy)
			r.Post("/sell", s.handleSell)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", s.handleGetWallet)
			r.Post("/contribute", s.handleContribute)
			r.Post("/withdraw", s.handleWithdraw)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/summary", s.handlePortfolioSummary)
			r.Get("/allocation", s.handlePortfolioAllocation)
			r.Get("/holdings", s.handleListHoldings)
			r.Get("/holdings/{symbol}", s.handleGetHolding)
			r.Post("/refresh-prices", s.handleRefreshPrices)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Post("/", s.handleCreateGoal)
			r.Get("/", s.handleListGoals)
			r.Get("/{goalID}", s.handleGetGoal)
			r.Put("/{goalID}", s.handleUpdateGoal)
			r.Delete("/{goalID}", s.handleDeleteGoal)
			r.Get("/{goalID}/evaluation", s.handleEvaluateGoal)
		})

		r.Route("/projections", func(r chi.Router) {
			r.Post("/future-value", s.handleFutureValue)
			r.Post("/goal-achievement", s.handleGoalAchievement)
			r.Post("/required-contribution", s.handleRequiredContribution)
			r.Post("/time-to-goal", s.handleTimeToGoal)
			r.Post("/what-if/returns", s.handleWhatIfReturns)
			r.Post("/what-if/contributions", s.handleWhatIfContributions)
		})

		r.Post("/simulations/monte-carlo", s.handleMonteCarlo)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "wealthpilot",
	})
}

// writeDomainError maps domain sentinel errors onto HTTP status codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientUnits):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPriceUnavailable):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error().Err(err).Msg("Internal error")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
