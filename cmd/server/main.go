package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duartefn/wealthpilot-backend/internal/adapter/httpapi"
	"github.com/duartefn/wealthpilot-backend/internal/adapter/pricing"
	"github.com/duartefn/wealthpilot-backend/internal/adapter/repository/postgres"
	"github.com/duartefn/wealthpilot-backend/internal/config"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/goals"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/ledger"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/montecarlo"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/portfolio"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/projection"
	"github.com/duartefn/wealthpilot-backend/internal/usecase/seeder"
	"github.com/duartefn/wealthpilot-backend/pkg/logger"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	// 2. Database
	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 3. Repositories and adapters
	holdingRepo := postgres.NewHoldingRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	goalRepo := postgres.NewGoalRepository(db)
	ledgerStore := postgres.NewLedgerStore(db)

	prices := pricing.NewClient(cfg.QuoteAPIURL, log, pricing.WithTTL(cfg.QuoteCacheTTL))

	// 4. Services
	projectionEngine := projection.NewEngine()
	monteCarloEngine := montecarlo.NewEngine()
	ledgerService := ledger.NewService(ledgerStore)
	portfolioService := portfolio.NewService(holdingRepo, walletRepo, prices)
	goalsService := goals.NewService(goalRepo, projectionEngine)

	if cfg.DevMode {
		wallet, err := seeder.NewWalletSeeder(ledgerStore).SeedDemo(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo wallet")
		}
		log.Info().Str("user_id", wallet.UserID.String()).Str("balance", wallet.Balance.String()).Msg("Demo wallet ready")
	}

	// 5. HTTP server
	server := httpapi.New(httpapi.Config{
		Port:           cfg.Port,
		APIToken:       cfg.APIToken,
		AllowedOrigins: cfg.AllowedOrigins,
		DevMode:        cfg.DevMode,
		Log:            log,
		Ledger:         ledgerService,
		Portfolio:      portfolioService,
		Goals:          goalsService,
		Projection:     projectionEngine,
		MonteCarlo:     monteCarloEngine,
		Transactions:   transactionRepo,
		Prices:         prices,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown did not complete cleanly")
	}
}
