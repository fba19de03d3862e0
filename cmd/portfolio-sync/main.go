// Command portfolio-sync consolidates every user's holdings into their
// synthetic portfolio asset and refreshes the current month's net worth.
// Intended to run on a schedule; -force bypasses the synced-value staleness
// window and always hits the quote provider.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/finvault/finvault-backend/internal/adapter/marketdata"
	"github.com/finvault/finvault-backend/internal/adapter/repository/postgres"
	"github.com/finvault/finvault-backend/internal/cache"
	"github.com/finvault/finvault-backend/internal/config"
	"github.com/finvault/finvault-backend/internal/logger"
	"github.com/finvault/finvault-backend/internal/usecase/networth"
	"github.com/finvault/finvault-backend/internal/usecase/portfolio"
)

func main() {
	userFlag := flag.String("user", "", "sync a single user ID instead of all users")
	force := flag.Bool("force", false, "bypass the synced-value staleness window")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	liabilityRepo := postgres.NewLiabilityRepository(db)
	holdingRepo := postgres.NewHoldingRepository(db)
	historyRepo := postgres.NewAssetValueHistoryRepository(db)
	netWorthRepo := postgres.NewNetWorthRepository(db)

	// Quote provider and shared caches
	provider := marketdata.NewClient(
		marketdata.WithBaseURL(cfg.QuoteBaseURL),
		marketdata.WithTimeout(cfg.QuoteTimeout),
		marketdata.WithRateLimit(cfg.QuoteRatePerSec),
	)
	rateCache := cache.NewRateCache(cfg.FXCacheTTL, nil)
	valueCache := cache.NewValueCache(cfg.PortfolioMaxAge, nil)

	// Services
	engine := networth.NewService(accountRepo, assetRepo, liabilityRepo, historyRepo, netWorthRepo)
	analyzer := portfolio.NewAnalyzer(accountRepo, holdingRepo, provider,
		portfolio.NewFXConverter(provider, rateCache), cfg.BaseCurrency)
	analyzer.HistoryDays = cfg.HistoryDays
	analyzer.MaxConcurrent = cfg.MaxQuoteFetchers
	syncer := portfolio.NewSyncer(analyzer, assetRepo, historyRepo, engine, valueCache)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	var userIDs []uuid.UUID
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("Invalid user ID %q: %v", *userFlag, err)
		}
		userIDs = []uuid.UUID{id}
	} else {
		userIDs, err = accountRepo.AllUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
	}

	synced := 0
	for _, userID := range userIDs {
		value, err := syncer.SyncPortfolioAsset(ctx, userID, *force)
		if err != nil {
			logger.L.Error("portfolio sync failed", "user_id", userID.String(), "error", err)
			continue
		}
		logger.L.Info("portfolio synced", "user_id", userID.String(), "value", value.String())
		synced++
	}

	logger.L.Info("portfolio sync run finished", "users", len(userIDs), "synced", synced)
}
