// Command backfill populates or repairs historical net worth records.
// It runs for a single user (-user) or for every known user, and is safe to
// re-run: both backfill algorithms are idempotent upserts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/finvault/finvault-backend/internal/adapter/repository/postgres"
	"github.com/finvault/finvault-backend/internal/config"
	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/logger"
	"github.com/finvault/finvault-backend/internal/usecase/backfill"
	"github.com/finvault/finvault-backend/internal/usecase/networth"
)

func main() {
	userFlag := flag.String("user", "", "backfill a single user ID instead of all users")
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
	historyRepo := postgres.NewAssetValueHistoryRepository(db)
	netWorthRepo := postgres.NewNetWorthRepository(db)

	// Services
	engine := networth.NewService(accountRepo, assetRepo, liabilityRepo, historyRepo, netWorthRepo)
	coordinator := backfill.NewCoordinator(accountRepo, historyRepo, netWorthRepo, engine)

	// Cancel the run cleanly on SIGTERM/SIGINT.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigChan
		logger.L.Info("received signal, cancelling backfill", "signal", sig.String())
		cancel()
	}()

	userIDs, err := resolveUsers(ctx, *userFlag, accountRepo)
	if err != nil {
		log.Fatalf("Failed to resolve users: %v", err)
	}

	totalWritten := 0
	failures := 0
	for _, userID := range userIDs {
		written, err := coordinator.Run(ctx, userID)
		totalWritten += written
		if err != nil {
			failures++
			logger.L.Error("backfill incomplete for user",
				"user_id", userID.String(), "records_written", written, "error", err)
			continue
		}
		logger.L.Info("backfill complete for user",
			"user_id", userID.String(), "records_written", written)
	}

	logger.L.Info("backfill run finished",
		"users", len(userIDs), "records_written", totalWritten, "failed_users", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

// resolveUsers returns the single flagged user or every known user.
func resolveUsers(ctx context.Context, userFlag string, accountRepo domain.AccountRepository) ([]uuid.UUID, error) {
	if userFlag != "" {
		id, err := uuid.Parse(userFlag)
		if err != nil {
			return nil, err
		}
		return []uuid.UUID{id}, nil
	}
	return accountRepo.AllUserIDs(ctx)
}
