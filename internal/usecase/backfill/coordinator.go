package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/logger"
	"github.com/finvault/finvault-backend/internal/usecase/networth"
)

// DefaultTrailingMonths is how many months (including the current one) get
// seeded for a brand-new user with no recorded history.
const DefaultTrailingMonths = 6

// Coordinator is the batch driver that populates or repairs historical
// NetWorthHistory records. Both of its algorithms are idempotent: running
// twice produces the same stored state, never duplicate rows.
type Coordinator struct {
	AccountRepo  domain.AccountRepository
	HistoryRepo  domain.AssetValueHistoryRepository
	NetWorthRepo domain.NetWorthRepository
	Engine       *networth.Service

	// TrailingMonths is the seed depth for new users. Defaults to
	// DefaultTrailingMonths when zero.
	TrailingMonths int

	// Now is injectable for deterministic tests. Defaults to time.Now.
	Now func() time.Time
}

// NewCoordinator creates a new backfill coordinator
func NewCoordinator(
	accountRepo domain.AccountRepository,
	historyRepo domain.AssetValueHistoryRepository,
	netWorthRepo domain.NetWorthRepository,
	engine *networth.Service,
) *Coordinator {
	return &Coordinator{
		AccountRepo:    accountRepo,
		HistoryRepo:    historyRepo,
		NetWorthRepo:   netWorthRepo,
		Engine:         engine,
		TrailingMonths: DefaultTrailingMonths,
		Now:            time.Now,
	}
}

// Run backfills one user's net worth history and returns the number of
// records written.
//
// Logic:
//   - A user whose account has no asset value history before the current
//     month gets the initial backfill: a flat line at today's net worth for
//     the trailing months. The system has no real data for them, and a flat
//     line is more honest than inventing a trend.
//   - Otherwise every month with recorded history is recomputed from that
//     history (plus the current month, which may have no history rows yet).
func (c *Coordinator) Run(ctx context.Context, userID uuid.UUID) (int, error) {
	members, err := c.AccountRepo.MemberIDs(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve account members for %s: %w", userID, err)
	}

	months, err := c.HistoryRepo.DistinctMonths(ctx, members)
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate history months: %w", err)
	}

	current := domain.MonthKeyOf(c.Now())
	if !anyBefore(months, current) {
		return c.initialBackfill(ctx, userID, current)
	}
	return c.historyBackfill(ctx, userID, months, current)
}

// initialBackfill computes the user's current net worth once and writes that
// same value to each trailing month. Existing records for past months are
// left untouched; the current month is always refreshed.
func (c *Coordinator) initialBackfill(ctx context.Context, userID uuid.UUID, current domain.MonthKey) (int, error) {
	snapshot, err := c.Engine.Compute(ctx, userID, current)
	if err != nil {
		return 0, err
	}

	trailing := c.TrailingMonths
	if trailing <= 0 {
		trailing = DefaultTrailingMonths
	}

	written := 0
	for _, month := range domain.TrailingMonthKeys(c.Now(), trailing) {
		firstDay, err := month.FirstDay()
		if err != nil {
			return written, err
		}

		if month != current {
			_, err := c.NetWorthRepo.Get(ctx, userID, firstDay)
			if err == nil {
				continue // never silently rewrite an existing past month
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return written, fmt.Errorf("failed to check existing record for %s: %w", month, err)
			}
		}

		record := &domain.NetWorthHistory{
			ID:          uuid.New(),
			UserID:      userID,
			Date:        firstDay,
			Assets:      snapshot.Assets,
			Liabilities: snapshot.Liabilities,
			NetWorth:    snapshot.NetWorth,
		}
		if err := c.NetWorthRepo.Upsert(ctx, record); err != nil {
			return written, fmt.Errorf("failed to upsert %s: %w", month, err)
		}
		written++
	}
	return written, nil
}

// historyBackfill runs the full snapshot computation for every month with
// recorded asset value history, always including the current month.
// A month that fails is logged and skipped so one bad month never blocks the
// rest; the collected errors are returned alongside the write count.
func (c *Coordinator) historyBackfill(ctx context.Context, userID uuid.UUID, months []domain.MonthKey, current domain.MonthKey) (int, error) {
	if !contains(months, current) {
		months = append(months, current)
	}

	written := 0
	var errs []error
	for _, month := range months {
		if err := c.Engine.RefreshMonth(ctx, userID, month); err != nil {
			logger.L.Warn("backfill month failed, skipping",
				"user_id", userID.String(), "month", string(month), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", month, err))
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}

// anyBefore reports whether any month key precedes the given one.
// YYYY-MM keys order lexicographically.
func anyBefore(months []domain.MonthKey, current domain.MonthKey) bool {
	for _, m := range months {
		if m < current {
			return true
		}
	}
	return false
}

func contains(months []domain.MonthKey, key domain.MonthKey) bool {
	for _, m := range months {
		if m == key {
			return true
		}
	}
	return false
}
