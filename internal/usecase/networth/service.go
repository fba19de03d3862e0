package networth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/usecase/amortization"
)

// Service is the net-worth snapshot engine. It reconstructs one user's net
// worth for any calendar month and upserts exactly one NetWorthHistory record
// per (user, month). All figures aggregate over the full shared-account
// membership, never a single user.
type Service struct {
	AccountRepo   domain.AccountRepository
	AssetRepo     domain.AssetRepository
	LiabilityRepo domain.LiabilityRepository
	HistoryRepo   domain.AssetValueHistoryRepository
	NetWorthRepo  domain.NetWorthRepository

	// Now is injectable for deterministic tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new snapshot engine instance
func NewService(
	accountRepo domain.AccountRepository,
	assetRepo domain.AssetRepository,
	liabilityRepo domain.LiabilityRepository,
	historyRepo domain.AssetValueHistoryRepository,
	netWorthRepo domain.NetWorthRepository,
) *Service {
	return &Service{
		AccountRepo:   accountRepo,
		AssetRepo:     assetRepo,
		LiabilityRepo: liabilityRepo,
		HistoryRepo:   historyRepo,
		NetWorthRepo:  netWorthRepo,
		Now:           time.Now,
	}
}

// RefreshCurrentMonth recomputes and upserts the current month's snapshot.
// Invoked after every asset, liability or holding mutation.
func (s *Service) RefreshCurrentMonth(ctx context.Context, userID uuid.UUID) error {
	return s.RefreshMonth(ctx, userID, domain.MonthKeyOf(s.Now()))
}

// RefreshMonth computes the snapshot for one month and upserts it.
// On any read failure nothing is written: a stale record is preferred over a
// partial total, and the computation is retried on the next trigger.
func (s *Service) RefreshMonth(ctx context.Context, userID uuid.UUID, month domain.MonthKey) error {
	record, err := s.Compute(ctx, userID, month)
	if err != nil {
		return err
	}
	if err := s.NetWorthRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to upsert net worth for %s/%s: %w", userID, month, err)
	}
	return nil
}

// Compute reconstructs the snapshot for (user, month) without writing it.
//
// Logic:
//  1. Total assets = for every asset owned by any account member, the
//     AssetValueHistory value for the month if one exists, else the asset's
//     current live value (months without a recorded snapshot are
//     approximated, an accepted imprecision)
//  2. Total liabilities = sum of amortized remaining balances as of the
//     first day of the month
//  3. NetWorth = assets - liabilities
func (s *Service) Compute(ctx context.Context, userID uuid.UUID, month domain.MonthKey) (*domain.NetWorthHistory, error) {
	firstDay, err := month.FirstDay()
	if err != nil {
		return nil, err
	}

	members, err := s.AccountRepo.MemberIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account members for %s: %w", userID, err)
	}

	totalAssets, err := s.totalAssets(ctx, members, month)
	if err != nil {
		return nil, err
	}

	totalLiabilities, err := s.totalLiabilities(ctx, members, firstDay)
	if err != nil {
		return nil, err
	}

	return &domain.NetWorthHistory{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        firstDay,
		Assets:      totalAssets,
		Liabilities: totalLiabilities,
		NetWorth:    totalAssets.Sub(totalLiabilities),
	}, nil
}

// totalAssets sums every member-owned asset's value for the month, preferring
// the recorded historical value and falling back to the live value.
func (s *Service) totalAssets(ctx context.Context, members []uuid.UUID, month domain.MonthKey) (decimal.Decimal, error) {
	assets, err := s.AssetRepo.ListByUsers(ctx, members)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list assets: %w", err)
	}

	total := decimal.Zero
	for _, asset := range assets {
		entry, err := s.HistoryRepo.Get(ctx, asset.ID, month)
		switch {
		case err == nil:
			total = total.Add(entry.Value)
		case errors.Is(err, domain.ErrNotFound):
			total = total.Add(asset.Value)
		default:
			return decimal.Zero, fmt.Errorf("failed to read value history for asset %s: %w", asset.ID, err)
		}
	}
	return total, nil
}

// totalLiabilities sums the amortized remaining balance of every
// member-owned liability as of the given date.
func (s *Service) totalLiabilities(ctx context.Context, members []uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	liabilities, err := s.LiabilityRepo.ListByUsers(ctx, members)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list liabilities: %w", err)
	}

	total := decimal.Zero
	for _, liability := range liabilities {
		balance, _ := amortization.RemainingBalance(liability, asOf)
		total = total.Add(balance)
	}
	return total, nil
}
