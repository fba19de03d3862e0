package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/cache"
	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/usecase/networth"
)

// Syncer mirrors the consolidated portfolio value into the reserved
// synthetic asset so it participates in net worth like any other asset.
// The synthetic asset is owned exclusively by this service; users never
// edit it directly.
type Syncer struct {
	Analyzer    *Analyzer
	AssetRepo   domain.AssetRepository
	HistoryRepo domain.AssetValueHistoryRepository
	Engine      *networth.Service
	Values      *cache.ValueCache

	// Now is injectable for deterministic tests. Defaults to time.Now.
	Now func() time.Time
}

// NewSyncer creates a new portfolio sync service
func NewSyncer(
	analyzer *Analyzer,
	assetRepo domain.AssetRepository,
	historyRepo domain.AssetValueHistoryRepository,
	engine *networth.Service,
	values *cache.ValueCache,
) *Syncer {
	return &Syncer{
		Analyzer:    analyzer,
		AssetRepo:   assetRepo,
		HistoryRepo: historyRepo,
		Engine:      engine,
		Values:      values,
		Now:         time.Now,
	}
}

// SyncPortfolioAsset recomputes the consolidated portfolio value and writes
// it through to the synthetic asset, the monthly value history and the
// current month's net worth snapshot. Returns the synced value.
//
// Within the staleness window the cached value is returned without touching
// the provider; force bypasses the cache.
//
// Logic:
//  1. Serve from the per-user value cache unless forced or stale
//  2. Analyze the portfolio; on failure nothing is written (a stale synced
//     value beats a misleading zero)
//  3. Get-or-create the reserved synthetic asset
//  4. Only when the value actually changed: update the asset and upsert the
//     current month's AssetValueHistory row (write-once-per-change)
//  5. Refresh the current month's net worth
func (s *Syncer) SyncPortfolioAsset(ctx context.Context, userID uuid.UUID, force bool) (decimal.Decimal, error) {
	if !force {
		if value, ok := s.Values.Get(userID); ok {
			return value, nil
		}
	}

	analysis, err := s.Analyzer.Analyze(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("portfolio analysis failed for %s: %w", userID, err)
	}
	value := analysis.TotalValueBaseCurrency.Round(2)

	asset, err := s.syntheticAsset(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if !asset.Value.Equal(value) {
		if err := s.AssetRepo.UpdateValue(ctx, asset.ID, value); err != nil {
			return decimal.Zero, fmt.Errorf("failed to update synthetic asset value: %w", err)
		}
		entry := &domain.AssetValueHistory{
			ID:         uuid.New(),
			AssetID:    asset.ID,
			MonthKey:   domain.MonthKeyOf(s.Now()),
			Value:      value,
			RecordedAt: s.Now(),
		}
		if err := s.HistoryRepo.Upsert(ctx, entry); err != nil {
			return decimal.Zero, fmt.Errorf("failed to record synthetic asset history: %w", err)
		}
	}

	s.Values.Put(userID, value)

	if err := s.Engine.RefreshCurrentMonth(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// syntheticAsset finds the user's reserved portfolio asset, creating it on
// first sync.
func (s *Syncer) syntheticAsset(ctx context.Context, userID uuid.UUID) (*domain.Asset, error) {
	asset, err := s.AssetRepo.GetByName(ctx, userID, domain.SyntheticPortfolioAssetName)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up synthetic asset: %w", err)
	}

	asset = &domain.Asset{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     domain.SyntheticPortfolioAssetName,
		Category: "investments",
		Value:    decimal.Zero,
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create synthetic asset: %w", err)
	}
	return asset, nil
}
