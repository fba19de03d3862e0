package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finvault/finvault-backend/internal/cache"
	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/usecase/networth"
)

var syncNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type syncFixture struct {
	syncer      *Syncer
	accountRepo *MockAccountRepository
	holdingRepo *MockHoldingRepository
	assetRepo   *MockAssetRepository
	historyRepo *MockHistoryRepository
	provider    *MockQuoteProvider
	values      *cache.ValueCache
}

// newSyncFixture wires a syncer with fresh mocks and a deterministic clock.
// The net worth refresh at the end of every sync runs against the same mocks,
// so tests arrange the member/asset/liability reads it needs.
func newSyncFixture() *syncFixture {
	accountRepo := new(MockAccountRepository)
	holdingRepo := new(MockHoldingRepository)
	assetRepo := new(MockAssetRepository)
	liabilityRepo := new(MockLiabilityRepository)
	historyRepo := new(MockHistoryRepository)
	netWorthRepo := new(MockNetWorthRepository)
	provider := new(MockQuoteProvider)

	fx := NewFXConverter(provider, cache.NewRateCache(time.Hour, nil))
	analyzer := NewAnalyzer(accountRepo, holdingRepo, provider, fx, "EUR")

	engine := networth.NewService(accountRepo, assetRepo, liabilityRepo, historyRepo, netWorthRepo)
	engine.Now = func() time.Time { return syncNow }

	values := cache.NewValueCache(6*time.Hour, func() time.Time { return syncNow })
	syncer := NewSyncer(analyzer, assetRepo, historyRepo, engine, values)
	syncer.Now = func() time.Time { return syncNow }

	// The trailing net worth refresh: keep it trivially satisfiable.
	liabilityRepo.On("ListByUsers", mock.Anything, mock.Anything).Return([]*domain.Liability{}, nil).Maybe()
	netWorthRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &syncFixture{
		syncer:      syncer,
		accountRepo: accountRepo,
		holdingRepo: holdingRepo,
		assetRepo:   assetRepo,
		historyRepo: historyRepo,
		provider:    provider,
		values:      values,
	}
}

// arrangePortfolio sets up a one-holding portfolio worth 500 EUR.
func (f *syncFixture) arrangePortfolio(userID uuid.UUID) {
	members := []uuid.UUID{userID}
	f.accountRepo.On("MemberIDs", mock.Anything, userID).Return(members, nil)
	f.holdingRepo.On("ListByUsers", mock.Anything, members).Return([]*domain.Holding{
		{ID: uuid.New(), UserID: userID, Symbol: "TECH",
			Quantity: decimal.NewFromInt(50), Currency: "EUR"},
	}, nil)
	f.provider.On("Quote", mock.Anything, "TECH").Return(&domain.Quote{
		Symbol: "TECH", Price: decimal.NewFromInt(10), Currency: "EUR", Sector: "Tech",
	}, nil)
	f.provider.On("History", mock.Anything, mock.Anything, mock.Anything).Return([]domain.PricePoint{}, nil)
}

func TestSyncPortfolioAsset_CreatesSyntheticAssetOnFirstSync(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	userID := uuid.New()
	f.arrangePortfolio(userID)

	f.assetRepo.On("GetByName", mock.Anything, userID, domain.SyntheticPortfolioAssetName).
		Return(nil, domain.ErrNotFound)
	f.assetRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Asset) bool {
		return a.UserID == userID &&
			a.Name == domain.SyntheticPortfolioAssetName &&
			a.Category == "investments" &&
			a.Value.IsZero()
	})).Return(nil)
	f.assetRepo.On("UpdateValue", mock.Anything, mock.Anything, decimal.NewFromInt(500).Round(2)).Return(nil)
	f.historyRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	// Net worth refresh reads.
	f.assetRepo.On("ListByUsers", mock.Anything, mock.Anything).Return([]*domain.Asset{}, nil)

	value, err := f.syncer.SyncPortfolioAsset(ctx, userID, false)

	assert.NoError(t, err)
	assert.Equal(t, "500.00", value.StringFixed(2))
	f.assetRepo.AssertExpectations(t)
}

func TestSyncPortfolioAsset_WritesHistoryForCurrentMonthOnChange(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	userID := uuid.New()
	f.arrangePortfolio(userID)

	asset := &domain.Asset{
		ID: uuid.New(), UserID: userID,
		Name: domain.SyntheticPortfolioAssetName, Category: "investments",
		Value: decimal.NewFromInt(450),
	}
	f.assetRepo.On("GetByName", mock.Anything, userID, domain.SyntheticPortfolioAssetName).Return(asset, nil)
	f.assetRepo.On("UpdateValue", mock.Anything, asset.ID, mock.Anything).Return(nil)
	f.historyRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.AssetValueHistory) bool {
		return e.AssetID == asset.ID &&
			e.MonthKey == domain.MonthKey("2025-03") &&
			e.Value.Equal(decimal.NewFromInt(500))
	})).Return(nil)
	f.assetRepo.On("ListByUsers", mock.Anything, mock.Anything).Return([]*domain.Asset{}, nil)

	_, err := f.syncer.SyncPortfolioAsset(ctx, userID, false)

	assert.NoError(t, err)
	f.historyRepo.AssertExpectations(t)
}

func TestSyncPortfolioAsset_UnchangedValueSkipsWrites(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	userID := uuid.New()
	f.arrangePortfolio(userID)

	asset := &domain.Asset{
		ID: uuid.New(), UserID: userID,
		Name: domain.SyntheticPortfolioAssetName, Category: "investments",
		Value: decimal.NewFromInt(500),
	}
	f.assetRepo.On("GetByName", mock.Anything, userID, domain.SyntheticPortfolioAssetName).Return(asset, nil)
	f.assetRepo.On("ListByUsers", mock.Anything, mock.Anything).Return([]*domain.Asset{}, nil)

	value, err := f.syncer.SyncPortfolioAsset(ctx, userID, false)

	assert.NoError(t, err)
	assert.Equal(t, "500.00", value.StringFixed(2))
	f.assetRepo.AssertNotCalled(t, "UpdateValue", mock.Anything, mock.Anything, mock.Anything)
	f.historyRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSyncPortfolioAsset_ServesFromCacheInsideStalenessWindow(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	userID := uuid.New()

	f.values.Put(userID, decimal.NewFromInt(777))

	value, err := f.syncer.SyncPortfolioAsset(ctx, userID, false)

	assert.NoError(t, err)
	assert.Equal(t, "777", value.String())
	f.provider.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
	f.accountRepo.AssertNotCalled(t, "MemberIDs", mock.Anything, mock.Anything)
}

func TestSyncPortfolioAsset_ForceBypassesCache(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	userID := uuid.New()
	f.arrangePortfolio(userID)

	f.values.Put(userID, decimal.NewFromInt(777))

	asset := &domain.Asset{
		ID: uuid.New(), UserID: userID,
		Name: domain.SyntheticPortfolioAssetName, Category: "investments",
		Value: decimal.NewFromInt(500),
	}
	f.assetRepo.On("GetByName", mock.Anything, userID, domain.SyntheticPortfolioAssetName).Return(asset, nil)
	f.assetRepo.On("ListByUsers", mock.Anything, mock.Anything).Return([]*domain.Asset{}, nil)

	value, err := f.syncer.SyncPortfolioAsset(ctx, userID, true)

	assert.NoError(t, err)
	assert.Equal(t, "500.00", value.StringFixed(2))
	f.provider.AssertCalled(t, "Quote", mock.Anything, "TECH")

	// The forced result replaces the cached one.
	cached, ok := f.values.Get(userID)
	assert.True(t, ok)
	assert.Equal(t, "500.00", cached.StringFixed(2))
}

func TestSyncPortfolioAsset_AnalysisFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture()
	userID := uuid.New()
	members := []uuid.UUID{userID}

	f.accountRepo.On("MemberIDs", mock.Anything, userID).Return(members, nil)
	f.holdingRepo.On("ListByUsers", mock.Anything, members).Return([]*domain.Holding{
		{ID: uuid.New(), UserID: userID, Symbol: "TECH",
			Quantity: decimal.NewFromInt(1), Currency: "EUR"},
	}, nil)
	f.provider.On("Quote", mock.Anything, "TECH").Return(nil, assert.AnError)

	_, err := f.syncer.SyncPortfolioAsset(ctx, userID, false)

	assert.ErrorIs(t, err, ErrAllQuotesFailed)
	f.assetRepo.AssertNotCalled(t, "UpdateValue", mock.Anything, mock.Anything, mock.Anything)
	f.historyRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	_, ok := f.values.Get(userID)
	assert.False(t, ok)
}
