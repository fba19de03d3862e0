package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/finvault/finvault-backend/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) MemberIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockAccountRepository) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockHoldingRepository is a mock implementation of HoldingRepository for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*domain.Holding, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Holding), args.Error(1)
}

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Asset, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*domain.Asset, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) UpdateValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

// MockLiabilityRepository is a mock implementation of LiabilityRepository for testing
type MockLiabilityRepository struct {
	mock.Mock
}

func (m *MockLiabilityRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*domain.Liability, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Liability), args.Error(1)
}

// MockHistoryRepository is a mock implementation of AssetValueHistoryRepository for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Get(ctx context.Context, assetID uuid.UUID, month domain.MonthKey) (*domain.AssetValueHistory, error) {
	args := m.Called(ctx, assetID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssetValueHistory), args.Error(1)
}

func (m *MockHistoryRepository) Upsert(ctx context.Context, entry *domain.AssetValueHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) DistinctMonths(ctx context.Context, userIDs []uuid.UUID) ([]domain.MonthKey, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthKey), args.Error(1)
}

// MockNetWorthRepository is a mock implementation of NetWorthRepository for testing
type MockNetWorthRepository struct {
	mock.Mock
}

func (m *MockNetWorthRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.NetWorthHistory, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NetWorthHistory), args.Error(1)
}

func (m *MockNetWorthRepository) Upsert(ctx context.Context, record *domain.NetWorthHistory) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockQuoteProvider is a mock implementation of QuoteProvider for testing
type MockQuoteProvider struct {
	mock.Mock
}

func (m *MockQuoteProvider) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteProvider) History(ctx context.Context, symbol string, days int) ([]domain.PricePoint, error) {
	args := m.Called(ctx, symbol, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricePoint), args.Error(1)
}

func (m *MockQuoteProvider) FXRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
