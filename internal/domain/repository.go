package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("record not found")

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetByName retrieves a user's asset by its exact name.
	// Used to locate the reserved synthetic portfolio asset.
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*Asset, error)

	// ListByUsers retrieves every asset owned by any of the given users
	// (the full shared-account membership)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*Asset, error)

	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// UpdateValue overwrites an asset's current live value
	UpdateValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error
}

// LiabilityRepository defines the interface for liability persistence operations
type LiabilityRepository interface {
	// ListByUsers retrieves every liability owned by any of the given users
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*Liability, error)
}

// HoldingRepository defines the interface for holding persistence operations
type HoldingRepository interface {
	// ListByUsers retrieves every holding owned by any of the given users
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*Holding, error)
}

// AssetValueHistoryRepository defines the interface for monthly asset value
// history persistence operations
type AssetValueHistoryRepository interface {
	// Get retrieves the value an asset had during the given month.
	// Returns ErrNotFound when no record exists for that month.
	Get(ctx context.Context, assetID uuid.UUID, month MonthKey) (*AssetValueHistory, error)

	// Upsert writes the value for (asset, month), overwriting any existing
	// record for the same month. At most one record per asset per month.
	Upsert(ctx context.Context, entry *AssetValueHistory) error

	// DistinctMonths returns every month key that has at least one history
	// record for any asset owned by the given users, ordered oldest first
	DistinctMonths(ctx context.Context, userIDs []uuid.UUID) ([]MonthKey, error)
}

// NetWorthRepository defines the interface for net worth snapshot persistence
type NetWorthRepository interface {
	// Get retrieves the snapshot for (user, first-of-month date).
	// Returns ErrNotFound when none exists.
	Get(ctx context.Context, userID uuid.UUID, date time.Time) (*NetWorthHistory, error)

	// Upsert atomically inserts or overwrites the snapshot keyed by
	// (user, date). Concurrent upserts for the same key must never leave a
	// partially written record; last writer wins.
	Upsert(ctx context.Context, record *NetWorthHistory) error
}

// AccountRepository defines the interface for shared-account membership lookups
type AccountRepository interface {
	// MemberIDs returns the IDs of every user in the same shared account as
	// userID. A user with no shared account gets a single-element slice
	// containing only their own ID.
	MemberIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// AllUserIDs returns every known user ID (batch backfill driver)
	AllUserIDs(ctx context.Context) ([]uuid.UUID, error)
}
