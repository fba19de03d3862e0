package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyntheticPortfolioAssetName is the reserved name of the asset that mirrors
// the consolidated investment portfolio value. It is exclusively owned and
// written by the portfolio sync service and must never be edited directly.
const SyntheticPortfolioAssetName = "Investment Portfolio (Synced)"

// Asset represents something a user owns: cash, property, a car, or the
// synthetic portfolio-sync asset.
type Asset struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Name     string
	Category string
	Value    decimal.Decimal // current live value, base currency
}

// IsSyntheticPortfolio reports whether this asset is the reserved
// portfolio-sync asset.
func (a *Asset) IsSyntheticPortfolio() bool {
	return a.Name == SyntheticPortfolioAssetName
}

// Validate ensures the asset adheres to domain rules.
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	if a.UserID == uuid.Nil {
		return errors.New("asset must belong to a user")
	}
	return nil
}

// AssetValueHistory records the value an asset had during one calendar month.
// At most one record exists per (asset, month); a record is written only when
// the value actually changed, not on every request.
type AssetValueHistory struct {
	ID         uuid.UUID
	AssetID    uuid.UUID
	MonthKey   MonthKey
	Value      decimal.Decimal
	RecordedAt time.Time
}

// Validate ensures the history entry adheres to domain rules.
func (h *AssetValueHistory) Validate() error {
	if h.AssetID == uuid.Nil {
		return errors.New("asset value history must reference an asset")
	}
	return h.MonthKey.Validate()
}
