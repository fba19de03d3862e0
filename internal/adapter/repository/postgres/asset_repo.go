package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `
		SELECT id, user_id, name, category, value
		FROM assets
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a user's asset by its exact name
func (r *assetRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Asset, error) {
	query := `
		SELECT id, user_id, name, category, value
		FROM assets
		WHERE user_id = $1 AND name = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, name))
}

// ListByUsers retrieves every asset owned by any of the given users
func (r *assetRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*domain.Asset, error) {
	query := `
		SELECT id, user_id, name, category, value
		FROM assets
		WHERE user_id = ANY($1)
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(userIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		var asset domain.Asset
		var valueStr string

		if err := rows.Scan(&asset.ID, &asset.UserID, &asset.Name, &asset.Category, &valueStr); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}

		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse asset value: %w", err)
		}
		asset.Value = value

		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, user_id, name, category, value)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.UserID,
		asset.Name,
		asset.Category,
		asset.Value.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// UpdateValue overwrites an asset's current live value
func (r *assetRepository) UpdateValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	query := `
		UPDATE assets SET value = $2 WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, value.String())
	if err != nil {
		return fmt.Errorf("failed to update asset value: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanOne scans a single asset row, mapping sql.ErrNoRows to domain.ErrNotFound
func (r *assetRepository) scanOne(row *sql.Row) (*domain.Asset, error) {
	var asset domain.Asset
	var valueStr string

	err := row.Scan(&asset.ID, &asset.UserID, &asset.Name, &asset.Category, &valueStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse asset value: %w", err)
	}
	asset.Value = value

	return &asset, nil
}

// uuidStrings converts UUIDs to their string form for pq.Array binding.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
