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

// assetValueHistoryRepository implements domain.AssetValueHistoryRepository
type assetValueHistoryRepository struct {
	db *DB
}

// NewAssetValueHistoryRepository creates a new asset value history repository
func NewAssetValueHistoryRepository(db *DB) domain.AssetValueHistoryRepository {
	return &assetValueHistoryRepository{db: db}
}

// Get retrieves the value an asset had during the given month
func (r *assetValueHistoryRepository) Get(ctx context.Context, assetID uuid.UUID, month domain.MonthKey) (*domain.AssetValueHistory, error) {
	query := `
		SELECT id, asset_id, month_key, value, recorded_at
		FROM asset_value_history
		WHERE asset_id = $1 AND month_key = $2
	`

	var entry domain.AssetValueHistory
	var valueStr string

	err := r.db.QueryRowContext(ctx, query, assetID, string(month)).Scan(
		&entry.ID,
		&entry.AssetID,
		&entry.MonthKey,
		&valueStr,
		&entry.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset value history: %w", err)
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse historical value: %w", err)
	}
	entry.Value = value

	return &entry, nil
}

// Upsert writes the value for (asset, month), overwriting any existing record
// for the same month. The unique index on (asset_id, month_key) is the
// correctness mechanism, not application-level locking.
func (r *assetValueHistoryRepository) Upsert(ctx context.Context, entry *domain.AssetValueHistory) error {
	query := `
		INSERT INTO asset_value_history (id, asset_id, month_key, value, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id, month_key)
		DO UPDATE SET value = EXCLUDED.value, recorded_at = EXCLUDED.recorded_at
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.AssetID,
		string(entry.MonthKey),
		entry.Value.String(),
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert asset value history: %w", err)
	}
	return nil
}

// DistinctMonths returns every month key with at least one history record for
// any asset owned by the given users, ordered oldest first
func (r *assetValueHistoryRepository) DistinctMonths(ctx context.Context, userIDs []uuid.UUID) ([]domain.MonthKey, error) {
	query := `
		SELECT DISTINCT h.month_key
		FROM asset_value_history h
		JOIN assets a ON a.id = h.asset_id
		WHERE a.user_id = ANY($1)
		ORDER BY h.month_key
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(userIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to list history months: %w", err)
	}
	defer rows.Close()

	months := make([]domain.MonthKey, 0)
	for rows.Next() {
		var month domain.MonthKey
		if err := rows.Scan(&month); err != nil {
			return nil, fmt.Errorf("failed to scan month key: %w", err)
		}
		months = append(months, month)
	}
	return months, rows.Err()
}
