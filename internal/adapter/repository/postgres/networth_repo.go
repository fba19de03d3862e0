package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
)

// netWorthRepository implements domain.NetWorthRepository
type netWorthRepository struct {
	db *DB
}

// NewNetWorthRepository creates a new net worth repository
func NewNetWorthRepository(db *DB) domain.NetWorthRepository {
	return &netWorthRepository{db: db}
}

// Get retrieves the snapshot for (user, first-of-month date)
func (r *netWorthRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.NetWorthHistory, error) {
	query := `
		SELECT id, user_id, date, assets, liabilities, net_worth
		FROM net_worth_history
		WHERE user_id = $1 AND date = $2
	`

	var record domain.NetWorthHistory
	var assetsStr, liabilitiesStr, netWorthStr string

	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&record.ID,
		&record.UserID,
		&record.Date,
		&assetsStr,
		&liabilitiesStr,
		&netWorthStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get net worth record: %w", err)
	}

	if record.Assets, err = decimal.NewFromString(assetsStr); err != nil {
		return nil, fmt.Errorf("failed to parse assets: %w", err)
	}
	if record.Liabilities, err = decimal.NewFromString(liabilitiesStr); err != nil {
		return nil, fmt.Errorf("failed to parse liabilities: %w", err)
	}
	if record.NetWorth, err = decimal.NewFromString(netWorthStr); err != nil {
		return nil, fmt.Errorf("failed to parse net_worth: %w", err)
	}

	return &record, nil
}

// Upsert atomically inserts or overwrites the snapshot keyed by (user, date).
// The unique index on (user_id, date) plus ON CONFLICT DO UPDATE guarantees
// last-writer-wins under concurrent recomputation; a record is never left
// partially written.
func (r *netWorthRepository) Upsert(ctx context.Context, record *domain.NetWorthHistory) error {
	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO net_worth_history (id, user_id, date, assets, liabilities, net_worth)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date)
		DO UPDATE SET assets = EXCLUDED.assets,
		              liabilities = EXCLUDED.liabilities,
		              net_worth = EXCLUDED.net_worth
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Date,
		record.Assets.String(),
		record.Liabilities.String(),
		record.NetWorth.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert net worth record: %w", err)
	}
	return nil
}
