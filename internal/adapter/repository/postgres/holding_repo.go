package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// ListByUsers retrieves every holding owned by any of the given users
func (r *holdingRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT id, user_id, symbol, provider_symbol, quantity, currency, quote_unit
		FROM holdings
		WHERE user_id = ANY($1)
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(userIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]*domain.Holding, 0)
	for rows.Next() {
		var holding domain.Holding
		var quantityStr string

		err := rows.Scan(
			&holding.ID,
			&holding.UserID,
			&holding.Symbol,
			&holding.ProviderSymbol,
			&quantityStr,
			&holding.Currency,
			&holding.QuoteUnit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		quantity, err := decimal.NewFromString(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holding quantity: %w", err)
		}
		holding.Quantity = quantity

		holdings = append(holdings, &holding)
	}
	return holdings, rows.Err()
}
