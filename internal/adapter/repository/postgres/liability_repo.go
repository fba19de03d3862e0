package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
)

// liabilityRepository implements domain.LiabilityRepository
type liabilityRepository struct {
	db *DB
}

// NewLiabilityRepository creates a new liability repository
func NewLiabilityRepository(db *DB) domain.LiabilityRepository {
	return &liabilityRepository{db: db}
}

// ListByUsers retrieves every liability owned by any of the given users
func (r *liabilityRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*domain.Liability, error) {
	query := `
		SELECT id, user_id, name, total_amount, interest_rate, loan_term_months,
		       start_date, remaining_amount, loan_method
		FROM liabilities
		WHERE user_id = ANY($1)
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(userIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	liabilities := make([]*domain.Liability, 0)
	for rows.Next() {
		liability, err := scanLiability(rows)
		if err != nil {
			return nil, err
		}
		liabilities = append(liabilities, liability)
	}
	return liabilities, rows.Err()
}

// scanLiability maps one row onto the domain entity, handling the nullable
// start date, remaining amount and loan method columns.
func scanLiability(rows *sql.Rows) (*domain.Liability, error) {
	var liability domain.Liability
	var totalStr string
	var rateStr sql.NullString
	var termMonths sql.NullInt64
	var startDate sql.NullTime
	var remainingStr sql.NullString
	var loanMethod sql.NullString

	err := rows.Scan(
		&liability.ID,
		&liability.UserID,
		&liability.Name,
		&totalStr,
		&rateStr,
		&termMonths,
		&startDate,
		&remainingStr,
		&loanMethod,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan liability: %w", err)
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_amount: %w", err)
	}
	liability.TotalAmount = total

	// Unknown interest rate is stored as NULL and surfaces as zero.
	liability.InterestRate = decimal.Zero
	if rateStr.Valid {
		rate, err := decimal.NewFromString(rateStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse interest_rate: %w", err)
		}
		liability.InterestRate = rate
	}

	if termMonths.Valid {
		liability.LoanTermMonths = int(termMonths.Int64)
	}
	if startDate.Valid {
		t := startDate.Time
		liability.StartDate = &t
	}
	if remainingStr.Valid {
		remaining, err := decimal.NewFromString(remainingStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse remaining_amount: %w", err)
		}
		liability.RemainingAmount = &remaining
	}
	if loanMethod.Valid {
		liability.LoanMethod = domain.LoanMethod(loanMethod.String)
	}

	return &liability, nil
}
