package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finvault/finvault-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new shared-account membership repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

// MemberIDs returns the IDs of every user in the same shared account as
// userID. A user may belong to at most one shared account; a user with none
// gets a single-element slice containing only their own ID.
func (r *accountRepository) MemberIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var accountID uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM account_members WHERE user_id = $1`, userID,
	).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []uuid.UUID{userID}, nil
		}
		return nil, fmt.Errorf("failed to look up shared account: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM account_members WHERE account_id = $1 ORDER BY user_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account members: %w", err)
	}
	defer rows.Close()

	members := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

// AllUserIDs returns every known user ID, for the batch backfill driver
func (r *accountRepository) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
