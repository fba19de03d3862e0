package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NetWorthHistory is one user's net worth snapshot for one calendar month.
// Date is always midnight UTC on the first day of the month; exactly one
// record exists per (user, month).
type NetWorthHistory struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Date        time.Time
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	NetWorth    decimal.Decimal // Assets - Liabilities, always
}

// Validate ensures the snapshot adheres to domain rules.
// CRITICAL: NetWorth must equal Assets - Liabilities exactly, and Date must
// be normalized to the first of the month.
func (n *NetWorthHistory) Validate() error {
	if n.UserID == uuid.Nil {
		return errors.New("net worth record must belong to a user")
	}
	if n.Date.Day() != 1 {
		return errors.New("net worth record date must be the first day of a month")
	}
	if !n.NetWorth.Equal(n.Assets.Sub(n.Liabilities)) {
		return errors.New("net worth must equal assets minus liabilities")
	}
	return nil
}
