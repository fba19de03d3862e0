package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanMethod is the amortization method of a liability.
type LoanMethod string

const (
	// LoanMethodSpitzer is the constant-payment (annuity) method: the total
	// payment is the same every month, the interest/principal mix shifts.
	LoanMethodSpitzer LoanMethod = "SPITZER"

	// LoanMethodEqualPrincipal pays a constant principal portion every month;
	// the total payment decreases over time.
	LoanMethodEqualPrincipal LoanMethod = "EQUAL_PRINCIPAL"
)

// Liability represents a debt: a mortgage, car loan, or a manually tracked
// interest-free loan.
//
// InterestRate is the annual rate in percent; zero means "unknown" and the
// amortization schedule cannot be computed — RemainingAmount (or
// TotalAmount) is used directly instead. RemainingAmount is a manual
// override entered by the user; nil when the balance should be computed.
type Liability struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Name            string
	TotalAmount     decimal.Decimal // original principal
	InterestRate    decimal.Decimal // annual %, zero = unknown
	LoanTermMonths  int
	StartDate       *time.Time
	RemainingAmount *decimal.Decimal
	LoanMethod      LoanMethod
}

// HasSchedule reports whether the liability carries enough information to
// compute an amortization schedule.
func (l *Liability) HasSchedule() bool {
	return l.InterestRate.GreaterThan(decimal.Zero) &&
		l.LoanTermMonths > 0 &&
		l.StartDate != nil
}

// Validate ensures the liability adheres to domain rules.
func (l *Liability) Validate() error {
	if l.Name == "" {
		return errors.New("liability name cannot be empty")
	}
	if l.UserID == uuid.Nil {
		return errors.New("liability must belong to a user")
	}
	if l.TotalAmount.LessThan(decimal.Zero) {
		return errors.New("liability total amount cannot be negative")
	}
	if l.LoanMethod != "" && l.LoanMethod != LoanMethodSpitzer && l.LoanMethod != LoanMethodEqualPrincipal {
		return errors.New("loan method must be SPITZER or EQUAL_PRINCIPAL")
	}
	if l.RemainingAmount != nil {
		if l.RemainingAmount.LessThan(decimal.Zero) || l.RemainingAmount.GreaterThan(l.TotalAmount) {
			return errors.New("remaining amount must be between zero and the total amount")
		}
	}
	return nil
}
