package amortization

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
)

// BalanceSource tags where a remaining-balance figure came from, so callers
// can distinguish a computed schedule value from a manual fallback.
type BalanceSource string

const (
	// SourceComputed means the balance was derived from the amortization schedule.
	SourceComputed BalanceSource = "COMPUTED"

	// SourceManualOverride means the user-entered remaining amount was used
	// because the liability has no usable schedule.
	SourceManualOverride BalanceSource = "MANUAL_OVERRIDE"

	// SourceOriginalAmount means the original principal was used because the
	// liability has neither a schedule nor a manual remaining amount.
	SourceOriginalAmount BalanceSource = "ORIGINAL_AMOUNT"
)

// RemainingBalance computes a liability's outstanding balance as of a date.
// Pure function, no I/O; defined for every date including far past/future.
//
// Logic:
//  1. No usable schedule (zero rate, zero term, or no start date) ->
//     fall back to the manual remaining amount, then the original principal
//  2. Loan not yet started as of the date -> full original principal
//  3. Loan past its term -> zero
//  4. Otherwise compute the schedule balance for the 1-indexed month the
//     date falls in (first disbursed month = 1)
//
// The result is rounded to 2 decimal places (round-half-away-from-zero) and
// clamped to [0, TotalAmount]. Rounding is applied once, to the final figure,
// so schedule balances reconcile with the closed-form annuity formula.
func RemainingBalance(l *domain.Liability, asOf time.Time) (decimal.Decimal, BalanceSource) {
	if !l.HasSchedule() {
		if l.RemainingAmount != nil {
			return l.RemainingAmount.Round(2), SourceManualOverride
		}
		return l.TotalAmount.Round(2), SourceOriginalAmount
	}

	// 1-indexed payment month: the month containing StartDate is month 1.
	currentMonth := domain.MonthsBetween(*l.StartDate, asOf) + 1

	if currentMonth < 1 {
		return l.TotalAmount.Round(2), SourceComputed
	}
	if currentMonth > l.LoanTermMonths {
		return decimal.Zero, SourceComputed
	}

	monthlyRate := l.InterestRate.Div(decimal.NewFromInt(1200)) // annual % -> monthly fraction

	var balance decimal.Decimal
	switch l.LoanMethod {
	case domain.LoanMethodEqualPrincipal:
		balance = equalPrincipalBalance(l.TotalAmount, l.LoanTermMonths, currentMonth)
	default:
		// Spitzer is the default when the method is unset.
		balance = spitzerBalance(l.TotalAmount, monthlyRate, l.LoanTermMonths, currentMonth)
	}

	return clamp(balance.Round(2), l.TotalAmount), SourceComputed
}

// spitzerBalance simulates a constant-payment (annuity) schedule forward
// from the original principal and returns the balance after `month` payments.
//
// The monthly payment is P * r * (1+r)^n / ((1+r)^n - 1). The power term is
// computed in float64 (decimal exponentiation is not worth the cost here)
// and the money arithmetic stays in decimal, unrounded until the caller
// rounds the final balance.
func spitzerBalance(total, monthlyRate decimal.Decimal, term, month int) decimal.Decimal {
	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = total.Div(decimal.NewFromInt(int64(term)))
	} else {
		rate, _ := monthlyRate.Float64()
		factor := math.Pow(1+rate, float64(term))
		payment = decimal.NewFromFloat(total.InexactFloat64() * rate * factor / (factor - 1))
	}

	balance := total
	for i := 0; i < month; i++ {
		interest := balance.Mul(monthlyRate)
		principalPaid := payment.Sub(interest)
		balance = balance.Sub(principalPaid)
		if balance.LessThan(decimal.Zero) {
			return decimal.Zero
		}
	}
	return balance
}

// equalPrincipalBalance returns the balance after `month` payments of a
// constant-principal schedule. Closed form, no simulation needed.
func equalPrincipalBalance(total decimal.Decimal, term, month int) decimal.Decimal {
	principalPerMonth := total.Div(decimal.NewFromInt(int64(term)))
	balance := total.Sub(principalPerMonth.Mul(decimal.NewFromInt(int64(month))))
	if balance.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return balance
}

// clamp keeps a rounded balance inside [0, total]; payoff arithmetic can
// legitimately overshoot by a rounding step.
func clamp(balance, total decimal.Decimal) decimal.Decimal {
	if balance.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if balance.GreaterThan(total) {
		return total
	}
	return balance
}
