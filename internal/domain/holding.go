package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteUnit describes the unit the provider quotes a symbol in.
type QuoteUnit string

const (
	// QuoteUnitMajor means the provider quotes in the major currency unit
	// (dollars, euros). This is the default.
	QuoteUnitMajor QuoteUnit = "MAJOR"

	// QuoteUnitMinor means the provider quotes in the minor unit (pence,
	// cents), e.g. LSE symbols quoted in GBp. Values must be divided by 100
	// before aggregation.
	QuoteUnitMinor QuoteUnit = "MINOR"
)

// Holding is a position in a traded security, owned by a user (and, through
// shared-account membership, visible to all members of the account). The
// consolidated value of all holdings is mirrored into the synthetic
// portfolio asset — holdings themselves never enter net worth directly.
type Holding struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Symbol         string
	ProviderSymbol string // identifier at the quote provider; Symbol if empty
	Quantity       decimal.Decimal
	Currency       string
	QuoteUnit      QuoteUnit
}

// ProviderID returns the identifier to use against the quote provider.
func (h *Holding) ProviderID() string {
	if h.ProviderSymbol != "" {
		return h.ProviderSymbol
	}
	return h.Symbol
}

// Validate ensures the holding adheres to domain rules.
func (h *Holding) Validate() error {
	if h.Symbol == "" {
		return errors.New("holding symbol cannot be empty")
	}
	if h.UserID == uuid.Nil {
		return errors.New("holding must belong to a user")
	}
	if h.Quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("holding quantity must be positive")
	}
	if h.Currency == "" {
		return errors.New("holding currency cannot be empty")
	}
	if h.QuoteUnit != "" && h.QuoteUnit != QuoteUnitMajor && h.QuoteUnit != QuoteUnitMinor {
		return errors.New("quote unit must be MAJOR or MINOR")
	}
	return nil
}
