package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a live snapshot for one symbol as returned by the quote provider.
// Beta and Sector come from the provider's fundamentals; HasBeta is false
// when the provider does not publish a beta for the symbol (ETFs, bonds),
// in which case analytics assume a market-neutral 1.0.
type Quote struct {
	Symbol        string
	Price         decimal.Decimal
	Currency      string
	Beta          float64
	HasBeta       bool
	Sector        string
	ChangePercent float64 // day change, percent
}

// PricePoint is one closing price in a trailing history series.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// QuoteProvider is the external market-data service. It is treated as
// unreliable: every call carries the caller's context deadline and may fail
// for individual symbols while others succeed.
type QuoteProvider interface {
	// Quote fetches the live quote, sector and beta for a symbol.
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// History fetches up to days trailing daily closes, oldest first.
	History(ctx context.Context, symbol string, days int) ([]PricePoint, error)

	// FXRate fetches the conversion rate from one currency to another
	// (multiply an amount in `from` by the rate to get `to`).
	FXRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}
