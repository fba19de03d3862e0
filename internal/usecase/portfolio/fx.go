package portfolio

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/cache"
	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/logger"
)

// RateSource tags where an FX conversion rate came from, so downgraded
// figures stay observable instead of being silently coalesced.
type RateSource string

const (
	// RateSourceIdentity: no conversion was needed.
	RateSourceIdentity RateSource = "IDENTITY"

	// RateSourceLive: fetched from the provider on this call.
	RateSourceLive RateSource = "LIVE"

	// RateSourceCached: served from the cache inside its TTL.
	RateSourceCached RateSource = "CACHED"

	// RateSourceStale: the provider failed; the last known rate was reused
	// past its TTL.
	RateSourceStale RateSource = "STALE"

	// RateSourceDefault: the provider failed and no rate was ever cached;
	// a conservative 1.0 was assumed.
	RateSourceDefault RateSource = "DEFAULT"
)

// defaultRate is the hardcoded conservative fallback when no rate is known.
var defaultRate = decimal.NewFromInt(1)

// FXConverter resolves conversion rates through an ordered fallback chain:
// fresh cache -> live fetch -> stale cache -> hardcoded default. It never
// returns an error; a degraded source is reported instead so the UI can keep
// rendering last-known-good figures.
type FXConverter struct {
	Provider domain.QuoteProvider
	Cache    *cache.RateCache
}

// NewFXConverter creates a new FX converter backed by the given rate cache.
func NewFXConverter(provider domain.QuoteProvider, rateCache *cache.RateCache) *FXConverter {
	return &FXConverter{Provider: provider, Cache: rateCache}
}

// Rate returns the conversion rate from one currency to another and the
// source it was resolved from.
func (f *FXConverter) Rate(ctx context.Context, from, to string) (decimal.Decimal, RateSource) {
	if from == to {
		return decimal.NewFromInt(1), RateSourceIdentity
	}

	pair := from + to
	if rate, ok := f.Cache.Get(pair); ok {
		return rate, RateSourceCached
	}

	rate, err := f.Provider.FXRate(ctx, from, to)
	if err == nil && rate.GreaterThan(decimal.Zero) {
		f.Cache.Put(pair, rate)
		return rate, RateSourceLive
	}

	if stale, ok := f.Cache.GetStale(pair); ok {
		logger.L.Warn("FX fetch failed, using stale rate", "pair", pair, "error", err)
		return stale, RateSourceStale
	}

	logger.L.Warn("FX fetch failed with no cached rate, assuming 1.0", "pair", pair, "error", err)
	return defaultRate, RateSourceDefault
}

// Convert converts an amount between currencies, reporting the rate source.
func (f *FXConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, RateSource) {
	rate, source := f.Rate(ctx, from, to)
	return amount.Mul(rate), source
}
