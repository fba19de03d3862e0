package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
	"github.com/finvault/finvault-backend/internal/logger"
)

// ErrAllQuotesFailed is returned when every holding's quote fetch failed.
// A portfolio with no live data must fail loudly rather than report zero.
var ErrAllQuotesFailed = errors.New("all holding quotes failed")

// unknownBeta is assumed for symbols the provider publishes no beta for:
// market-neutral rather than excluded from the weighted average.
const unknownBeta = 1.0

// Analyzer consolidates a shared account's holdings into a risk-scored
// portfolio snapshot. Quote fetches fan out concurrently; one failed holding
// is excluded from the aggregate without failing the rest.
type Analyzer struct {
	AccountRepo domain.AccountRepository
	HoldingRepo domain.HoldingRepository
	Provider    domain.QuoteProvider
	FX          *FXConverter

	BaseCurrency  string
	HistoryDays   int // trailing closes fetched per holding for sparklines
	MaxConcurrent int
}

// NewAnalyzer creates a new portfolio analyzer
func NewAnalyzer(
	accountRepo domain.AccountRepository,
	holdingRepo domain.HoldingRepository,
	provider domain.QuoteProvider,
	fx *FXConverter,
	baseCurrency string,
) *Analyzer {
	return &Analyzer{
		AccountRepo:   accountRepo,
		HoldingRepo:   holdingRepo,
		Provider:      provider,
		FX:            fx,
		BaseCurrency:  baseCurrency,
		HistoryDays:   30,
		MaxConcurrent: 5,
	}
}

// Analyze produces the consolidated portfolio snapshot for a user's shared
// account.
//
// Logic:
//  1. Fan out one quote fetch per holding (bounded concurrency), collecting
//     a per-holding result; failures exclude only that holding
//  2. Convert each holding's value to the base currency through the FX
//     fallback chain
//  3. Aggregate: weights, value-weighted beta, daily change, sector
//     allocation, HHI diversification score, risk level
//
// An empty portfolio returns an all-zero result with a neutral risk level,
// not an error. If every fetch failed, ErrAllQuotesFailed is returned.
func (a *Analyzer) Analyze(ctx context.Context, userID uuid.UUID) (*PortfolioAnalysis, error) {
	members, err := a.AccountRepo.MemberIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account members for %s: %w", userID, err)
	}

	holdings, err := a.HoldingRepo.ListByUsers(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	if len(holdings) == 0 {
		return a.emptyAnalysis(), nil
	}

	breakdowns, failed := a.fetchAll(ctx, holdings)
	if len(breakdowns) == 0 {
		return nil, fmt.Errorf("%w: %d holdings", ErrAllQuotesFailed, len(holdings))
	}

	return a.aggregate(breakdowns, failed), nil
}

// fetchAll issues the per-holding quote fetches concurrently and splits the
// results into successes and failed symbols.
func (a *Analyzer) fetchAll(ctx context.Context, holdings []*domain.Holding) ([]HoldingBreakdown, []string) {
	maxConcurrent := a.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	breakdowns := make([]HoldingBreakdown, 0, len(holdings))
	var failed []string

	for _, holding := range holdings {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			mu.Lock()
			failed = append(failed, holding.Symbol)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(h *domain.Holding) {
			defer wg.Done()
			defer func() { <-sem }()

			breakdown, err := a.fetchOne(ctx, h)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.L.Warn("quote fetch failed, excluding holding",
					"symbol", h.Symbol, "error", err)
				failed = append(failed, h.Symbol)
				return
			}
			breakdowns = append(breakdowns, *breakdown)
		}(holding)
	}

	wg.Wait()
	return breakdowns, failed
}

// fetchOne resolves one holding: live quote, minor-unit scaling, base
// currency conversion and the trailing price series for sparklines.
func (a *Analyzer) fetchOne(ctx context.Context, h *domain.Holding) (*HoldingBreakdown, error) {
	quote, err := a.Provider.Quote(ctx, h.ProviderID())
	if err != nil {
		return nil, err
	}

	price := quote.Price
	if h.QuoteUnit == domain.QuoteUnitMinor {
		// Quoted in the minor unit (e.g. LSE pence): scale to major units.
		price = price.Div(decimal.NewFromInt(100))
	}

	currency := quote.Currency
	if currency == "" {
		currency = h.Currency
	}

	value := price.Mul(h.Quantity)
	baseValue, rateSource := a.FX.Convert(ctx, value, currency, a.BaseCurrency)

	beta := unknownBeta
	if quote.HasBeta {
		beta = quote.Beta
	}

	// Sparklines are display sugar; a history failure never drops the holding.
	sparkline, err := a.Provider.History(ctx, h.ProviderID(), a.HistoryDays)
	if err != nil {
		logger.L.Debug("price history fetch failed", "symbol", h.Symbol, "error", err)
		sparkline = nil
	}

	return &HoldingBreakdown{
		Symbol:            h.Symbol,
		Quantity:          h.Quantity,
		Currency:          currency,
		Price:             price,
		Value:             value,
		BaseCurrencyValue: baseValue,
		Beta:              beta,
		Sector:            quote.Sector,
		ChangePercent:     quote.ChangePercent,
		RateSource:        rateSource,
		Sparkline:         sparkline,
	}, nil
}

// aggregate folds the per-holding breakdowns into the portfolio snapshot.
func (a *Analyzer) aggregate(breakdowns []HoldingBreakdown, failed []string) *PortfolioAnalysis {
	totalValue := decimal.Zero
	totalBase := decimal.Zero
	for _, b := range breakdowns {
		totalValue = totalValue.Add(b.Value)
		totalBase = totalBase.Add(b.BaseCurrencyValue)
	}

	weightedBeta := 0.0
	dailyChange := decimal.Zero
	for i := range breakdowns {
		b := &breakdowns[i]
		if totalBase.GreaterThan(decimal.Zero) {
			b.Weight, _ = b.BaseCurrencyValue.Div(totalBase).Float64()
		}
		weightedBeta += b.Beta * b.Weight
		dailyChange = dailyChange.Add(
			b.BaseCurrencyValue.Mul(decimal.NewFromFloat(b.ChangePercent / 100.0)))
	}

	dailyChangePercent := 0.0
	if totalBase.GreaterThan(decimal.Zero) {
		dailyChangePercent, _ = dailyChange.Div(totalBase).Mul(decimal.NewFromInt(100)).Float64()
	}

	sectors := sectorAllocations(breakdowns, totalBase)

	return &PortfolioAnalysis{
		BaseCurrency:           a.BaseCurrency,
		TotalValue:             totalValue,
		TotalValueBaseCurrency: totalBase,
		DailyChangeValue:       dailyChange.Round(2),
		DailyChangePercent:     dailyChangePercent,
		WeightedBeta:           weightedBeta,
		SectorAllocation:       sectors,
		DiversificationScore:   diversificationScore(sectors),
		RiskLevel:              riskLevelFor(weightedBeta),
		Holdings:               breakdowns,
		FailedSymbols:          failed,
	}
}

// emptyAnalysis is the neutral result for a user with no holdings.
func (a *Analyzer) emptyAnalysis() *PortfolioAnalysis {
	return &PortfolioAnalysis{
		BaseCurrency:           a.BaseCurrency,
		TotalValue:             decimal.Zero,
		TotalValueBaseCurrency: decimal.Zero,
		DailyChangeValue:       decimal.Zero,
		RiskLevel:              RiskModerate,
	}
}
