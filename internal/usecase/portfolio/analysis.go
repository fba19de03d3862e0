package portfolio

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finvault/finvault-backend/internal/domain"
)

// RiskLevel buckets a portfolio by its value-weighted beta.
type RiskLevel string

const (
	RiskConservative RiskLevel = "CONSERVATIVE" // beta < 0.8
	RiskModerate     RiskLevel = "MODERATE"     // 0.8 <= beta <= 1.2
	RiskAggressive   RiskLevel = "AGGRESSIVE"   // beta > 1.2
)

// SectorAllocation is the consolidated exposure to one sector.
type SectorAllocation struct {
	Sector  string
	Value   decimal.Decimal // base currency
	Percent float64
}

// HoldingBreakdown is the per-holding detail of an analysis.
type HoldingBreakdown struct {
	Symbol            string
	Quantity          decimal.Decimal
	Currency          string
	Price             decimal.Decimal // per unit, major currency units
	Value             decimal.Decimal // Price * Quantity, holding currency
	BaseCurrencyValue decimal.Decimal
	Weight            float64 // share of the base-currency total
	Beta              float64
	Sector            string
	ChangePercent     float64
	RateSource        RateSource
	Sparkline         []domain.PricePoint
}

// PortfolioAnalysis is the consolidated, risk-scored view of all holdings.
//
// TotalValue is the naive sum of per-holding native values and is only
// meaningful when every holding shares one currency; TotalValueBaseCurrency
// is the consolidated figure everything downstream (weights, the synthetic
// asset, net worth) is built on.
type PortfolioAnalysis struct {
	BaseCurrency           string
	TotalValue             decimal.Decimal
	TotalValueBaseCurrency decimal.Decimal
	DailyChangeValue       decimal.Decimal // base currency
	DailyChangePercent     float64
	WeightedBeta           float64
	SectorAllocation       []SectorAllocation
	DiversificationScore   float64 // 0..100
	RiskLevel              RiskLevel
	Holdings               []HoldingBreakdown
	FailedSymbols          []string // holdings excluded by quote failures
}

// riskLevelFor maps a weighted beta to its risk bucket.
func riskLevelFor(beta float64) RiskLevel {
	switch {
	case beta < 0.8:
		return RiskConservative
	case beta > 1.2:
		return RiskAggressive
	default:
		return RiskModerate
	}
}

// diversificationScore combines sector breadth and concentration into a
// 0-100 score: min(sectorCount/8, 1)*40 + (1 - HHI)*60, where HHI is the
// Herfindahl-Hirschman index over sector weights. More sectors and lower
// concentration both raise the score.
func diversificationScore(sectors []SectorAllocation) float64 {
	if len(sectors) == 0 {
		return 0
	}

	breadth := math.Min(float64(len(sectors))/8.0, 1.0)

	hhi := 0.0
	for _, s := range sectors {
		share := s.Percent / 100.0
		hhi += share * share
	}

	return breadth*40.0 + (1.0-hhi)*60.0
}

// sectorAllocations groups holdings by sector and computes each sector's
// share of the base-currency total, largest first.
func sectorAllocations(holdings []HoldingBreakdown, total decimal.Decimal) []SectorAllocation {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	bySector := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = "Unclassified"
		}
		bySector[sector] = bySector[sector].Add(h.BaseCurrencyValue)
	}

	sectors := make([]SectorAllocation, 0, len(bySector))
	for sector, value := range bySector {
		percent, _ := value.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		sectors = append(sectors, SectorAllocation{
			Sector:  sector,
			Value:   value,
			Percent: percent,
		})
	}

	sort.Slice(sectors, func(i, j int) bool {
		if sectors[i].Value.Equal(sectors[j].Value) {
			return sectors[i].Sector < sectors[j].Sector
		}
		return sectors[i].Value.GreaterThan(sectors[j].Value)
	})
	return sectors
}
