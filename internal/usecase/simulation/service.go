package simulation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// performanceScale is the number of fractional digits carried through
// the division before the result is rounded to two decimal places.
const performanceScale = 10

var hundred = decimal.NewFromInt(100)

// PriceService supplies current and historical prices for a symbol.
// Implemented by pricing.PricingService.
type PriceService interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	HistoricalPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error)
}

// AssetInput is one position in a simulated portfolio. Value is the
// user-declared original value; whether it must be present or absent
// depends on the service's baseline mode.
type AssetInput struct {
	Symbol   string
	Quantity decimal.Decimal
	Value    *decimal.Decimal
}

// Result is the outcome of a portfolio simulation. It is never
// persisted. Performance percentages are rounded to two decimal places.
type Result struct {
	TotalValue       decimal.Decimal
	BestAsset        string
	BestPerformance  decimal.Decimal
	WorstAsset       string
	WorstPerformance decimal.Decimal
}

// SimulationService computes portfolio performance from a past date to
// the present. Pure computation over price lookups; it touches no
// persisted state.
type SimulationService struct {
	Prices PriceService

	// UseMarketPrice selects the baseline mode: when true the baseline
	// is the market price on the simulation date and inputs must not
	// declare a value; when false inputs must declare one.
	UseMarketPrice bool

	now func() time.Time
}

// NewSimulationService creates a new SimulationService instance
func NewSimulationService(prices PriceService, useMarketPrice bool) *SimulationService {
	return &SimulationService{
		Prices:         prices,
		UseMarketPrice: useMarketPrice,
		now:            time.Now,
	}
}

// Simulate values the given positions as of date and reports the total
// current value along with the best and worst performing assets. On an
// exact performance tie, the first asset in input order wins for both
// best and worst.
func (s *SimulationService) Simulate(ctx context.Context, date time.Time, assets []AssetInput) (*Result, error) {
	log.Printf("simulating portfolio performance from date %s (useMarketPrice=%t)", date.Format(time.DateOnly), s.UseMarketPrice)

	today := startOfDayUTC(s.now())
	day := startOfDayUTC(date)
	if day.After(today) {
		return nil, &domain.ValidationError{Reason: "simulation date cannot be in the future"}
	}
	if len(assets) == 0 {
		return nil, &domain.ValidationError{Reason: "at least one asset is required"}
	}

	total := decimal.Zero
	var result Result
	for i, input := range assets {
		if err := s.validateInput(input); err != nil {
			return nil, err
		}

		perf, err := s.assetPerformance(ctx, input, day, day.Equal(today))
		if err != nil {
			return nil, err
		}

		total = total.Add(perf.currentValue)
		if i == 0 || perf.percentage.GreaterThan(result.BestPerformance) {
			result.BestAsset = perf.symbol
			result.BestPerformance = perf.percentage
		}
		if i == 0 || perf.percentage.LessThan(result.WorstPerformance) {
			result.WorstAsset = perf.symbol
			result.WorstPerformance = perf.percentage
		}
	}

	result.TotalValue = total.Round(2)

	log.Printf("simulation complete - total: $%s, best: %s (%s%%), worst: %s (%s%%)",
		result.TotalValue, result.BestAsset, result.BestPerformance, result.WorstAsset, result.WorstPerformance)

	return &result, nil
}

// validateInput enforces the baseline mode and the strictly-positive
// quantity/value preconditions.
func (s *SimulationService) validateInput(input AssetInput) error {
	if domain.NormalizeSymbol(input.Symbol) == "" {
		return &domain.ValidationError{Reason: "asset symbol cannot be empty"}
	}
	if !input.Quantity.IsPositive() {
		return &domain.ValidationError{Reason: fmt.Sprintf("quantity for %s must be positive", input.Symbol)}
	}
	if s.UseMarketPrice && input.Value != nil {
		return &domain.ValidationError{
			Reason: "cannot provide value when simulation is configured to use market prices",
		}
	}
	if !s.UseMarketPrice {
		if input.Value == nil {
			return &domain.ValidationError{
				Reason: "must provide value when simulation is configured for manual pricing",
			}
		}
		if !input.Value.IsPositive() {
			return &domain.ValidationError{Reason: fmt.Sprintf("value for %s must be positive", input.Symbol)}
		}
	}
	return nil
}

type performance struct {
	symbol       string
	currentValue decimal.Decimal
	percentage   decimal.Decimal
}

// assetPerformance computes one position's current value and its
// percentage change against the baseline.
func (s *SimulationService) assetPerformance(ctx context.Context, input AssetInput, day time.Time, isToday bool) (performance, error) {
	symbol := domain.NormalizeSymbol(input.Symbol)

	var baseline decimal.Decimal
	if s.UseMarketPrice {
		historicalPrice, err := s.Prices.HistoricalPrice(ctx, symbol, day)
		if err != nil {
			return performance{}, err
		}
		baseline = historicalPrice.Mul(input.Quantity)
	} else {
		baseline = *input.Value
	}

	var price decimal.Decimal
	var err error
	if isToday {
		price, err = s.Prices.CurrentPrice(ctx, symbol)
	} else {
		price, err = s.Prices.HistoricalPrice(ctx, symbol, day)
	}
	if err != nil {
		return performance{}, err
	}

	currentValue := price.Mul(input.Quantity)

	// ((currentValue - baseline) / baseline) * 100, division carried at
	// 10 fractional digits, result rounded half-up to 2 places.
	percentage := currentValue.Sub(baseline).
		DivRound(baseline, performanceScale).
		Mul(hundred).
		Round(2)

	return performance{
		symbol:       symbol,
		currentValue: currentValue,
		percentage:   percentage,
	}, nil
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
