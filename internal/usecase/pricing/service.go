package pricing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wooshnp/crypto-wallet-management/internal/adapter/coincap"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// priceTolerance is the fraction of the quoted price beyond which a
// user-provided price is considered divergent. Divergence is advisory
// only: it is logged, never rejected.
var priceTolerance = decimal.RequireFromString("0.05")

// PricingService fetches current and historical USD prices for asset
// symbols from CoinCap
type PricingService struct {
	client   AssetClient
	resolver *Resolver
}

// NewPricingService creates a new PricingService instance
func NewPricingService(client AssetClient, resolver *Resolver) *PricingService {
	return &PricingService{
		client:   client,
		resolver: resolver,
	}
}

// ValidateAssetPrice checks that an asset exists on CoinCap and returns
// its current USD price. If provided is non-nil and diverges from the
// quote by more than 5%, a warning is logged but the call still succeeds.
// Returns domain.ErrAssetNotFound if the symbol does not exist on
// CoinCap, or a domain.ProviderError on any other upstream failure.
func (s *PricingService) ValidateAssetPrice(ctx context.Context, symbol string, provided *decimal.Decimal) (decimal.Decimal, error) {
	id := s.resolver.Resolve(ctx, symbol)

	asset, err := s.client.GetAsset(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch price for %s: %w", symbol, err)
	}

	price, err := decimal.NewFromString(asset.PriceUsd)
	if err != nil {
		return decimal.Zero, &domain.ProviderError{Err: fmt.Errorf("parse priceUsd %q for %s: %w", asset.PriceUsd, symbol, err)}
	}
	if !price.IsPositive() {
		return decimal.Zero, &domain.ProviderError{Err: fmt.Errorf("non-positive price %s for %s", price, symbol)}
	}

	if provided != nil {
		tolerance := price.Mul(priceTolerance)
		difference := price.Sub(*provided).Abs()
		if difference.GreaterThan(tolerance) {
			log.Printf("price mismatch for %s: provided=%s, actual=%s", symbol, provided, price)
		}
	}

	return price, nil
}

// CurrentPrice returns the current USD price for a symbol.
func (s *PricingService) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return s.ValidateAssetPrice(ctx, symbol, nil)
}

// HistoricalPrice returns the USD price for a symbol on a given date.
// The lookup covers the UTC day window [startOfDay, startOfDay+24h) at
// daily granularity and takes the first data point. Returns
// domain.ErrNoHistory if CoinCap has no data for that window.
func (s *PricingService) HistoricalPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	date = date.UTC()
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	id := s.resolver.Resolve(ctx, symbol)

	points, err := s.client.GetAssetHistory(ctx, id, coincap.IntervalD1, startOfDay.UnixMilli(), endOfDay.UnixMilli())
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch historical price for %s on %s: %w", symbol, startOfDay.Format(time.DateOnly), err)
	}
	if len(points) == 0 {
		return decimal.Zero, fmt.Errorf("no price data for %s on %s: %w", symbol, startOfDay.Format(time.DateOnly), domain.ErrNoHistory)
	}

	price, err := decimal.NewFromString(points[0].PriceUsd)
	if err != nil {
		return decimal.Zero, &domain.ProviderError{Err: fmt.Errorf("parse priceUsd %q for %s: %w", points[0].PriceUsd, symbol, err)}
	}
	if !price.IsPositive() {
		return decimal.Zero, &domain.ProviderError{Err: fmt.Errorf("non-positive price %s for %s", price, symbol)}
	}

	return price, nil
}
