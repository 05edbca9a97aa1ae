package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wooshnp/crypto-wallet-management/internal/adapter/coincap"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// newServiceWithCachedID builds a PricingService whose resolver already
// knows the symbol, so tests only mock the calls under test.
func newServiceWithCachedID(client *MockAssetClient, symbol, id string) *PricingService {
	resolver := NewResolver(client)
	resolver.ids[domain.NormalizeSymbol(symbol)] = id
	return NewPricingService(client, resolver)
}

func TestCurrentPrice_Success(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAsset", ctx, "bitcoin").Return(&coincap.Asset{
		ID: "bitcoin", Symbol: "BTC", PriceUsd: "50000.12",
	}, nil)

	price, err := service.CurrentPrice(ctx, "BTC")

	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("50000.12")))
	mockClient.AssertExpectations(t)
}

func TestValidateAssetPrice_DivergentProvidedPriceStillSucceeds(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAsset", ctx, "bitcoin").Return(&coincap.Asset{
		ID: "bitcoin", Symbol: "BTC", PriceUsd: "100",
	}, nil)

	// 50 is far outside the 5% tolerance band around 100; the
	// divergence is advisory only and must not fail the call.
	provided := decimal.NewFromInt(50)
	price, err := service.ValidateAssetPrice(ctx, "BTC", &provided)

	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestValidateAssetPrice_NotFound(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "XYZ", "xyz")

	mockClient.On("GetAsset", ctx, "xyz").Return(nil, domain.ErrAssetNotFound)

	_, err := service.ValidateAssetPrice(ctx, "XYZ", nil)

	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestValidateAssetPrice_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAsset", ctx, "bitcoin").
		Return(nil, &domain.ProviderError{Err: errors.New("timeout")})

	_, err := service.ValidateAssetPrice(ctx, "BTC", nil)

	var providerErr *domain.ProviderError
	assert.True(t, errors.As(err, &providerErr))
}

func TestValidateAssetPrice_UnparsablePrice(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAsset", ctx, "bitcoin").Return(&coincap.Asset{
		ID: "bitcoin", Symbol: "BTC", PriceUsd: "not-a-number",
	}, nil)

	_, err := service.ValidateAssetPrice(ctx, "BTC", nil)

	var providerErr *domain.ProviderError
	assert.True(t, errors.As(err, &providerErr))
}

func TestValidateAssetPrice_NonPositivePrice(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAsset", ctx, "bitcoin").Return(&coincap.Asset{
		ID: "bitcoin", Symbol: "BTC", PriceUsd: "0",
	}, nil)

	_, err := service.ValidateAssetPrice(ctx, "BTC", nil)

	var providerErr *domain.ProviderError
	assert.True(t, errors.As(err, &providerErr))
}

func TestHistoricalPrice_UsesUTCDayWindow(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	// 2024-01-01 UTC: [1704067200000, 1704153600000) at daily granularity
	mockClient.On("GetAssetHistory", ctx, "bitcoin", coincap.IntervalD1,
		int64(1704067200000), int64(1704153600000)).
		Return([]coincap.HistoryPoint{
			{PriceUsd: "42000.55", Time: 1704067200000},
			{PriceUsd: "43000.00", Time: 1704070800000},
		}, nil)

	date := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	price, err := service.HistoricalPrice(ctx, "BTC", date)

	require.NoError(t, err)
	// First data point of the window wins
	assert.True(t, price.Equal(decimal.RequireFromString("42000.55")))
	mockClient.AssertExpectations(t)
}

func TestHistoricalPrice_EmptyHistoryIsNotFound(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAssetHistory", ctx, "bitcoin", coincap.IntervalD1,
		mock.AnythingOfType("int64"), mock.AnythingOfType("int64")).
		Return([]coincap.HistoryPoint{}, nil)

	_, err := service.HistoricalPrice(ctx, "BTC", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, err, domain.ErrNoHistory)
}

func TestHistoricalPrice_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockAssetClient)
	service := newServiceWithCachedID(mockClient, "BTC", "bitcoin")

	mockClient.On("GetAssetHistory", ctx, "bitcoin", coincap.IntervalD1,
		mock.AnythingOfType("int64"), mock.AnythingOfType("int64")).
		Return(nil, &domain.ProviderError{Err: errors.New("bad gateway")})

	_, err := service.HistoricalPrice(ctx, "BTC", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var providerErr *domain.ProviderError
	assert.True(t, errors.As(err, &providerErr))
}
