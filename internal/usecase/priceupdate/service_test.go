package priceupdate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*domain.Asset, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) ListBySymbol(ctx context.Context, symbol string) ([]*domain.Asset, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByWalletAndSymbol(ctx context.Context, walletID uuid.UUID, symbol string) (*domain.Asset, error) {
	args := m.Called(ctx, walletID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) SaveAll(ctx context.Context, assets []*domain.Asset) error {
	args := m.Called(ctx, assets)
	return args.Error(0)
}

func (m *MockAssetRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPriceHistoryRepository is a mock implementation of PriceHistoryRepository for testing
type MockPriceHistoryRepository struct {
	mock.Mock
}

func (m *MockPriceHistoryRepository) Append(ctx context.Context, entry *domain.PriceHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockPriceFetcher is a mock implementation of PriceFetcher for testing
type MockPriceFetcher struct {
	mock.Mock
}

func (m *MockPriceFetcher) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestRunCycle_Disabled(t *testing.T) {
	ctx := context.Background()
	mockAssets := new(MockAssetRepository)
	mockHistory := new(MockPriceHistoryRepository)
	mockPrices := new(MockPriceFetcher)

	service := NewPriceUpdateService(mockAssets, mockHistory, mockPrices, Config{Enabled: false})

	service.RunCycle(ctx)

	// A disabled cycle makes zero calls to any collaborator
	mockAssets.AssertNotCalled(t, "DistinctSymbols")
	mockHistory.AssertNotCalled(t, "Append")
	mockPrices.AssertNotCalled(t, "CurrentPrice")
}

func TestRunCycle_NoSymbols(t *testing.T) {
	ctx := context.Background()
	mockAssets := new(MockAssetRepository)
	mockHistory := new(MockPriceHistoryRepository)
	mockPrices := new(MockPriceFetcher)

	service := NewPriceUpdateService(mockAssets, mockHistory, mockPrices, Config{Enabled: true})

	mockAssets.On("DistinctSymbols", ctx).Return([]string{}, nil)

	service.RunCycle(ctx)

	mockPrices.AssertNotCalled(t, "CurrentPrice")
	mockHistory.AssertNotCalled(t, "Append")
}

func TestRunCycle_UpdatesAllAssetsHoldingSymbol(t *testing.T) {
	ctx := context.Background()
	mockAssets := new(MockAssetRepository)
	mockHistory := new(MockPriceHistoryRepository)
	mockPrices := new(MockPriceFetcher)

	service := NewPriceUpdateService(mockAssets, mockHistory, mockPrices, Config{Enabled: true})

	newPrice := decimal.RequireFromString("105.50")
	asset1 := &domain.Asset{ID: uuid.New(), Symbol: "BTC", Quantity: decimal.NewFromInt(1), CurrentPrice: decimal.NewFromInt(100)}
	asset2 := &domain.Asset{ID: uuid.New(), Symbol: "BTC", Quantity: decimal.NewFromInt(2), CurrentPrice: decimal.NewFromInt(100)}

	mockAssets.On("DistinctSymbols", ctx).Return([]string{"BTC"}, nil)
	mockPrices.On("CurrentPrice", ctx, "BTC").Return(newPrice, nil)
	mockHistory.On("Append", ctx, mock.MatchedBy(func(entry *domain.PriceHistory) bool {
		return entry.Symbol == "BTC" && entry.Price.Equal(newPrice)
	})).Return(nil)
	mockAssets.On("ListBySymbol", ctx, "BTC").Return([]*domain.Asset{asset1, asset2}, nil)
	mockAssets.On("SaveAll", ctx, mock.MatchedBy(func(assets []*domain.Asset) bool {
		return len(assets) == 2 &&
			assets[0].CurrentPrice.Equal(newPrice) &&
			assets[1].CurrentPrice.Equal(newPrice)
	})).Return(nil)

	service.RunCycle(ctx)

	mockAssets.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
	mockPrices.AssertExpectations(t)
}

func TestRunCycle_FailureIsolation(t *testing.T) {
	ctx := context.Background()
	mockAssets := new(MockAssetRepository)
	mockHistory := new(MockPriceHistoryRepository)
	mockPrices := new(MockPriceFetcher)

	service := NewPriceUpdateService(mockAssets, mockHistory, mockPrices, Config{Enabled: true})

	ethPrice := decimal.NewFromInt(3000)
	ethAsset := &domain.Asset{ID: uuid.New(), Symbol: "ETH", Quantity: decimal.NewFromInt(1), CurrentPrice: decimal.NewFromInt(2500)}

	mockAssets.On("DistinctSymbols", ctx).Return([]string{"BTC", "ETH"}, nil)

	// BTC's provider call fails; its history and assets stay untouched
	mockPrices.On("CurrentPrice", ctx, "BTC").
		Return(decimal.Zero, &domain.ProviderError{Err: errors.New("timeout")})

	// ETH succeeds and is fully updated
	mockPrices.On("CurrentPrice", ctx, "ETH").Return(ethPrice, nil)
	mockHistory.On("Append", ctx, mock.MatchedBy(func(entry *domain.PriceHistory) bool {
		return entry.Symbol == "ETH"
	})).Return(nil)
	mockAssets.On("ListBySymbol", ctx, "ETH").Return([]*domain.Asset{ethAsset}, nil)
	mockAssets.On("SaveAll", ctx, mock.MatchedBy(func(assets []*domain.Asset) bool {
		return len(assets) == 1 && assets[0].CurrentPrice.Equal(ethPrice)
	})).Return(nil)

	// The cycle completes without raising despite BTC's failure
	service.RunCycle(ctx)

	mockAssets.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
	mockPrices.AssertExpectations(t)
	mockAssets.AssertNotCalled(t, "ListBySymbol", ctx, "BTC")
}

func TestRunCycle_PersistenceFailureIsolation(t *testing.T) {
	ctx := context.Background()
	mockAssets := new(MockAssetRepository)
	mockHistory := new(MockPriceHistoryRepository)
	mockPrices := new(MockPriceFetcher)

	service := NewPriceUpdateService(mockAssets, mockHistory, mockPrices, Config{Enabled: true})

	mockAssets.On("DistinctSymbols", ctx).Return([]string{"BTC"}, nil)
	mockPrices.On("CurrentPrice", ctx, "BTC").Return(decimal.NewFromInt(100), nil)
	mockHistory.On("Append", ctx, mock.Anything).Return(errors.New("insert failed"))

	// A history write failure abandons the unit before touching assets
	service.RunCycle(ctx)

	mockAssets.AssertNotCalled(t, "ListBySymbol", ctx, "BTC")
	mockAssets.AssertNotCalled(t, "SaveAll")
}

// slowFetcher counts how many fetches run concurrently.
type slowFetcher struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	calls       atomic.Int64
}

func (f *slowFetcher) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	f.calls.Add(1)
	return decimal.NewFromInt(1), nil
}

func TestRunCycle_BoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	mockAssets := new(MockAssetRepository)
	mockHistory := new(MockPriceHistoryRepository)
	fetcher := &slowFetcher{}

	service := NewPriceUpdateService(mockAssets, mockHistory, fetcher, Config{Enabled: true, MaxWorkers: 2})

	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG", "HHH"}
	mockAssets.On("DistinctSymbols", ctx).Return(symbols, nil)
	mockHistory.On("Append", ctx, mock.Anything).Return(nil)
	mockAssets.On("ListBySymbol", ctx, mock.AnythingOfType("string")).Return([]*domain.Asset{}, nil)

	service.RunCycle(ctx)

	// RunCycle returns only after every unit has finished
	assert.Equal(t, int64(len(symbols)), fetcher.calls.Load())
	assert.LessOrEqual(t, fetcher.maxInFlight, 2)
}
