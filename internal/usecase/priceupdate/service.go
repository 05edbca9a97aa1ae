package priceupdate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

const (
	defaultInterval   = time.Minute
	defaultMaxWorkers = 3
)

// PriceFetcher supplies the current USD price for a symbol.
// Implemented by pricing.PricingService.
type PriceFetcher interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Config controls the scheduled price refresh.
type Config struct {
	// Enabled turns the scheduled refresh on or off. When off, a cycle
	// is a no-op with no side effects.
	Enabled bool

	// Interval is the delay between refresh cycles.
	Interval time.Duration

	// MaxWorkers bounds the number of symbols refreshed concurrently.
	MaxWorkers int
}

// PriceUpdateService periodically refreshes the price of every distinct
// symbol held across all wallets. Each symbol is refreshed as an
// independent unit of work; a failure in one unit never affects another.
type PriceUpdateService struct {
	Assets  domain.AssetRepository
	History domain.PriceHistoryRepository
	Prices  PriceFetcher

	cfg Config
	sem chan struct{} // bounds concurrent per-symbol units
}

// NewPriceUpdateService creates a new PriceUpdateService instance.
// Non-positive config values fall back to defaults.
func NewPriceUpdateService(assets domain.AssetRepository, history domain.PriceHistoryRepository, prices PriceFetcher, cfg Config) *PriceUpdateService {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	return &PriceUpdateService{
		Assets:  assets,
		History: history,
		Prices:  prices,
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.MaxWorkers),
	}
}

// Start launches the periodic refresh loop and returns a cancel func
// that stops it. Cycles run synchronously inside the loop, so a tick
// that fires while a cycle is still draining is coalesced rather than
// starting a second concurrent cycle.
func (s *PriceUpdateService) Start(ctx context.Context) (cancel func()) {
	ctx, cancel = context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunCycle(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}

// RunCycle refreshes prices for all distinct symbols once. It returns
// only after every submitted unit has finished, success or failure.
// Per-symbol errors are logged and swallowed; they never abort the
// cycle or other units.
func (s *PriceUpdateService) RunCycle(ctx context.Context) {
	if !s.cfg.Enabled {
		return
	}

	log.Println("starting scheduled price update")

	symbols, err := s.Assets.DistinctSymbols(ctx)
	if err != nil {
		log.Printf("failed to list distinct symbols: %v", err)
		return
	}
	if len(symbols) == 0 {
		log.Println("no assets found, skipping price update")
		return
	}

	log.Printf("found %d unique symbols to update", len(symbols))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			s.sem <- struct{}{}
			defer func() { <-s.sem }()

			if err := s.updateSymbol(ctx, symbol); err != nil {
				log.Printf("failed to update price for %s: %v", symbol, err)
			}
		}(symbol)
	}
	wg.Wait()

	log.Printf("completed price update for %d symbols", len(symbols))
}

// updateSymbol refreshes one symbol: fetch the current price, append a
// history entry, then update every asset holding the symbol in one
// batch write.
func (s *PriceUpdateService) updateSymbol(ctx context.Context, symbol string) error {
	price, err := s.Prices.CurrentPrice(ctx, symbol)
	if err != nil {
		return err
	}

	if err := s.History.Append(ctx, domain.NewPriceHistory(symbol, price)); err != nil {
		return fmt.Errorf("append price history: %w", err)
	}

	assets, err := s.Assets.ListBySymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	for _, asset := range assets {
		asset.UpdatePrice(price)
	}
	if err := s.Assets.SaveAll(ctx, assets); err != nil {
		return fmt.Errorf("save assets: %w", err)
	}

	log.Printf("updated price for %s - $%s (affected %d assets)", symbol, price, len(assets))
	return nil
}
