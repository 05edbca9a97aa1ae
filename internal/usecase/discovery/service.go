package discovery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/wooshnp/crypto-wallet-management/internal/adapter/coincap"
)

const (
	defaultSearchLimit = 100
	maxSearchLimit     = 2000
)

// SearchClient is the subset of the CoinCap API the discovery layer uses
type SearchClient interface {
	SearchAssets(ctx context.Context, search string, limit, offset int) ([]coincap.Asset, error)
}

// DiscoveryService lists and searches the assets available on CoinCap.
// Results are cached in-process for the lifetime of the service.
type DiscoveryService struct {
	client SearchClient

	mu       sync.Mutex
	symbols  []string
	searches map[string][]coincap.Asset
}

// NewDiscoveryService creates a new DiscoveryService instance
func NewDiscoveryService(client SearchClient) *DiscoveryService {
	return &DiscoveryService{
		client:   client,
		searches: make(map[string][]coincap.Asset),
	}
}

// AvailableSymbols returns the distinct, sorted list of symbols known
// to CoinCap. The list is fetched once and cached.
func (s *DiscoveryService) AvailableSymbols(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.symbols != nil {
		return s.symbols, nil
	}

	log.Println("fetching available symbols from CoinCap (cache miss)")

	assets, err := s.client.SearchAssets(ctx, "", maxSearchLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list available symbols: %w", err)
	}

	seen := make(map[string]struct{}, len(assets))
	symbols := make([]string, 0, len(assets))
	for _, asset := range assets {
		if _, ok := seen[asset.Symbol]; ok {
			continue
		}
		seen[asset.Symbol] = struct{}{}
		symbols = append(symbols, asset.Symbol)
	}
	sort.Strings(symbols)

	s.symbols = symbols
	return symbols, nil
}

// Search returns assets matching a free-text search term, cached per
// (term, limit) pair. A non-positive limit selects the default; limits
// above the CoinCap maximum are clamped.
func (s *DiscoveryService) Search(ctx context.Context, search string, limit int) ([]coincap.Asset, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	key := fmt.Sprintf("%s-%d", search, limit)

	s.mu.Lock()
	cached, ok := s.searches[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	log.Printf("fetching available assets from CoinCap: search=%q, limit=%d (cache miss)", search, limit)

	assets, err := s.client.SearchAssets(ctx, search, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("search assets: %w", err)
	}

	s.mu.Lock()
	s.searches[key] = assets
	s.mu.Unlock()

	return assets, nil
}
