package pricing

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/wooshnp/crypto-wallet-management/internal/adapter/coincap"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// searchLimit is the page size used when resolving a symbol to a
// provider asset ID.
const searchLimit = 100

// AssetClient is the subset of the CoinCap API the pricing layer uses
type AssetClient interface {
	GetAsset(ctx context.Context, id string) (*coincap.Asset, error)
	SearchAssets(ctx context.Context, search string, limit, offset int) ([]coincap.Asset, error)
	GetAssetHistory(ctx context.Context, id, interval string, start, end int64) ([]coincap.HistoryPoint, error)
}

// Resolver maps asset symbols to CoinCap asset IDs.
// Resolved IDs are cached for the process lifetime; an entry never
// changes once written. The cache is safe for concurrent use, but two
// concurrent resolves of the same cold symbol may both hit the search
// endpoint (results are idempotent, so the duplicate call is harmless).
type Resolver struct {
	client AssetClient

	mu  sync.RWMutex
	ids map[string]string // canonical symbol -> CoinCap asset ID
}

// NewResolver creates a new Resolver backed by the given client.
func NewResolver(client AssetClient) *Resolver {
	return &Resolver{
		client: client,
		ids:    make(map[string]string),
	}
}

// Resolve returns the CoinCap asset ID for a symbol. It never fails:
// if the search finds no exact match or the call errors, it falls back
// to the lowercased symbol, which CoinCap usually accepts as a path
// parameter directly. Fallback results are cached too, so a
// persistently-bad symbol does not trigger a search on every call.
func (r *Resolver) Resolve(ctx context.Context, symbol string) string {
	key := domain.NormalizeSymbol(symbol)

	r.mu.RLock()
	id, ok := r.ids[key]
	r.mu.RUnlock()
	if ok {
		return id
	}

	id = r.lookup(ctx, key)

	r.mu.Lock()
	if cached, ok := r.ids[key]; ok {
		// Another caller resolved the symbol first; its entry wins.
		id = cached
	} else {
		r.ids[key] = id
	}
	r.mu.Unlock()

	return id
}

// lookup searches CoinCap for an asset whose symbol matches exactly
// (case-insensitive) and returns the first match's ID.
func (r *Resolver) lookup(ctx context.Context, symbol string) string {
	assets, err := r.client.SearchAssets(ctx, symbol, searchLimit, 0)
	if err != nil {
		log.Printf("asset search failed for %s, falling back to symbol path: %v", symbol, err)
		return strings.ToLower(symbol)
	}

	for _, asset := range assets {
		if strings.EqualFold(asset.Symbol, symbol) {
			return asset.ID
		}
	}
	return strings.ToLower(symbol)
}
