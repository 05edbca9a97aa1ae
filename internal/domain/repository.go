package domain

import (
	"context"

	"github.com/google/uuid"
)

// WalletRepository defines the interface for wallet persistence operations
type WalletRepository interface {
	// Create creates a new wallet
	Create(ctx context.Context, wallet *Wallet) error

	// GetByID retrieves a wallet by its ID (without its assets)
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// ExistsByEmail reports whether a wallet exists for the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// Update persists changes to an existing asset
	Update(ctx context.Context, asset *Asset) error

	// ListByWallet retrieves all assets held in a wallet
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*Asset, error)

	// ListBySymbol retrieves every asset holding the given symbol
	// across all wallets
	ListBySymbol(ctx context.Context, symbol string) ([]*Asset, error)

	// FindByWalletAndSymbol retrieves the asset for a symbol in a wallet.
	// Returns (nil, nil) if the wallet does not hold the symbol.
	FindByWalletAndSymbol(ctx context.Context, walletID uuid.UUID, symbol string) (*Asset, error)

	// SaveAll persists price/quantity changes to the given assets in a
	// single transaction
	SaveAll(ctx context.Context, assets []*Asset) error

	// DistinctSymbols returns the set of distinct symbols currently held
	// across all wallets
	DistinctSymbols(ctx context.Context) ([]string, error)
}

// PriceHistoryRepository defines the interface for price history persistence
type PriceHistoryRepository interface {
	// Append writes a new price history entry. Entries are append-only.
	Append(ctx context.Context, entry *PriceHistory) error
}
