package wallet

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// PriceValidator supplies validated current prices for a symbol.
// Implemented by pricing.PricingService.
type PriceValidator interface {
	ValidateAssetPrice(ctx context.Context, symbol string, provided *decimal.Decimal) (decimal.Decimal, error)
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// WalletService handles wallet and asset operations
type WalletService struct {
	Wallets domain.WalletRepository
	Assets  domain.AssetRepository
	History domain.PriceHistoryRepository
	Prices  PriceValidator
}

// NewWalletService creates a new WalletService instance
func NewWalletService(
	wallets domain.WalletRepository,
	assets domain.AssetRepository,
	history domain.PriceHistoryRepository,
	prices PriceValidator,
) *WalletService {
	return &WalletService{
		Wallets: wallets,
		Assets:  assets,
		History: history,
		Prices:  prices,
	}
}

// CreateWallet creates a new wallet for an email. Emails are unique:
// a second wallet for the same email is a conflict.
func (s *WalletService) CreateWallet(ctx context.Context, email string) (*domain.Wallet, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &domain.ValidationError{Reason: "email cannot be empty"}
	}

	exists, err := s.Wallets.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check wallet email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("wallet for %s: %w", email, domain.ErrWalletExists)
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Wallets.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	return wallet, nil
}

// GetWallet retrieves a wallet with its assets.
func (s *WalletService) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.Wallets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assets, err := s.Assets.ListByWallet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list wallet assets: %w", err)
	}
	wallet.Assets = assets

	return wallet, nil
}

// AddAsset adds a new asset position to a wallet. The symbol is
// validated against CoinCap; acquisitionPrice, when given, is compared
// to the live quote (divergence is logged, never rejected). A wallet
// holds at most one position per symbol.
func (s *WalletService) AddAsset(ctx context.Context, walletID uuid.UUID, symbol string, quantity decimal.Decimal, acquisitionPrice *decimal.Decimal) (*domain.Asset, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, &domain.ValidationError{Reason: "asset symbol cannot be empty"}
	}
	if !quantity.IsPositive() {
		return nil, &domain.ValidationError{Reason: "asset quantity must be positive"}
	}
	if acquisitionPrice != nil && !acquisitionPrice.IsPositive() {
		return nil, &domain.ValidationError{Reason: "acquisition price must be positive"}
	}

	if _, err := s.Wallets.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	currentPrice, err := s.Prices.ValidateAssetPrice(ctx, symbol, acquisitionPrice)
	if err != nil {
		return nil, err
	}

	if err := s.History.Append(ctx, domain.NewPriceHistory(symbol, currentPrice)); err != nil {
		return nil, fmt.Errorf("append price history: %w", err)
	}

	existing, err := s.Assets.FindByWalletAndSymbol(ctx, walletID, symbol)
	if err != nil {
		return nil, fmt.Errorf("find asset: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("asset %s in wallet %s: %w", symbol, walletID, domain.ErrAssetExists)
	}

	now := time.Now().UTC()
	asset := &domain.Asset{
		ID:           uuid.New(),
		WalletID:     walletID,
		Symbol:       symbol,
		Quantity:     quantity,
		CurrentPrice: currentPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}

	log.Printf("added new asset %s to wallet %s: quantity %s", symbol, walletID, quantity)
	return asset, nil
}

// UpdateAsset changes the quantity of an asset and refreshes its price
// from CoinCap. The asset must belong to the given wallet.
func (s *WalletService) UpdateAsset(ctx context.Context, walletID, assetID uuid.UUID, quantity decimal.Decimal) (*domain.Asset, error) {
	if !quantity.IsPositive() {
		return nil, &domain.ValidationError{Reason: "asset quantity must be positive"}
	}

	if _, err := s.Wallets.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	asset, err := s.Assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.WalletID != walletID {
		return nil, fmt.Errorf("asset %s in wallet %s: %w", assetID, walletID, domain.ErrAssetNotFound)
	}

	currentPrice, err := s.Prices.CurrentPrice(ctx, asset.Symbol)
	if err != nil {
		return nil, err
	}

	if err := s.History.Append(ctx, domain.NewPriceHistory(asset.Symbol, currentPrice)); err != nil {
		return nil, fmt.Errorf("append price history: %w", err)
	}

	asset.Quantity = quantity
	asset.UpdatePrice(currentPrice)
	if err := s.Assets.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}

	log.Printf("updated asset %s in wallet %s: new quantity %s", asset.Symbol, walletID, quantity)
	return asset, nil
}
