package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = "id, wallet_id, symbol, quantity, current_price, created_at, updated_at"

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, wallet_id, symbol, quantity, current_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.WalletID,
		asset.Symbol,
		asset.Quantity.String(),
		asset.CurrentPrice.String(),
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// Update persists changes to an existing asset
func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	query := `
		UPDATE assets
		SET quantity = $2, current_price = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.Quantity.String(),
		asset.CurrentPrice.String(),
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	return nil
}

// ListByWallet retrieves all assets held in a wallet
func (r *assetRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE wallet_id = $1 ORDER BY created_at`

	return r.list(ctx, query, walletID)
}

// ListBySymbol retrieves every asset holding the given symbol across all wallets
func (r *assetRepository) ListBySymbol(ctx context.Context, symbol string) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE UPPER(symbol) = UPPER($1)`

	return r.list(ctx, query, symbol)
}

// FindByWalletAndSymbol retrieves the asset for a symbol in a wallet.
// Returns (nil, nil) if the wallet does not hold the symbol.
func (r *assetRepository) FindByWalletAndSymbol(ctx context.Context, walletID uuid.UUID, symbol string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE wallet_id = $1 AND UPPER(symbol) = UPPER($2)`

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, walletID, symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}

	return asset, nil
}

// SaveAll persists price/quantity changes to the given assets in a single transaction
func (r *assetRepository) SaveAll(ctx context.Context, assets []*domain.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE assets
		SET quantity = $2, current_price = $3, updated_at = $4
		WHERE id = $1
	`
	for _, asset := range assets {
		_, err := tx.ExecContext(ctx, query,
			asset.ID,
			asset.Quantity.String(),
			asset.CurrentPrice.String(),
			asset.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update asset %s: %w", asset.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit asset updates: %w", err)
	}

	return nil
}

// DistinctSymbols returns the set of distinct symbols currently held across all wallets
func (r *assetRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT symbol FROM assets ORDER BY symbol`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symbols: %w", err)
	}

	return symbols, nil
}

func (r *assetRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*domain.Asset, error) {
	var asset domain.Asset
	var quantityStr, priceStr string
	var updatedAt sql.NullTime

	err := row.Scan(
		&asset.ID,
		&asset.WalletID,
		&asset.Symbol,
		&quantityStr,
		&priceStr,
		&asset.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	asset.Quantity = quantity

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current_price: %w", err)
	}
	asset.CurrentPrice = price

	if updatedAt.Valid {
		asset.UpdatedAt = updatedAt.Time
	}

	return &asset, nil
}
