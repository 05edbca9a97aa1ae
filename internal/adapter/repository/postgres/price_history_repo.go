package postgres

import (
	"context"
	"fmt"

	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// priceHistoryRepository implements domain.PriceHistoryRepository
type priceHistoryRepository struct {
	db *DB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(db *DB) domain.PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// Append writes a new price history entry. Entries are append-only:
// nothing in this repository updates or deletes rows.
func (r *priceHistoryRepository) Append(ctx context.Context, entry *domain.PriceHistory) error {
	query := `
		INSERT INTO price_history (id, symbol, price, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Symbol,
		entry.Price.String(),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price history entry: %w", err)
	}

	return nil
}
