package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory is an append-only record of an observed price for a symbol.
// Entries are never updated or deleted once written.
type PriceHistory struct {
	ID        uuid.UUID
	Symbol    string // canonical uppercase form
	Price     decimal.Decimal
	CreatedAt time.Time
}

// NewPriceHistory creates a new price history entry observed now.
func NewPriceHistory(symbol string, price decimal.Decimal) *PriceHistory {
	return &PriceHistory{
		ID:        uuid.New(),
		Symbol:    NormalizeSymbol(symbol),
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
}
