package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NormalizeSymbol returns the canonical form of an asset symbol.
// Symbols are case-insensitive everywhere; the canonical form is uppercase.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Asset represents a cryptocurrency position held in a wallet.
// Its value is always computed from quantity and current price,
// never stored, so it cannot drift from the underlying fields.
type Asset struct {
	ID           uuid.UUID
	WalletID     uuid.UUID
	Symbol       string // canonical uppercase form
	Quantity     decimal.Decimal
	CurrentPrice decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
func (a *Asset) Validate() error {
	if a.Symbol == "" {
		return &ValidationError{Reason: "asset symbol cannot be empty"}
	}
	if !a.Quantity.IsPositive() {
		return &ValidationError{Reason: "asset quantity must be positive"}
	}
	if !a.CurrentPrice.IsPositive() {
		return &ValidationError{Reason: "asset price must be positive"}
	}
	return nil
}

// Value calculates the total value of this asset (quantity * current price)
func (a *Asset) Value() decimal.Decimal {
	return a.Quantity.Mul(a.CurrentPrice)
}

// UpdatePrice sets a new current price and touches the update timestamp.
func (a *Asset) UpdatePrice(price decimal.Decimal) {
	a.CurrentPrice = price
	a.UpdatedAt = time.Now().UTC()
}
