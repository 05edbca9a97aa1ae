package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents a user's wallet holding cryptocurrency assets.
// One wallet per user email; emails are unique across the system.
type Wallet struct {
	ID        uuid.UUID
	Email     string
	Assets    []*Asset
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalValue calculates the total value of the wallet in USD
func (w *Wallet) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, asset := range w.Assets {
		total = total.Add(asset.Value())
	}
	return total
}
