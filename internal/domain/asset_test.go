package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTC", NormalizeSymbol("btc"))
	assert.Equal(t, "BTC", NormalizeSymbol(" Btc "))
	assert.Equal(t, "ETH", NormalizeSymbol("ETH"))
	assert.Equal(t, "", NormalizeSymbol("  "))
}

func TestAssetValue(t *testing.T) {
	asset := &Asset{
		ID:           uuid.New(),
		Symbol:       "BTC",
		Quantity:     decimal.RequireFromString("0.5"),
		CurrentPrice: decimal.RequireFromString("50000.10"),
	}

	// 0.5 * 50000.10 = 25000.05
	assert.True(t, asset.Value().Equal(decimal.RequireFromString("25000.05")))
}

func TestAssetUpdatePrice(t *testing.T) {
	asset := &Asset{
		Symbol:       "BTC",
		Quantity:     decimal.NewFromInt(1),
		CurrentPrice: decimal.NewFromInt(100),
	}
	before := asset.UpdatedAt

	asset.UpdatePrice(decimal.NewFromInt(150))

	assert.True(t, asset.CurrentPrice.Equal(decimal.NewFromInt(150)))
	assert.True(t, asset.UpdatedAt.After(before))
}

func TestAssetValidate(t *testing.T) {
	valid := &Asset{
		Symbol:       "BTC",
		Quantity:     decimal.NewFromInt(1),
		CurrentPrice: decimal.NewFromInt(100),
	}
	assert.NoError(t, valid.Validate())

	missingSymbol := &Asset{
		Quantity:     decimal.NewFromInt(1),
		CurrentPrice: decimal.NewFromInt(100),
	}
	assert.Error(t, missingSymbol.Validate())

	zeroQuantity := &Asset{
		Symbol:       "BTC",
		CurrentPrice: decimal.NewFromInt(100),
	}
	assert.Error(t, zeroQuantity.Validate())

	negativePrice := &Asset{
		Symbol:       "BTC",
		Quantity:     decimal.NewFromInt(1),
		CurrentPrice: decimal.NewFromInt(-1),
	}
	assert.Error(t, negativePrice.Validate())
}
