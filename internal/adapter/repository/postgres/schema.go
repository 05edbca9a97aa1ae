package postgres

import (
	"context"
	"fmt"
)

// schema holds the DDL for the tables the service needs. Money columns
// are NUMERIC so decimal values round-trip without loss.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id UUID PRIMARY KEY,
		wallet_id UUID NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		quantity NUMERIC(20, 8) NOT NULL,
		current_price NUMERIC(20, 2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ,
		UNIQUE (wallet_id, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS price_history (
		id UUID PRIMARY KEY,
		symbol TEXT NOT NULL,
		price NUMERIC(20, 2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_symbol ON assets (symbol)`,
	`CREATE INDEX IF NOT EXISTS idx_price_history_symbol ON price_history (symbol, created_at)`,
}

// EnsureSchema creates the tables the service needs if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
