package database

import (
	"context"
	"fmt"
)

const createCoffeeStoresTable = `
CREATE TABLE IF NOT EXISTS coffee_stores (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT NOT NULL DEFAULT '',
	neighbourhood TEXT NOT NULL DEFAULT '',
	img_url       TEXT NOT NULL DEFAULT '',
	voting        INTEGER NOT NULL DEFAULT 0 CHECK (voting >= 0),
	location_key  TEXT NOT NULL DEFAULT '',
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION
)`

const createLocationKeyIndex = `
CREATE INDEX IF NOT EXISTS idx_coffee_stores_location_key ON coffee_stores (location_key)`

// CreateSchema coffee_stores テーブルを作成する
func CreateSchema(ctx context.Context, c *SQLClient) error {
	for _, stmt := range []string{createCoffeeStoresTable, createLocationKeyIndex} {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("スキーマ作成に失敗: %w", err)
		}
	}
	return nil
}
