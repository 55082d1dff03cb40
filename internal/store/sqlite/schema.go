package sqlite

import (
	"context"
	"fmt"
)

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS retail_sales (
    transactions_id INTEGER PRIMARY KEY,
    sale_date       TEXT,
    sale_time       TEXT,
    customer_id     INTEGER,
    gender          TEXT,
    age             INTEGER,
    category        TEXT,
    quantity        INTEGER,
    price_per_unit  REAL,
    cogs            REAL,
    total_sale      REAL
)`

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS sales_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

var createIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_retail_sales_sale_date ON retail_sales(sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_retail_sales_category ON retail_sales(category)`,
	`CREATE INDEX IF NOT EXISTS idx_retail_sales_customer ON retail_sales(customer_id)`,
}

var dropSchemaSQL = []string{
	`DROP TABLE IF EXISTS retail_sales`,
	`DROP TABLE IF EXISTS sales_metadata`,
}

// CreateSchema creates the retail sales and metadata tables.
func (s *Store) CreateSchema(ctx context.Context) error {
	statements := append([]string{createSchemaSQL, createMetadataTableSQL}, createIndexesSQL...)
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the retail sales and metadata tables.
func (s *Store) DropSchema(ctx context.Context) error {
	for _, stmt := range dropSchemaSQL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}
