//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package postgres implements the record store on PostgreSQL.
package postgres

import (
	"context"

	"github.com/pgEdge/pgedge-sales/internal/db"
)

// Schema SQL for the flat retail sales table.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS retail_sales (
    transactions_id BIGINT PRIMARY KEY,
    sale_date       DATE,
    sale_time       TIME,
    customer_id     INTEGER,
    gender          VARCHAR(15),
    age             INTEGER,
    category        VARCHAR(15),
    quantity        INTEGER,
    price_per_unit  DOUBLE PRECISION,
    cogs            DOUBLE PRECISION,
    total_sale      DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_retail_sales_sale_date ON retail_sales(sale_date);
CREATE INDEX IF NOT EXISTS idx_retail_sales_category ON retail_sales(category);
CREATE INDEX IF NOT EXISTS idx_retail_sales_customer ON retail_sales(customer_id);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP TABLE IF EXISTS retail_sales CASCADE;
`

// CreateSchema creates the retail sales and metadata tables.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createSchemaSQL); err != nil {
		return err
	}
	return db.CreateMetadata(ctx, s.pool)
}

// DropSchema drops the retail sales and metadata tables.
func (s *Store) DropSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, dropSchemaSQL); err != nil {
		return err
	}
	return db.DropMetadata(ctx, s.pool)
}
