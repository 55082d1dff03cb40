//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store defines the record store interface and the registry of
// storage backends.
package store

import (
	"context"
	"time"

	"github.com/pgEdge/pgedge-sales/internal/sales"
)

// Queries is the read-only aggregate surface of a store. Implementations
// must be safe for concurrent use once loading and cleaning are finished.
type Queries interface {
	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// DistinctCustomers returns the number of distinct customers.
	DistinctCustomers(ctx context.Context) (int64, error)

	// Categories returns the distinct categories in ascending order.
	Categories(ctx context.Context) ([]string, error)

	// SalesOn returns the records sold on the given calendar day.
	SalesOn(ctx context.Context, day time.Time) ([]sales.Record, error)

	// CategorySalesInMonth returns the records matching the month filter.
	CategorySalesInMonth(ctx context.Context, f sales.MonthFilter) ([]sales.Record, error)

	// SalesByCategory returns the net sale and order count per category.
	SalesByCategory(ctx context.Context) ([]sales.CategorySales, error)

	// AverageAge returns the average customer age in a category rounded to
	// two decimals, or sales.ErrNoRecords if the category has no records.
	AverageAge(ctx context.Context, category string) (float64, error)

	// HighValueSales returns the records with a total sale above threshold.
	HighValueSales(ctx context.Context, threshold float64) ([]sales.Record, error)

	// TransactionsByCategoryGender counts records per category and gender,
	// ordered by gender.
	TransactionsByCategoryGender(ctx context.Context) ([]sales.CategoryGenderCount, error)

	// BestMonths returns, for each year, the months whose dense rank by
	// average sale is at most ranks.
	BestMonths(ctx context.Context, ranks int) ([]sales.MonthlyAverage, error)

	// TopCustomers returns up to limit customers by summed total sale.
	TopCustomers(ctx context.Context, limit int) ([]sales.CustomerSales, error)

	// UniqueCustomersByCategory counts distinct customers per category.
	UniqueCustomersByCategory(ctx context.Context) ([]sales.CategoryCustomers, error)

	// ShiftCounts counts records per shift, one entry for every shift.
	ShiftCounts(ctx context.Context) ([]sales.ShiftCount, error)
}

// Store is a flat record store holding the retail_sales table.
type Store interface {
	Queries

	// Name returns the backend name.
	Name() string

	// CreateSchema creates the record and metadata tables if missing.
	CreateSchema(ctx context.Context) error

	// DropSchema drops the record and metadata tables.
	DropSchema(ctx context.Context) error

	// Truncate removes every record.
	Truncate(ctx context.Context) error

	// Insert adds records in a single transaction and returns the number
	// inserted. A duplicate transaction id fails the whole batch.
	Insert(ctx context.Context, records []sales.Record) (int64, error)

	// DeleteIncomplete removes every record with at least one NULL field
	// and returns the number removed.
	DeleteIncomplete(ctx context.Context) (int64, error)

	// SaveMetadata upserts metadata key/value pairs.
	SaveMetadata(ctx context.Context, values map[string]string) error

	// Metadata returns all metadata key/value pairs.
	Metadata(ctx context.Context) (map[string]string, error)

	// Close releases the store's connections.
	Close() error
}
