//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analysis defines the catalogue of named aggregate queries run
// against a cleaned record store.
package analysis

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// Params holds the filter inputs of the parameterised queries.
type Params struct {
	// Date is the day for sales_on_date (YYYY-MM-DD).
	Date string

	// Category, MinQuantity and Month filter category_month_sales.
	Category    string
	MinQuantity int
	Month       string

	// AgeCategory is the category for average_age.
	AgeCategory string

	// Threshold is the exclusive lower bound for high_value_sales.
	Threshold float64

	// Ranks is the number of dense ranks per year kept by best_months.
	Ranks int

	// Limit is the number of customers returned by top_customers.
	Limit int
}

// DefaultParams returns the default query inputs.
func DefaultParams() Params {
	return Params{
		Date:        "2022-11-05",
		Category:    "Clothing",
		MinQuantity: 4,
		Month:       "2022-11",
		AgeCategory: "Beauty",
		Threshold:   1000,
		Ranks:       2,
		Limit:       5,
	}
}

// RunFunc executes a query and returns its result table.
type RunFunc func(ctx context.Context, q store.Queries, p Params) (*sales.Table, error)

// Definition describes a catalogue query.
type Definition struct {
	// Name is the query identifier.
	Name string

	// Title is the heading printed above the result.
	Title string

	// Description describes what the query computes.
	Description string

	// Params names the Params fields the query reads.
	Params []string

	// Run executes the query.
	Run RunFunc
}

// Get retrieves a query by name.
func Get(name string) (Definition, error) {
	for _, def := range catalogue {
		if def.Name == name {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("unknown query: %s", name)
}

// All returns every query in catalogue order.
func All() []Definition {
	return append([]Definition(nil), catalogue...)
}

// Names returns every query name in catalogue order.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, def := range catalogue {
		names[i] = def.Name
	}
	return names
}

// Select returns the named queries in the order given, or every query when
// names is empty. Duplicate names are kept once.
func Select(names []string) ([]Definition, error) {
	if len(names) == 0 {
		return All(), nil
	}

	seen := make(map[string]bool, len(names))
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		def, err := Get(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		defs = append(defs, def)
	}
	return defs, nil
}
