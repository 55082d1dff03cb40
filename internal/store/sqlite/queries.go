//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

const selectRecordsSQL = `
        SELECT transactions_id, sale_date, sale_time, customer_id, gender, age,
               category, quantity, price_per_unit, cogs, total_sale
        FROM retail_sales
`

var shiftCountsSQL = `
        SELECT shift, COUNT(*) AS orders
        FROM (
            SELECT ` + store.ShiftCaseSQL("CAST(substr(sale_time, 1, 2) AS INTEGER)") + ` AS shift
            FROM retail_sales
        ) hourly_sales
        GROUP BY shift
`

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM retail_sales`).Scan(&n)
	return n, err
}

// DistinctCustomers returns the number of distinct customers.
func (s *Store) DistinctCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT customer_id) FROM retail_sales`).Scan(&n)
	return n, err
}

// Categories returns the distinct categories.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT DISTINCT category
        FROM retail_sales
        WHERE category IS NOT NULL
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows *sql.Rows) (string, error) {
		var category string
		err := rows.Scan(&category)
		return category, err
	})
}

// SalesOn returns the records sold on day.
func (s *Store) SalesOn(ctx context.Context, day time.Time) ([]sales.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordsSQL+`
        WHERE sale_date = ?
        ORDER BY transactions_id
    `, day.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRecord)
}

// CategorySalesInMonth returns the records matching the month filter.
func (s *Store) CategorySalesInMonth(ctx context.Context, f sales.MonthFilter) ([]sales.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordsSQL+`
        WHERE category = ?
            AND quantity >= ?
            AND sale_date >= ?
            AND sale_date < ?
        ORDER BY transactions_id
    `, f.Category, f.MinQuantity,
		f.Start().Format(time.DateOnly), f.End().Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRecord)
}

// SalesByCategory returns the net sale and order count per category.
func (s *Store) SalesByCategory(ctx context.Context) ([]sales.CategorySales, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT category, SUM(total_sale) AS net_sale, COUNT(*) AS total_orders
        FROM retail_sales
        GROUP BY category
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows *sql.Rows) (sales.CategorySales, error) {
		var c sales.CategorySales
		var category sql.NullString
		err := rows.Scan(&category, &c.NetSale, &c.TotalOrders)
		c.Category = category.String
		return c, err
	})
}

// AverageAge returns the average age of customers in category.
func (s *Store) AverageAge(ctx context.Context, category string) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
        SELECT ROUND(AVG(age), 2)
        FROM retail_sales
        WHERE category = ?
    `, category).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, sales.ErrNoRecords
	}
	return avg.Float64, nil
}

// HighValueSales returns the records with a total sale above threshold.
func (s *Store) HighValueSales(ctx context.Context, threshold float64) ([]sales.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordsSQL+`
        WHERE total_sale > ?
        ORDER BY transactions_id
    `, threshold)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRecord)
}

// TransactionsByCategoryGender counts records per category and gender.
func (s *Store) TransactionsByCategoryGender(ctx context.Context) ([]sales.CategoryGenderCount, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT category, gender, COUNT(*) AS total_trans
        FROM retail_sales
        GROUP BY category, gender
        ORDER BY gender, category
    `)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows *sql.Rows) (sales.CategoryGenderCount, error) {
		var c sales.CategoryGenderCount
		var category, gender sql.NullString
		err := rows.Scan(&category, &gender, &c.Transactions)
		c.Category, c.Gender = category.String, gender.String
		return c, err
	})
}

// BestMonths ranks months within each year by average sale.
func (s *Store) BestMonths(ctx context.Context, ranks int) ([]sales.MonthlyAverage, error) {
	rows, err := s.db.QueryContext(ctx, `
        WITH monthly_sales AS (
            SELECT
                CAST(substr(sale_date, 1, 4) AS INTEGER) AS year,
                CAST(substr(sale_date, 6, 2) AS INTEGER) AS month,
                AVG(total_sale) AS avg_sale
            FROM retail_sales
            WHERE sale_date IS NOT NULL
            GROUP BY 1, 2
        ),
        ranked_months AS (
            SELECT year, month, avg_sale,
                   DENSE_RANK() OVER (PARTITION BY year ORDER BY avg_sale DESC) AS sale_rank
            FROM monthly_sales
        )
        SELECT year, month, avg_sale, sale_rank
        FROM ranked_months
        WHERE sale_rank <= ?
        ORDER BY year, sale_rank, month
    `, ranks)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows *sql.Rows) (sales.MonthlyAverage, error) {
		var m sales.MonthlyAverage
		err := rows.Scan(&m.Year, &m.Month, &m.AvgSale, &m.Rank)
		return m, err
	})
}

// TopCustomers returns up to limit customers by summed total sale.
func (s *Store) TopCustomers(ctx context.Context, limit int) ([]sales.CustomerSales, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT customer_id, SUM(total_sale) AS total_sales
        FROM retail_sales
        GROUP BY customer_id
        ORDER BY total_sales DESC, customer_id
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows *sql.Rows) (sales.CustomerSales, error) {
		var c sales.CustomerSales
		var customer sql.NullInt64
		err := rows.Scan(&customer, &c.TotalSales)
		c.CustomerID = int32(customer.Int64)
		return c, err
	})
}

// UniqueCustomersByCategory counts distinct customers per category.
func (s *Store) UniqueCustomersByCategory(ctx context.Context) ([]sales.CategoryCustomers, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT category, COUNT(DISTINCT customer_id) AS unique_customers
        FROM retail_sales
        GROUP BY category
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows *sql.Rows) (sales.CategoryCustomers, error) {
		var c sales.CategoryCustomers
		var category sql.NullString
		err := rows.Scan(&category, &c.UniqueCustomers)
		c.Category = category.String
		return c, err
	})
}

// ShiftCounts counts records per shift.
func (s *Store) ShiftCounts(ctx context.Context) ([]sales.ShiftCount, error) {
	rows, err := s.db.QueryContext(ctx, shiftCountsSQL)
	if err != nil {
		return nil, err
	}
	counts, err := collect(rows, func(rows *sql.Rows) (sales.ShiftCount, error) {
		var shift string
		var orders int64
		err := rows.Scan(&shift, &orders)
		return sales.ShiftCount{Shift: sales.Shift(shift), Orders: orders}, err
	})
	if err != nil {
		return nil, err
	}
	return sales.CompleteShiftCounts(counts), nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func scanRecord(rows *sql.Rows) (sales.Record, error) {
	var (
		r                       sales.Record
		saleDate, saleTime      sql.NullString
		customer, age, quantity sql.NullInt64
		gender, category        sql.NullString
		price, cogs, total      sql.NullFloat64
	)
	err := rows.Scan(&r.TransactionID, &saleDate, &saleTime, &customer, &gender,
		&age, &category, &quantity, &price, &cogs, &total)
	if err != nil {
		return r, err
	}

	if saleDate.Valid {
		d, err := time.Parse(time.DateOnly, saleDate.String)
		if err != nil {
			return r, fmt.Errorf("transaction %d: bad sale_date %q: %w", r.TransactionID, saleDate.String, err)
		}
		r.SaleDate = pgtype.Date{Time: d, Valid: true}
	}
	if saleTime.Valid {
		t, err := time.Parse(time.TimeOnly, saleTime.String)
		if err != nil {
			return r, fmt.Errorf("transaction %d: bad sale_time %q: %w", r.TransactionID, saleTime.String, err)
		}
		r.SaleTime = sales.TimeOfDay(t.Hour(), t.Minute(), t.Second())
	}
	r.CustomerID = int4(customer)
	r.Gender = pgtype.Text{String: gender.String, Valid: gender.Valid}
	r.Age = int4(age)
	r.Category = pgtype.Text{String: category.String, Valid: category.Valid}
	r.Quantity = int4(quantity)
	r.PricePerUnit = pgtype.Float8{Float64: price.Float64, Valid: price.Valid}
	r.COGS = pgtype.Float8{Float64: cogs.Float64, Valid: cogs.Valid}
	r.TotalSale = pgtype.Float8{Float64: total.Float64, Valid: total.Valid}
	return r, nil
}

func int4(v sql.NullInt64) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(v.Int64), Valid: v.Valid}
}
