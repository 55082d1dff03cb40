//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
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
            SELECT ` + store.ShiftCaseSQL("EXTRACT(HOUR FROM sale_time)") + ` AS shift
            FROM retail_sales
        ) hourly_sales
        GROUP BY shift
`

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM retail_sales`).Scan(&n)
	return n, err
}

// DistinctCustomers returns the number of distinct customers.
func (s *Store) DistinctCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT customer_id) FROM retail_sales`).Scan(&n)
	return n, err
}

// Categories returns the distinct categories.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT DISTINCT category
        FROM retail_sales
        WHERE category IS NOT NULL
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// SalesOn returns the records sold on day.
func (s *Store) SalesOn(ctx context.Context, day time.Time) ([]sales.Record, error) {
	rows, err := s.pool.Query(ctx, selectRecordsSQL+`
        WHERE sale_date = $1
        ORDER BY transactions_id
    `, pgtype.Date{Time: day, Valid: true})
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// CategorySalesInMonth returns the records matching the month filter.
func (s *Store) CategorySalesInMonth(ctx context.Context, f sales.MonthFilter) ([]sales.Record, error) {
	rows, err := s.pool.Query(ctx, selectRecordsSQL+`
        WHERE category = $1
            AND quantity >= $2
            AND sale_date >= $3
            AND sale_date < $4
        ORDER BY transactions_id
    `, f.Category, f.MinQuantity,
		pgtype.Date{Time: f.Start(), Valid: true},
		pgtype.Date{Time: f.End(), Valid: true})
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// SalesByCategory returns the net sale and order count per category.
func (s *Store) SalesByCategory(ctx context.Context) ([]sales.CategorySales, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT category, SUM(total_sale) AS net_sale, COUNT(*) AS total_orders
        FROM retail_sales
        GROUP BY category
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[sales.CategorySales])
}

// AverageAge returns the average age of customers in category.
func (s *Store) AverageAge(ctx context.Context, category string) (float64, error) {
	var avg pgtype.Float8
	err := s.pool.QueryRow(ctx, `
        SELECT ROUND(AVG(age)::numeric, 2)::double precision
        FROM retail_sales
        WHERE category = $1
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
	rows, err := s.pool.Query(ctx, selectRecordsSQL+`
        WHERE total_sale > $1
        ORDER BY transactions_id
    `, threshold)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// TransactionsByCategoryGender counts records per category and gender.
func (s *Store) TransactionsByCategoryGender(ctx context.Context) ([]sales.CategoryGenderCount, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT category, gender, COUNT(*) AS total_trans
        FROM retail_sales
        GROUP BY category, gender
        ORDER BY gender, category
    `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[sales.CategoryGenderCount])
}

// BestMonths ranks months within each year by average sale.
func (s *Store) BestMonths(ctx context.Context, ranks int) ([]sales.MonthlyAverage, error) {
	rows, err := s.pool.Query(ctx, `
        WITH monthly_sales AS (
            SELECT
                EXTRACT(YEAR FROM sale_date)::integer AS year,
                EXTRACT(MONTH FROM sale_date)::integer AS month,
                AVG(total_sale) AS avg_sale
            FROM retail_sales
            GROUP BY 1, 2
        ),
        ranked_months AS (
            SELECT year, month, avg_sale,
                   DENSE_RANK() OVER (PARTITION BY year ORDER BY avg_sale DESC) AS sale_rank
            FROM monthly_sales
        )
        SELECT year, month, avg_sale, sale_rank
        FROM ranked_months
        WHERE sale_rank <= $1
        ORDER BY year, sale_rank, month
    `, ranks)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[sales.MonthlyAverage])
}

// TopCustomers returns up to limit customers by summed total sale.
func (s *Store) TopCustomers(ctx context.Context, limit int) ([]sales.CustomerSales, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT customer_id, SUM(total_sale) AS total_sales
        FROM retail_sales
        GROUP BY customer_id
        ORDER BY total_sales DESC, customer_id
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[sales.CustomerSales])
}

// UniqueCustomersByCategory counts distinct customers per category.
func (s *Store) UniqueCustomersByCategory(ctx context.Context) ([]sales.CategoryCustomers, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT category, COUNT(DISTINCT customer_id) AS unique_customers
        FROM retail_sales
        GROUP BY category
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[sales.CategoryCustomers])
}

// ShiftCounts counts records per shift.
func (s *Store) ShiftCounts(ctx context.Context) ([]sales.ShiftCount, error) {
	rows, err := s.pool.Query(ctx, shiftCountsSQL)
	if err != nil {
		return nil, err
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sales.ShiftCount, error) {
		var shift string
		var orders int64
		err := row.Scan(&shift, &orders)
		return sales.ShiftCount{Shift: sales.Shift(shift), Orders: orders}, err
	})
	if err != nil {
		return nil, err
	}
	return sales.CompleteShiftCounts(counts), nil
}

func collectRecords(rows pgx.Rows) ([]sales.Record, error) {
	return pgx.CollectRows(rows, pgx.RowToStructByPos[sales.Record])
}
