//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

var catalogue = []Definition{
	{
		Name:        "record_count",
		Title:       "Total records",
		Description: "Total number of sales records",
		Run:         recordCount,
	},
	{
		Name:        "customer_count",
		Title:       "Unique customers",
		Description: "Number of distinct customers",
		Run:         customerCount,
	},
	{
		Name:        "categories",
		Title:       "Categories",
		Description: "Distinct product categories",
		Run:         categories,
	},
	{
		Name:        "sales_on_date",
		Title:       "Sales on date",
		Description: "All sales made on a given day",
		Params:      []string{"date"},
		Run:         salesOnDate,
	},
	{
		Name:        "category_month_sales",
		Title:       "Category sales in month",
		Description: "Sales in a category with at least a minimum quantity during a month",
		Params:      []string{"category", "min-quantity", "month"},
		Run:         categoryMonthSales,
	},
	{
		Name:        "category_totals",
		Title:       "Net sales by category",
		Description: "Net sale and order count per category",
		Run:         categoryTotals,
	},
	{
		Name:        "average_age",
		Title:       "Average customer age",
		Description: "Average age of customers buying from a category",
		Params:      []string{"age-category"},
		Run:         averageAge,
	},
	{
		Name:        "high_value_sales",
		Title:       "High value sales",
		Description: "Sales with a total above a threshold",
		Params:      []string{"threshold"},
		Run:         highValueSales,
	},
	{
		Name:        "category_gender_transactions",
		Title:       "Transactions by category and gender",
		Description: "Number of transactions per category and gender",
		Run:         categoryGenderTransactions,
	},
	{
		Name:        "best_months",
		Title:       "Best selling months",
		Description: "Months with the highest average sale in each year",
		Params:      []string{"ranks"},
		Run:         bestMonths,
	},
	{
		Name:        "top_customers",
		Title:       "Top customers",
		Description: "Customers with the highest total sales",
		Params:      []string{"limit"},
		Run:         topCustomers,
	},
	{
		Name:        "category_customers",
		Title:       "Unique customers by category",
		Description: "Number of distinct customers per category",
		Run:         categoryCustomers,
	},
	{
		Name:        "shift_orders",
		Title:       "Orders by shift",
		Description: "Number of orders per shift (Morning < 12, Afternoon 12-17, Evening > 17)",
		Run:         shiftOrders,
	},
}

func recordCount(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	n, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("record_count", "Total records", "total_sale")
	t.Append(n)
	return t, nil
}

func customerCount(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	n, err := q.DistinctCustomers(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("customer_count", "Unique customers", "total_customers")
	t.Append(n)
	return t, nil
}

func categories(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	cats, err := q.Categories(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("categories", "Categories", "category")
	for _, c := range cats {
		t.Append(c)
	}
	return t, nil
}

func salesOnDate(ctx context.Context, q store.Queries, p Params) (*sales.Table, error) {
	day, err := sales.ParseDate("sales_on_date", p.Date)
	if err != nil {
		return nil, err
	}
	records, err := q.SalesOn(ctx, day)
	if err != nil {
		return nil, err
	}
	return sales.RecordTable("sales_on_date", "Sales on "+day.Format("2006-01-02"), records), nil
}

func categoryMonthSales(ctx context.Context, q store.Queries, p Params) (*sales.Table, error) {
	f, err := sales.ParseMonthFilter("category_month_sales", p.Category, p.MinQuantity, p.Month)
	if err != nil {
		return nil, err
	}
	records, err := q.CategorySalesInMonth(ctx, f)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s sales with quantity >= %d in %s",
		f.Category, f.MinQuantity, f.Start().Format(sales.MonthLayout))
	return sales.RecordTable("category_month_sales", title, records), nil
}

func categoryTotals(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	totals, err := q.SalesByCategory(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("category_totals", "Net sales by category", "category", "net_sale", "total_orders")
	for _, c := range totals {
		t.Append(c.Category, c.NetSale, c.TotalOrders)
	}
	return t, nil
}

func averageAge(ctx context.Context, q store.Queries, p Params) (*sales.Table, error) {
	avg, err := q.AverageAge(ctx, p.AgeCategory)
	if err != nil {
		return nil, fmt.Errorf("average age for %q: %w", p.AgeCategory, err)
	}
	t := sales.NewTable("average_age", "Average age of "+p.AgeCategory+" customers", "category", "avg_age")
	t.Append(p.AgeCategory, avg)
	return t, nil
}

func highValueSales(ctx context.Context, q store.Queries, p Params) (*sales.Table, error) {
	if p.Threshold < 0 {
		return nil, &sales.QueryError{Query: "high_value_sales", Param: "threshold",
			Value: strconv.FormatFloat(p.Threshold, 'f', -1, 64), Err: errors.New("must not be negative")}
	}
	records, err := q.HighValueSales(ctx, p.Threshold)
	if err != nil {
		return nil, err
	}
	title := "Sales with total above " + strconv.FormatFloat(p.Threshold, 'f', -1, 64)
	return sales.RecordTable("high_value_sales", title, records), nil
}

func categoryGenderTransactions(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	counts, err := q.TransactionsByCategoryGender(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("category_gender_transactions", "Transactions by category and gender",
		"category", "gender", "total_trans")
	for _, c := range counts {
		t.Append(c.Category, c.Gender, c.Transactions)
	}
	return t, nil
}

func bestMonths(ctx context.Context, q store.Queries, p Params) (*sales.Table, error) {
	if err := sales.RequirePositive("best_months", "ranks", p.Ranks); err != nil {
		return nil, err
	}
	months, err := q.BestMonths(ctx, p.Ranks)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("best_months", "Best selling months", "year", "month", "avg_sale", "rank")
	for _, m := range months {
		t.Append(m.Year, m.Month, m.AvgSale, m.Rank)
	}
	return t, nil
}

func topCustomers(ctx context.Context, q store.Queries, p Params) (*sales.Table, error) {
	if err := sales.RequirePositive("top_customers", "limit", p.Limit); err != nil {
		return nil, err
	}
	customers, err := q.TopCustomers(ctx, p.Limit)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("top_customers", fmt.Sprintf("Top %d customers", p.Limit),
		"customer_id", "total_sales")
	for _, c := range customers {
		t.Append(c.CustomerID, c.TotalSales)
	}
	return t, nil
}

func categoryCustomers(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	counts, err := q.UniqueCustomersByCategory(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("category_customers", "Unique customers by category",
		"category", "unique_customers")
	for _, c := range counts {
		t.Append(c.Category, c.UniqueCustomers)
	}
	return t, nil
}

func shiftOrders(ctx context.Context, q store.Queries, _ Params) (*sales.Table, error) {
	counts, err := q.ShiftCounts(ctx)
	if err != nil {
		return nil, err
	}
	t := sales.NewTable("shift_orders", "Orders by shift", "shift", "total_orders")
	for _, c := range counts {
		t.Append(string(c.Shift), c.Orders)
	}
	return t, nil
}
