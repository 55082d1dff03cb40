// Package storetest is a conformance suite run against every record store
// backend.
package storetest

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// OpenFunc returns a store for one subtest. The suite recreates the schema
// and closes the store when the subtest ends.
type OpenFunc func(t *testing.T) store.Store

// Record builds a complete record.
func Record(id int64, day pgtype.Date, at pgtype.Time, customer int32, gender string,
	age int32, category string, quantity int32, price, cogs, total float64) sales.Record {
	return sales.Record{
		TransactionID: id,
		SaleDate:      day,
		SaleTime:      at,
		CustomerID:    pgtype.Int4{Int32: customer, Valid: true},
		Gender:        pgtype.Text{String: gender, Valid: true},
		Age:           pgtype.Int4{Int32: age, Valid: true},
		Category:      pgtype.Text{String: category, Valid: true},
		Quantity:      pgtype.Int4{Int32: quantity, Valid: true},
		PricePerUnit:  pgtype.Float8{Float64: price, Valid: true},
		COGS:          pgtype.Float8{Float64: cogs, Valid: true},
		TotalSale:     pgtype.Float8{Float64: total, Valid: true},
	}
}

// Sale builds a complete record from the fields the aggregate queries read.
func Sale(id int64, day pgtype.Date, at pgtype.Time, customer int32, category string,
	quantity int32, total float64) sales.Record {
	return Record(id, day, at, customer, "Female", 30, category, quantity,
		total/float64(quantity), total/4, total)
}

// Run runs the conformance suite.
func Run(t *testing.T, open OpenFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, ctx context.Context, s store.Store)
	}{
		{"CleanRemovesIncomplete", testCleanRemovesIncomplete},
		{"CleanOnlyRemovesIncomplete", testCleanOnlyRemovesIncomplete},
		{"Truncate", testTruncate},
		{"DuplicateTransaction", testDuplicateTransaction},
		{"RecordRoundTrip", testRecordRoundTrip},
		{"Counts", testCounts},
		{"SalesOn", testSalesOn},
		{"CategorySalesInMonth", testCategorySalesInMonth},
		{"SalesByCategory", testSalesByCategory},
		{"AverageAge", testAverageAge},
		{"HighValueSales", testHighValueSales},
		{"TransactionsByCategoryGender", testTransactionsByCategoryGender},
		{"BestMonths", testBestMonths},
		{"TopCustomers", testTopCustomers},
		{"UniqueCustomersByCategory", testUniqueCustomersByCategory},
		{"ShiftCounts", testShiftCounts},
		{"ShiftCountsEmpty", testShiftCountsEmpty},
		{"Metadata", testMetadata},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			t.Cleanup(func() { s.Close() })

			require.NoError(t, s.DropSchema(ctx))
			require.NoError(t, s.CreateSchema(ctx))

			tt.fn(t, ctx, s)
		})
	}
}

func insert(t *testing.T, ctx context.Context, s store.Store, records ...sales.Record) {
	t.Helper()
	n, err := s.Insert(ctx, records)
	require.NoError(t, err)
	require.Equal(t, int64(len(records)), n)
}

func ids(records []sales.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.TransactionID
	}
	return out
}

var (
	nov5  = sales.Date(2022, time.November, 5)
	nov20 = sales.Date(2022, time.November, 20)
	oct31 = sales.Date(2022, time.October, 31)
	dec1  = sales.Date(2022, time.December, 1)
	nine  = sales.TimeOfDay(9, 0, 0)
)

func testCleanRemovesIncomplete(t *testing.T, ctx context.Context, s store.Store) {
	missingAge := Record(2, nov5, nine, 11, "Male", 0, "Beauty", 1, 50, 10, 50)
	missingAge.Age = pgtype.Int4{}

	insert(t, ctx, s,
		Record(1, nov5, nine, 10, "Female", 22, "Clothing", 2, 25, 5, 50),
		missingAge,
		Record(3, nov5, nine, 12, "Male", 41, "Electronics", 1, 300, 90, 300),
	)

	removed, err := s.DeleteIncomplete(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	records, err := s.SalesOn(ctx, nov5.Time)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, ids(records))
	for _, r := range records {
		require.True(t, r.Complete(), "transaction %d missing %v", r.TransactionID, r.MissingFields())
	}
}

func testCleanOnlyRemovesIncomplete(t *testing.T, ctx context.Context, s store.Store) {
	var records []sales.Record
	incomplete := 0
	for i := range len(sales.Columns) + 3 {
		r := Record(int64(i+1), nov5, nine, int32(100+i), "Female", 30, "Beauty", 1, 10, 2, 10)
		switch i {
		case 1:
			r.SaleDate = pgtype.Date{}
		case 2:
			r.SaleTime = pgtype.Time{}
		case 3:
			r.CustomerID = pgtype.Int4{}
		case 4:
			r.Gender = pgtype.Text{}
		case 5:
			r.Category = pgtype.Text{}
		case 6:
			r.Quantity = pgtype.Int4{}
		case 7:
			r.PricePerUnit = pgtype.Float8{}
		case 8:
			r.COGS = pgtype.Float8{}
		case 9:
			r.TotalSale = pgtype.Float8{}
		}
		if !r.Complete() {
			incomplete++
		}
		records = append(records, r)
	}
	insert(t, ctx, s, records...)

	before, err := s.Count(ctx)
	require.NoError(t, err)

	removed, err := s.DeleteIncomplete(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(incomplete), removed)

	after, err := s.Count(ctx)
	require.NoError(t, err)
	require.LessOrEqual(t, after, before)
	require.Equal(t, before-after, removed)

	removed, err = s.DeleteIncomplete(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func testTruncate(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s, Sale(1, nov5, nine, 1, "Beauty", 1, 10))
	require.NoError(t, s.Truncate(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	insert(t, ctx, s, Sale(1, nov5, nine, 1, "Beauty", 1, 10))
}

func testDuplicateTransaction(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s, Sale(1, nov5, nine, 1, "Beauty", 1, 10))

	_, err := s.Insert(ctx, []sales.Record{
		Sale(2, nov5, nine, 1, "Beauty", 1, 10),
		Sale(1, nov5, nine, 1, "Beauty", 1, 10),
	})
	require.Error(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "failed batch must not be partially inserted")
}

func testRecordRoundTrip(t *testing.T, ctx context.Context, s store.Store) {
	want := Record(180, nov5, sales.TimeOfDay(19, 10, 45), 155, "Male", 57, "Clothing",
		4, 300, 93, 1200)
	insert(t, ctx, s, want)

	got, err := s.HighValueSales(ctx, 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]sales.Record{want}, got); diff != "" {
		t.Errorf("Record mismatch (-want +got):\n%s", diff)
	}
}

func testCounts(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Sale(1, nov5, nine, 7, "Clothing", 1, 10),
		Sale(2, nov5, nine, 7, "Beauty", 1, 10),
		Sale(3, nov5, nine, 8, "Electronics", 1, 10),
		Sale(4, nov5, nine, 9, "Beauty", 1, 10),
	)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	customers, err := s.DistinctCustomers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), customers)

	categories, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Beauty", "Clothing", "Electronics"}, categories)
}

func testSalesOn(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Sale(3, nov5, nine, 1, "Beauty", 1, 10),
		Sale(1, nov5, sales.TimeOfDay(23, 59, 59), 1, "Beauty", 1, 10),
		Sale(2, nov20, nine, 1, "Beauty", 1, 10),
	)

	records, err := s.SalesOn(ctx, nov5.Time)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, ids(records))

	records, err = s.SalesOn(ctx, dec1.Time)
	require.NoError(t, err)
	require.Empty(t, records)
}

func testCategorySalesInMonth(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Sale(1, nov5, nine, 1, "Clothing", 4, 100),
		Sale(2, nov20, nine, 1, "Clothing", 3, 100),
		Sale(3, nov20, nine, 1, "Beauty", 4, 100),
		Sale(4, oct31, nine, 1, "Clothing", 4, 100),
		Sale(5, dec1, nine, 1, "Clothing", 4, 100),
		Sale(6, sales.Date(2022, time.November, 30), nine, 1, "Clothing", 9, 100),
	)

	records, err := s.CategorySalesInMonth(ctx, sales.MonthFilter{
		Category: "Clothing", MinQuantity: 4, Year: 2022, Month: time.November,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 6}, ids(records))
}

func testSalesByCategory(t *testing.T, ctx context.Context, s store.Store) {
	records := []sales.Record{
		Sale(1, nov5, nine, 1, "Clothing", 1, 150.5),
		Sale(2, nov5, nine, 2, "Clothing", 2, 49.5),
		Sale(3, nov5, nine, 3, "Beauty", 1, 25),
		Sale(4, nov5, nine, 4, "Electronics", 3, 900),
	}
	insert(t, ctx, s, records...)

	got, err := s.SalesByCategory(ctx)
	require.NoError(t, err)

	want := []sales.CategorySales{
		{Category: "Beauty", NetSale: 25, TotalOrders: 1},
		{Category: "Clothing", NetSale: 200, TotalOrders: 2},
		{Category: "Electronics", NetSale: 900, TotalOrders: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SalesByCategory mismatch (-want +got):\n%s", diff)
	}

	var net, total float64
	for _, c := range got {
		net += c.NetSale
	}
	for _, r := range records {
		total += r.TotalSale.Float64
	}
	require.InDelta(t, total, net, 1e-9)
}

func testAverageAge(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Record(1, nov5, nine, 1, "Female", 20, "Beauty", 1, 10, 2, 10),
		Record(2, nov5, nine, 2, "Female", 21, "Beauty", 1, 10, 2, 10),
		Record(3, nov5, nine, 3, "Male", 21, "Beauty", 1, 10, 2, 10),
		Record(4, nov5, nine, 4, "Male", 64, "Clothing", 1, 10, 2, 10),
	)

	avg, err := s.AverageAge(ctx, "Beauty")
	require.NoError(t, err)
	require.InDelta(t, 20.67, avg, 1e-9)

	_, err = s.AverageAge(ctx, "Garden")
	require.True(t, errors.Is(err, sales.ErrNoRecords), "Expected ErrNoRecords, got %v", err)
}

func testHighValueSales(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Sale(1, nov5, nine, 1, "Electronics", 1, 1000),
		Sale(2, nov5, nine, 1, "Electronics", 2, 1000.01),
		Sale(3, nov5, nine, 1, "Electronics", 4, 2000),
		Sale(4, nov5, nine, 1, "Beauty", 1, 30),
	)

	records, err := s.HighValueSales(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, ids(records))
}

func testTransactionsByCategoryGender(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Record(1, nov5, nine, 1, "Male", 30, "Clothing", 1, 10, 2, 10),
		Record(2, nov5, nine, 2, "Female", 30, "Clothing", 1, 10, 2, 10),
		Record(3, nov5, nine, 3, "Female", 30, "Beauty", 1, 10, 2, 10),
		Record(4, nov5, nine, 4, "Female", 30, "Beauty", 1, 10, 2, 10),
		Record(5, nov5, nine, 5, "Male", 30, "Beauty", 1, 10, 2, 10),
	)

	got, err := s.TransactionsByCategoryGender(ctx)
	require.NoError(t, err)

	want := []sales.CategoryGenderCount{
		{Category: "Beauty", Gender: "Female", Transactions: 2},
		{Category: "Clothing", Gender: "Female", Transactions: 1},
		{Category: "Beauty", Gender: "Male", Transactions: 1},
		{Category: "Clothing", Gender: "Male", Transactions: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TransactionsByCategoryGender mismatch (-want +got):\n%s", diff)
	}
}

func testBestMonths(t *testing.T, ctx context.Context, s store.Store) {
	day := func(y int, m time.Month) pgtype.Date { return sales.Date(y, m, 10) }

	insert(t, ctx, s,
		// 2022: Jan and Feb tie at 100, Mar 50, Apr 10.
		Sale(1, day(2022, time.January), nine, 1, "Beauty", 1, 50),
		Sale(2, day(2022, time.January), nine, 1, "Beauty", 1, 150),
		Sale(3, day(2022, time.February), nine, 1, "Beauty", 1, 100),
		Sale(4, day(2022, time.March), nine, 1, "Beauty", 1, 50),
		Sale(5, day(2022, time.April), nine, 1, "Beauty", 1, 10),
		// 2023 ranks independently.
		Sale(6, day(2023, time.June), nine, 1, "Beauty", 1, 100),
		Sale(7, day(2023, time.July), nine, 1, "Beauty", 1, 20),
		Sale(8, day(2023, time.August), nine, 1, "Beauty", 1, 5),
	)

	got, err := s.BestMonths(ctx, 2)
	require.NoError(t, err)

	want := []sales.MonthlyAverage{
		{Year: 2022, Month: 1, AvgSale: 100, Rank: 1},
		{Year: 2022, Month: 2, AvgSale: 100, Rank: 1},
		{Year: 2022, Month: 3, AvgSale: 50, Rank: 2},
		{Year: 2023, Month: 6, AvgSale: 100, Rank: 1},
		{Year: 2023, Month: 7, AvgSale: 20, Rank: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BestMonths mismatch (-want +got):\n%s", diff)
	}

	got, err = s.BestMonths(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func testTopCustomers(t *testing.T, ctx context.Context, s store.Store) {
	var records []sales.Record
	totals := make(map[int32]float64)
	id := int64(0)
	for customer := int32(1); customer <= 8; customer++ {
		for n := int32(0); n < customer%3+1; n++ {
			id++
			total := float64(customer*37%11+1) * 25
			records = append(records, Sale(id, nov5, nine, customer, "Clothing", 1, total))
			totals[customer] += total
		}
	}
	insert(t, ctx, s, records...)

	got, err := s.TopCustomers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i-1].TotalSales, got[i].TotalSales,
			"rows %d and %d not strictly descending", i-1, i)
	}

	independent := make([]sales.CustomerSales, 0, len(totals))
	for customer, total := range totals {
		independent = append(independent, sales.CustomerSales{CustomerID: customer, TotalSales: total})
	}
	sort.Slice(independent, func(i, j int) bool {
		if independent[i].TotalSales != independent[j].TotalSales {
			return independent[i].TotalSales > independent[j].TotalSales
		}
		return independent[i].CustomerID < independent[j].CustomerID
	})
	if diff := cmp.Diff(independent[:5], got); diff != "" {
		t.Errorf("TopCustomers mismatch (-want +got):\n%s", diff)
	}

	got, err = s.TopCustomers(ctx, 50)
	require.NoError(t, err)
	require.Len(t, got, len(totals))
}

func testUniqueCustomersByCategory(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Sale(1, nov5, nine, 1, "Clothing", 1, 10),
		Sale(2, nov5, nine, 1, "Clothing", 1, 10),
		Sale(3, nov5, nine, 2, "Clothing", 1, 10),
		Sale(4, nov5, nine, 1, "Beauty", 1, 10),
	)

	got, err := s.UniqueCustomersByCategory(ctx)
	require.NoError(t, err)

	want := []sales.CategoryCustomers{
		{Category: "Beauty", UniqueCustomers: 1},
		{Category: "Clothing", UniqueCustomers: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UniqueCustomersByCategory mismatch (-want +got):\n%s", diff)
	}
}

func testShiftCounts(t *testing.T, ctx context.Context, s store.Store) {
	insert(t, ctx, s,
		Sale(1, nov5, sales.TimeOfDay(9, 0, 0), 1, "Beauty", 1, 10),
		Sale(2, nov5, sales.TimeOfDay(13, 0, 0), 1, "Beauty", 1, 10),
		Sale(3, nov5, sales.TimeOfDay(18, 0, 0), 1, "Beauty", 1, 10),
		Sale(4, nov5, sales.TimeOfDay(11, 59, 59), 1, "Beauty", 1, 10),
		Sale(5, nov5, sales.TimeOfDay(12, 0, 0), 1, "Beauty", 1, 10),
		Sale(6, nov5, sales.TimeOfDay(17, 59, 59), 1, "Beauty", 1, 10),
		Sale(7, nov5, sales.TimeOfDay(0, 0, 0), 1, "Beauty", 1, 10),
	)

	got, err := s.ShiftCounts(ctx)
	require.NoError(t, err)

	want := []sales.ShiftCount{
		{Shift: sales.Morning, Orders: 3},
		{Shift: sales.Afternoon, Orders: 3},
		{Shift: sales.Evening, Orders: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ShiftCounts mismatch (-want +got):\n%s", diff)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)

	var sum int64
	for _, c := range got {
		sum += c.Orders
	}
	require.Equal(t, count, sum)
}

func testShiftCountsEmpty(t *testing.T, ctx context.Context, s store.Store) {
	got, err := s.ShiftCounts(ctx)
	require.NoError(t, err)

	want := []sales.ShiftCount{
		{Shift: sales.Morning},
		{Shift: sales.Afternoon},
		{Shift: sales.Evening},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ShiftCounts mismatch (-want +got):\n%s", diff)
	}
}

func testMetadata(t *testing.T, ctx context.Context, s store.Store) {
	got, err := s.Metadata(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, s.SaveMetadata(ctx, map[string]string{
		"backend":        s.Name(),
		"last_load_rows": "3",
	}))
	require.NoError(t, s.SaveMetadata(ctx, map[string]string{
		"last_load_rows": "2",
	}))

	got, err = s.Metadata(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"backend":        s.Name(),
		"last_load_rows": "2",
	}, got)
}
