package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-sales/internal/sales"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Beauty ", "Beauty"},
		{"\ufefftransactions_id", "transactions_id"},
		{`"Clothing"`, "Clothing"},
		{`" 42 "`, "42"},
		{`"`, `"`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := cleanCell(tt.in); got != tt.want {
			t.Errorf("cleanCell(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRecord(t *testing.T) {
	fields := strings.Split("180,2022-11-05,10:47:21,155,Male,57,Clothing,4,300,93,1200", ",")

	got, err := parseRecord(fields)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := sales.Record{
		TransactionID: 180,
		SaleDate:      sales.Date(2022, time.November, 5),
		SaleTime:      sales.TimeOfDay(10, 47, 21),
		CustomerID:    pgtype.Int4{Int32: 155, Valid: true},
		Gender:        pgtype.Text{String: "Male", Valid: true},
		Age:           pgtype.Int4{Int32: 57, Valid: true},
		Category:      pgtype.Text{String: "Clothing", Valid: true},
		Quantity:      pgtype.Int4{Int32: 4, Valid: true},
		PricePerUnit:  pgtype.Float8{Float64: 300, Valid: true},
		COGS:          pgtype.Float8{Float64: 93, Valid: true},
		TotalSale:     pgtype.Float8{Float64: 1200, Valid: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Record mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecordNulls(t *testing.T) {
	got, err := parseRecord(strings.Split("7,,,,,,,,,,", ","))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got.TransactionID != 7 {
		t.Errorf("Expected transaction id 7, got %d", got.TransactionID)
	}
	if missing := got.MissingFields(); len(missing) != len(sales.Columns)-1 {
		t.Errorf("Expected %d missing fields, got %v", len(sales.Columns)-1, missing)
	}
}

func TestParseRecordLayouts(t *testing.T) {
	tests := []struct {
		date string
		time string
		want pgtype.Time
	}{
		{"2022/11/05", "09:05:00", sales.TimeOfDay(9, 5, 0)},
		{"11/5/2022", "09:05", sales.TimeOfDay(9, 5, 0)},
		{"11/05/2022", "09:05:00.5", pgtype.Time{Microseconds: sales.TimeOfDay(9, 5, 0).Microseconds + 500000, Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			fields := []string{"1", tt.date, tt.time, "1", "Female", "30", "Beauty", "1", "50", "12", "50"}
			got, err := parseRecord(fields)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.SaleDate.Time.Equal(sales.Date(2022, time.November, 5).Time) {
				t.Errorf("Expected 2022-11-05, got %v", got.SaleDate.Time)
			}
			if got.SaleTime != tt.want {
				t.Errorf("Expected time %v, got %v", tt.want, got.SaleTime)
			}
		})
	}
}

func TestParseRecordErrors(t *testing.T) {
	valid := []string{"1", "2022-11-05", "09:00:00", "1", "Female", "30", "Beauty", "1", "50", "12", "50"}

	tests := []struct {
		name   string
		index  int
		value  string
		column string
	}{
		{"blank id", 0, "", "transactions_id"},
		{"non-numeric id", 0, "abc", "transactions_id"},
		{"bad date", 1, "05.11.2022", "sale_date"},
		{"bad time", 2, "9am", "sale_time"},
		{"bad customer", 3, "x1", "customer_id"},
		{"negative age", 5, "-1", "age"},
		{"zero quantity", 7, "0", "quantity"},
		{"fractional quantity", 7, "1.5", "quantity"},
		{"bad price", 8, "$50", "price_per_unit"},
		{"infinite cogs", 9, "Inf", "cogs"},
		{"negative total", 10, "-3", "total_sale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := append([]string(nil), valid...)
			fields[tt.index] = tt.value

			_, err := parseRecord(fields)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var ce *columnError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected column error, got %T: %v", err, err)
			}
			if ce.column != tt.column {
				t.Errorf("Expected column %s, got %s", tt.column, ce.column)
			}
		})
	}
}

func TestParseRecordFieldCount(t *testing.T) {
	_, err := parseRecord([]string{"1", "2022-11-05"})
	if err == nil || !strings.Contains(err.Error(), "expected 11 fields, got 2") {
		t.Errorf("Expected field count error, got %v", err)
	}
}
