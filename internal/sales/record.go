//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sales defines the retail sale record, the typed results of the
// aggregate queries, and the errors shared by the loader and the stores.
package sales

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TableName is the name of the flat record table in every backend.
const TableName = "retail_sales"

// Columns lists the record columns in input-file and table order.
var Columns = []string{
	"transactions_id",
	"sale_date",
	"sale_time",
	"customer_id",
	"gender",
	"age",
	"category",
	"quantity",
	"price_per_unit",
	"cogs",
	"total_sale",
}

// Record is a single sale. Every field except TransactionID may be NULL
// until the cleaning pass has run.
type Record struct {
	TransactionID int64
	SaleDate      pgtype.Date
	SaleTime      pgtype.Time
	CustomerID    pgtype.Int4
	Gender        pgtype.Text
	Age           pgtype.Int4
	Category      pgtype.Text
	Quantity      pgtype.Int4
	PricePerUnit  pgtype.Float8
	COGS          pgtype.Float8
	TotalSale     pgtype.Float8
}

// MissingFields returns the column names of the NULL fields in r.
func (r Record) MissingFields() []string {
	present := []bool{
		true,
		r.SaleDate.Valid,
		r.SaleTime.Valid,
		r.CustomerID.Valid,
		r.Gender.Valid,
		r.Age.Valid,
		r.Category.Valid,
		r.Quantity.Valid,
		r.PricePerUnit.Valid,
		r.COGS.Valid,
		r.TotalSale.Valid,
	}

	var missing []string
	for i, ok := range present {
		if !ok {
			missing = append(missing, Columns[i])
		}
	}
	return missing
}

// Complete reports whether no field of r is NULL.
func (r Record) Complete() bool {
	return len(r.MissingFields()) == 0
}

// Values returns the record as table cells in column order. NULL fields
// are returned as nil, dates and times as formatted strings.
func (r Record) Values() []any {
	return []any{
		r.TransactionID,
		DateValue(r.SaleDate),
		TimeValue(r.SaleTime),
		int4Value(r.CustomerID),
		textValue(r.Gender),
		int4Value(r.Age),
		textValue(r.Category),
		int4Value(r.Quantity),
		float8Value(r.PricePerUnit),
		float8Value(r.COGS),
		float8Value(r.TotalSale),
	}
}

// Date builds a valid pgtype.Date for the given calendar day.
func Date(year int, month time.Month, day int) pgtype.Date {
	return pgtype.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// TimeOfDay builds a valid pgtype.Time from hour, minute and second.
func TimeOfDay(hour, minute, second int) pgtype.Time {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

// Hour returns the hour of day of a valid pgtype.Time.
func Hour(t pgtype.Time) int {
	return int(t.Microseconds / int64(time.Hour/time.Microsecond))
}

// DateValue formats a date as YYYY-MM-DD, or returns nil when NULL.
func DateValue(d pgtype.Date) any {
	if !d.Valid {
		return nil
	}
	return d.Time.Format(time.DateOnly)
}

// TimeValue formats a time of day as HH:MM:SS, or returns nil when NULL.
func TimeValue(t pgtype.Time) any {
	if !t.Valid {
		return nil
	}
	return FormatTime(t)
}

// FormatTime formats a time of day as HH:MM:SS.
func FormatTime(t pgtype.Time) string {
	total := t.Microseconds / int64(time.Second/time.Microsecond)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

func int4Value(v pgtype.Int4) any {
	if !v.Valid {
		return nil
	}
	return v.Int32
}

func textValue(v pgtype.Text) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

func float8Value(v pgtype.Float8) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
