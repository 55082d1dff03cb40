package ingest

// convert.go turns raw CSV cells into typed record fields. An empty cell is
// NULL; anything else must parse as the column type.

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-sales/internal/sales"
)

var (
	dateLayouts = []string{"2006-01-02", "2006/01/02", "1/2/2006", "01/02/2006"}
	timeLayouts = []string{"15:04:05", "15:04", "15:04:05.999999"}
)

// cleanCell removes whitespace, a leading byte order mark and surrounding
// quotes left behind by spreadsheet exports.
func cleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// columnError names the column a cell failed to parse for.
type columnError struct {
	column string
	value  string
	err    error
}

func (e *columnError) Error() string {
	return fmt.Sprintf("column %s: invalid value %q: %v", e.column, e.value, e.err)
}

func (e *columnError) Unwrap() error {
	return e.err
}

var (
	errNegative    = errors.New("must not be negative")
	errNotPositive = errors.New("must be positive")
	errNotFinite   = errors.New("must be a finite number")
)

// parseRecord converts one row of cells into a record.
func parseRecord(fields []string) (sales.Record, error) {
	if len(fields) != len(sales.Columns) {
		return sales.Record{}, fmt.Errorf("expected %d fields, got %d", len(sales.Columns), len(fields))
	}

	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = cleanCell(f)
	}

	var (
		r   sales.Record
		err error
	)

	if cells[0] == "" {
		return r, &columnError{column: sales.Columns[0], err: errors.New("transaction id is required")}
	}
	if r.TransactionID, err = strconv.ParseInt(cells[0], 10, 64); err != nil {
		return r, &columnError{column: sales.Columns[0], value: cells[0], err: err}
	}

	parsers := []func(string) error{
		nil,
		func(s string) (err error) { r.SaleDate, err = toDate(s); return },
		func(s string) (err error) { r.SaleTime, err = toTime(s); return },
		func(s string) (err error) { r.CustomerID, err = toInt4(s, 0); return },
		func(s string) error { r.Gender = toText(s); return nil },
		func(s string) (err error) { r.Age, err = toInt4(s, 0); return },
		func(s string) error { r.Category = toText(s); return nil },
		func(s string) (err error) { r.Quantity, err = toInt4(s, 1); return },
		func(s string) (err error) { r.PricePerUnit, err = toFloat8(s); return },
		func(s string) (err error) { r.COGS, err = toFloat8(s); return },
		func(s string) (err error) { r.TotalSale, err = toFloat8(s); return },
	}
	for i := 1; i < len(parsers); i++ {
		if err := parsers[i](cells[i]); err != nil {
			return r, &columnError{column: sales.Columns[i], value: cells[i], err: err}
		}
	}

	return r, nil
}

func toText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toInt4 parses an integer no smaller than min.
func toInt4(s string, min int64) (pgtype.Int4, error) {
	if s == "" {
		return pgtype.Int4{}, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{}, err
	}
	if v < min {
		if min > 0 {
			return pgtype.Int4{}, errNotPositive
		}
		return pgtype.Int4{}, errNegative
	}
	return pgtype.Int4{Int32: int32(v), Valid: true}, nil
}

func toFloat8(s string) (pgtype.Float8, error) {
	if s == "" {
		return pgtype.Float8{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pgtype.Float8{}, errNotFinite
	}
	if v < 0 {
		return pgtype.Float8{}, errNegative
	}
	return pgtype.Float8{Float64: v, Valid: true}, nil
}

func toDate(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}, nil
		}
	}
	return pgtype.Date{}, fmt.Errorf("expected one of %s", strings.Join(dateLayouts, ", "))
}

func toTime(s string) (pgtype.Time, error) {
	if s == "" {
		return pgtype.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second + time.Duration(t.Nanosecond())
			return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}, nil
		}
	}
	return pgtype.Time{}, fmt.Errorf("expected one of %s", strings.Join(timeLayouts, ", "))
}
