package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MonthLayout is the accepted format of a month filter.
const MonthLayout = "2006-01"

// MonthFilter selects records of one category sold in one calendar month
// with at least MinQuantity units.
type MonthFilter struct {
	Category    string
	MinQuantity int
	Year        int
	Month       time.Month
}

// Start returns the first day of the filtered month.
func (f MonthFilter) Start() time.Time {
	return time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day after the filtered month.
func (f MonthFilter) End() time.Time {
	return f.Start().AddDate(0, 1, 0)
}

// ParseDate parses a YYYY-MM-DD date filter for the named query.
func ParseDate(query, value string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &QueryError{Query: query, Param: "date", Value: value, Err: err}
	}
	return d, nil
}

// ParseMonthFilter validates and builds a MonthFilter for the named query.
func ParseMonthFilter(query, category string, minQuantity int, month string) (MonthFilter, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return MonthFilter{}, &QueryError{Query: query, Param: "category", Value: category,
			Err: errors.New("category is required")}
	}
	if minQuantity < 0 {
		return MonthFilter{}, &QueryError{Query: query, Param: "min quantity",
			Value: fmt.Sprint(minQuantity), Err: errors.New("must be non-negative")}
	}

	m, err := time.Parse(MonthLayout, strings.TrimSpace(month))
	if err != nil {
		return MonthFilter{}, &QueryError{Query: query, Param: "month", Value: month, Err: err}
	}

	return MonthFilter{
		Category:    category,
		MinQuantity: minQuantity,
		Year:        m.Year(),
		Month:       m.Month(),
	}, nil
}

// RequirePositive returns a QueryError unless v is at least 1.
func RequirePositive(query, param string, v int) error {
	if v < 1 {
		return &QueryError{Query: query, Param: param, Value: fmt.Sprint(v),
			Err: errors.New("must be at least 1")}
	}
	return nil
}
