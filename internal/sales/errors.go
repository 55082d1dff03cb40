//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sales

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad is matched by every *LoadError.
	ErrLoad = errors.New("load failed")

	// ErrQuery is matched by every *QueryError.
	ErrQuery = errors.New("invalid query input")

	// ErrNoRecords is returned when an aggregate has no rows to work on.
	ErrNoRecords = errors.New("no matching records")
)

// LoadError reports a failed load. Line is the 1-based line of the source
// file that could not be parsed, or 0 when the failure is not tied to a row.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrLoad) true for any *LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// QueryError reports malformed filter input to a query.
type QueryError struct {
	Query string
	Param string
	Value string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: invalid %s %q: %v", e.Query, e.Param, e.Value, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrQuery) true for any *QueryError.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}
