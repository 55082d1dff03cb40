//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package workload implements the concurrent report executor.
package workload

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-sales/internal/analysis"
	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// DefaultParallelism is the number of queries run at once when unset.
const DefaultParallelism = 4

// ExecutorConfig holds configuration for the report executor.
type ExecutorConfig struct {
	Queries     store.Queries
	Definitions []analysis.Definition
	Params      analysis.Params
	Parallelism int
}

// QueryResult holds the result of one catalogue query.
type QueryResult struct {
	// Name identifies the query.
	Name string

	// Table is the query result.
	Table *sales.Table

	// Duration is how long the query took.
	Duration time.Duration
}

// Executor runs a set of read-only catalogue queries concurrently.
type Executor struct {
	queries     store.Queries
	definitions []analysis.Definition
	params      analysis.Params
	parallelism int

	// Metrics
	totalQueries    atomic.Int64
	successQueries  atomic.Int64
	failedQueries   atomic.Int64
	totalDurationNs atomic.Int64
	startTime       time.Time
	elapsed         time.Duration

	results []QueryResult
}

// NewExecutor creates a new report executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Queries == nil {
		return nil, errors.New("executor requires a store")
	}
	if len(cfg.Definitions) == 0 {
		return nil, errors.New("executor requires at least one query")
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	return &Executor{
		queries:     cfg.Queries,
		definitions: cfg.Definitions,
		params:      cfg.Params,
		parallelism: parallelism,
	}, nil
}

// Run executes every query with bounded parallelism and returns the results
// in definition order. The first failure cancels the remaining queries.
func (e *Executor) Run(ctx context.Context) ([]QueryResult, error) {
	e.startTime = time.Now()

	logging.Info().
		Int("queries", len(e.definitions)).
		Int("parallelism", e.parallelism).
		Msg("Starting report")

	results := make([]QueryResult, len(e.definitions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i, def := range e.definitions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			table, err := def.Run(gctx, e.queries, e.params)
			duration := time.Since(start)

			e.totalQueries.Add(1)
			e.totalDurationNs.Add(duration.Nanoseconds())

			if err != nil {
				e.failedQueries.Add(1)
				logging.Debug().
					Err(err).
					Str("query", def.Name).
					Msg("Query failed")
				if errors.Is(err, sales.ErrQuery) {
					return err
				}
				return fmt.Errorf("query %s failed: %w", def.Name, err)
			}

			e.successQueries.Add(1)
			logging.Debug().
				Str("query", def.Name).
				Int("rows", len(table.Rows)).
				Dur("duration", duration).
				Msg("Query complete")

			results[i] = QueryResult{Name: def.Name, Table: table, Duration: duration}
			return nil
		})
	}

	err := g.Wait()
	e.elapsed = time.Since(e.startTime)
	if err != nil {
		return nil, err
	}

	e.results = results
	return results, nil
}

// Tables returns the result tables of results in order.
func Tables(results []QueryResult) []*sales.Table {
	tables := make([]*sales.Table, len(results))
	for i, r := range results {
		tables[i] = r.Table
	}
	return tables
}

// PrintSummary logs a final summary of the report run.
func (e *Executor) PrintSummary() {
	total := e.totalQueries.Load()
	durationNs := e.totalDurationNs.Load()

	var avgLatencyMs float64
	if total > 0 {
		avgLatencyMs = float64(durationNs) / float64(total) / 1e6
	}

	logging.Info().
		Dur("duration", e.elapsed).
		Int64("total_queries", total).
		Int64("successful", e.successQueries.Load()).
		Int64("failed", e.failedQueries.Load()).
		Float64("avg_latency_ms", avgLatencyMs).
		Msg("Final summary")

	for _, r := range e.results {
		logging.Info().
			Str("query", r.Name).
			Int("rows", len(r.Table.Rows)).
			Float64("latency_ms", float64(r.Duration.Nanoseconds())/1e6).
			Msg("")
	}
}
