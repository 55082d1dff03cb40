package workload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/pgEdge/pgedge-sales/internal/analysis"
	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// nopQueries satisfies store.Queries for definitions that never call it.
type nopQueries struct {
	store.Queries
}

func definition(name string, delay time.Duration, err error, running, peak *atomic.Int64) analysis.Definition {
	return analysis.Definition{
		Name: name,
		Run: func(ctx context.Context, _ store.Queries, _ analysis.Params) (*sales.Table, error) {
			if running != nil {
				n := running.Add(1)
				defer running.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			if err != nil {
				return nil, err
			}
			t := sales.NewTable(name, name, "value")
			t.Append(name)
			return t, nil
		},
	}
}

func TestNewExecutorValidation(t *testing.T) {
	if _, err := NewExecutor(ExecutorConfig{Definitions: analysis.All()}); err == nil {
		t.Error("Expected error without a store")
	}
	if _, err := NewExecutor(ExecutorConfig{Queries: nopQueries{}}); err == nil {
		t.Error("Expected error without queries")
	}

	e, err := NewExecutor(ExecutorConfig{Queries: nopQueries{}, Definitions: analysis.All()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if e.parallelism != DefaultParallelism {
		t.Errorf("Expected default parallelism %d, got %d", DefaultParallelism, e.parallelism)
	}
}

func TestRunOrderAndParallelism(t *testing.T) {
	var running, peak atomic.Int64
	defs := []analysis.Definition{
		definition("slow", 40*time.Millisecond, nil, &running, &peak),
		definition("fast", time.Millisecond, nil, &running, &peak),
		definition("medium", 20*time.Millisecond, nil, &running, &peak),
		definition("fast2", time.Millisecond, nil, &running, &peak),
		definition("medium2", 20*time.Millisecond, nil, &running, &peak),
	}

	e, err := NewExecutor(ExecutorConfig{Queries: nopQueries{}, Definitions: defs, Parallelism: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	results, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results) != len(defs) {
		t.Fatalf("Expected %d results, got %d", len(defs), len(results))
	}
	for i, r := range results {
		if r.Name != defs[i].Name || r.Table.Name != defs[i].Name {
			t.Errorf("Result %d: expected %s, got %s", i, defs[i].Name, r.Name)
		}
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("Expected at most 2 concurrent queries, got %d", p)
	}
	if got := e.successQueries.Load(); got != int64(len(defs)) {
		t.Errorf("Expected %d successful queries, got %d", len(defs), got)
	}

	tables := Tables(results)
	if len(tables) != len(defs) || tables[0].Name != "slow" {
		t.Errorf("Unexpected tables: %v", tables)
	}

	e.PrintSummary()
}

func TestRunFailureCancels(t *testing.T) {
	boom := errors.New("boom")
	defs := []analysis.Definition{
		definition("fails", time.Millisecond, boom, nil, nil),
		definition("blocked", 10*time.Second, nil, nil, nil),
	}

	e, err := NewExecutor(ExecutorConfig{Queries: nopQueries{}, Definitions: defs, Parallelism: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	start := time.Now()
	_, err = e.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if err.Error() != "query fails failed: boom" {
		t.Errorf("Unexpected error message: %s", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Expected failure to cancel the blocked query")
	}
}

func TestRunQueryError(t *testing.T) {
	p := analysis.DefaultParams()
	p.Limit = 0

	def, err := analysis.Get("top_customers")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	e, err := NewExecutor(ExecutorConfig{Queries: nopQueries{}, Definitions: []analysis.Definition{def}, Params: p})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = e.Run(context.Background())
	var qe *sales.QueryError
	if !errors.As(err, &qe) || qe.Param != "limit" {
		t.Errorf("Expected limit query error, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewExecutor(ExecutorConfig{
		Queries:     nopQueries{},
		Definitions: []analysis.Definition{definition("q", time.Second, nil, nil, nil)},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
