//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/pgEdge/pgedge-sales/internal/store"
	"github.com/pgEdge/pgedge-sales/internal/store/storetest"
	"github.com/pgEdge/pgedge-sales/internal/testutil"
)

func TestStoreConformance(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, "store")

	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(context.Background(), connStr)
		if err != nil {
			t.Fatalf("Failed to open store: %v", err)
		}
		return s
	})
}

func TestRegistered(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)

	s, err := store.Open(context.Background(), BackendName, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	if s.Name() != BackendName {
		t.Errorf("Expected backend %s, got %s", BackendName, s.Name())
	}
}
