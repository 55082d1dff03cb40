//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-sales/internal/db"
	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// BackendName is the registry name of this backend.
const BackendName = "postgres"

// Store is a record store backed by a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL using a libpq-style connection string or URL.
func Open(ctx context.Context, connection string) (store.Store, error) {
	pool, err := db.Connect(ctx, connection)
	if err != nil {
		return nil, err
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Name returns the backend name.
func (s *Store) Name() string {
	return BackendName
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Truncate removes every record.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE TABLE "+sales.TableName)
	return err
}

// Insert copies records into the table inside one transaction.
func (s *Store) Insert(ctx context.Context, records []sales.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{sales.TableName},
		sales.Columns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.TransactionID, r.SaleDate, r.SaleTime, r.CustomerID,
				r.Gender, r.Age, r.Category, r.Quantity,
				r.PricePerUnit, r.COGS, r.TotalSale,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	logging.Debug().
		Int64("rows", copied).
		Msg("Copied records")

	return copied, nil
}

// DeleteIncomplete removes every record with a NULL field.
func (s *Store) DeleteIncomplete(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM "+sales.TableName+" WHERE "+store.IncompleteCondition())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SaveMetadata upserts metadata values.
func (s *Store) SaveMetadata(ctx context.Context, values map[string]string) error {
	return db.SaveMetadata(ctx, s.pool, values)
}

// Metadata returns all metadata values.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	return db.GetAllMetadata(ctx, s.pool)
}

func init() {
	store.Register(BackendName, Open)
}
