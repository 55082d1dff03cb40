//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlite implements the record store on an embedded SQLite
// database. Dates and times are stored as ISO text so that they sort and
// compare lexically.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// BackendName is the registry name of this backend.
const BackendName = "sqlite"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Store is a record store backed by an SQLite database.
type Store struct {
	db  *sql.DB
	dsn string
}

// Open opens (creating if needed) the SQLite database at connection, which
// may be a file path, a file: URI, or ":memory:".
func Open(ctx context.Context, connection string) (store.Store, error) {
	if connection == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}

	if connection != MemoryDSN && !strings.HasPrefix(connection, "file:") {
		if err := os.MkdirAll(filepath.Dir(connection), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection, so everything shares one.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("database", connection).
		Msg("Opened SQLite database")

	return &Store{db: db, dsn: connection}, nil
}

// Name returns the backend name.
func (s *Store) Name() string {
	return BackendName
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Truncate removes every record.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+sales.TableName)
	return err
}

// Insert adds records inside one transaction.
func (s *Store) Insert(ctx context.Context, records []sales.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sales.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sales.TableName, strings.Join(sales.Columns, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Values()...); err != nil {
			return 0, fmt.Errorf("failed to insert transaction %d: %w", r.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	logging.Debug().
		Int("rows", len(records)).
		Msg("Inserted records")

	return int64(len(records)), nil
}

// DeleteIncomplete removes every record with a NULL field.
func (s *Store) DeleteIncomplete(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+sales.TableName+" WHERE "+store.IncompleteCondition())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SaveMetadata upserts metadata values.
func (s *Store) SaveMetadata(ctx context.Context, values map[string]string) error {
	if _, err := s.db.ExecContext(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sales_metadata (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Metadata returns all metadata values; an empty map if none were saved.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	metadata := make(map[string]string)

	var tables int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sales_metadata'
	`).Scan(&tables)
	if err != nil || tables == 0 {
		return metadata, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM sales_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}
	return metadata, rows.Err()
}

func init() {
	store.Register(BackendName, Open)
}
