//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest loads sales files into a record store and removes
// incomplete records from it.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-sales/internal/datagen"
	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// Config holds loader settings.
type Config struct {
	BatchSize        int
	Delimiter        rune
	ProgressInterval int64
}

// DefaultConfig returns default loader settings.
func DefaultConfig() Config {
	batch := datagen.DefaultBatchConfig()
	return Config{
		BatchSize:        batch.BatchSize,
		Delimiter:        ',',
		ProgressInterval: batch.ProgressInterval,
	}
}

// LoadResult describes a completed load.
type LoadResult struct {
	LoadID     uuid.UUID
	Source     string
	Rows       int64
	Incomplete int64
	Duration   time.Duration
}

// Loader replaces the contents of a store with the rows of a delimited file.
type Loader struct {
	store store.Store
	cfg   Config
}

// NewLoader creates a loader writing to s.
func NewLoader(s store.Store, cfg Config) *Loader {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = def.Delimiter
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = def.ProgressInterval
	}
	return &Loader{store: s, cfg: cfg}
}

// Load truncates the store and inserts every row of the file at path,
// skipping the header line. On failure the store is left empty and the
// returned error is a *sales.LoadError.
func (l *Loader) Load(ctx context.Context, path string) (LoadResult, error) {
	result := LoadResult{
		LoadID: uuid.New(),
		Source: path,
	}
	start := time.Now()

	logging.Info().
		Str("load_id", result.LoadID.String()).
		Str("source", path).
		Str("backend", l.store.Name()).
		Msg("Loading sales data")

	if err := l.store.Truncate(ctx); err != nil {
		return result, &sales.LoadError{Path: path, Err: fmt.Errorf("failed to truncate: %w", err)}
	}

	rows, incomplete, err := l.load(ctx, path)
	if err != nil {
		// Leave no partial load behind.
		if terr := l.store.Truncate(context.WithoutCancel(ctx)); terr != nil {
			logging.Warn().Err(terr).Msg("Failed to truncate after failed load")
		}
		return result, err
	}

	result.Rows = rows
	result.Incomplete = incomplete
	result.Duration = time.Since(start)

	logging.Info().
		Str("load_id", result.LoadID.String()).
		Int64("rows", rows).
		Int64("incomplete", incomplete).
		Dur("duration", result.Duration).
		Msg("Load complete")

	err = l.store.SaveMetadata(ctx, map[string]string{
		store.MetaLastLoadID:     result.LoadID.String(),
		store.MetaLastLoadSource: path,
		store.MetaLastLoadRows:   strconv.FormatInt(rows, 10),
		store.MetaLastLoadAt:     store.Timestamp(time.Now()),
	})
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to record load metadata")
	}

	return result, nil
}

func (l *Loader) load(ctx context.Context, path string) (rows, incomplete int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, &sales.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = l.cfg.Delimiter
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			logging.Warn().Str("source", path).Msg("Source file is empty")
			return 0, 0, nil
		}
		return 0, 0, readError(path, err)
	}

	progress := datagen.NewProgressReporter("Loading data", sales.TableName, 0, l.cfg.ProgressInterval)
	seen := make(map[int64]int)
	batch := make([]sales.Record, 0, l.cfg.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := l.store.Insert(ctx, batch)
		if err != nil {
			return &sales.LoadError{Path: path, Err: fmt.Errorf("failed to insert records: %w", err)}
		}
		progress.Update(n)
		batch = batch[:0]
		return nil
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, 0, readError(path, err)
		}
		line, _ := r.FieldPos(0)

		rec, err := parseRecord(fields)
		if err != nil {
			return 0, 0, &sales.LoadError{Path: path, Line: line, Err: err}
		}
		if first, ok := seen[rec.TransactionID]; ok {
			return 0, 0, &sales.LoadError{Path: path, Line: line,
				Err: fmt.Errorf("duplicate transaction id %d (first on line %d)", rec.TransactionID, first)}
		}
		seen[rec.TransactionID] = line

		if !rec.Complete() {
			incomplete++
			logging.Debug().
				Int("line", line).
				Int64("transaction_id", rec.TransactionID).
				Strs("missing", rec.MissingFields()).
				Msg("Row has missing fields")
		}

		batch = append(batch, rec)
		if len(batch) >= l.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return 0, 0, &sales.LoadError{Path: path, Line: line, Err: err}
			}
			if err := flush(); err != nil {
				return 0, 0, err
			}
		}
	}

	if err := flush(); err != nil {
		return 0, 0, err
	}
	progress.Done()

	return progress.Rows(), incomplete, nil
}

func readError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &sales.LoadError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &sales.LoadError{Path: path, Err: err}
}
