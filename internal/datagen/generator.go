//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-sales/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/sales"
)

// Categories are the product categories generated.
var Categories = []string{"Clothing", "Beauty", "Electronics"}

var (
	categoryWeights = []int{36, 31, 33}
	unitPrices      = []float64{25, 30, 50, 300, 500}
	hours           = func() []int {
		h := make([]int, 24)
		for i := range h {
			h[i] = i
		}
		return h
	}()
)

// Config configures synthetic sales file generation.
type Config struct {
	// Rows is the number of sales rows to write.
	Rows int64

	// NullProbability is the chance that any one field other than the
	// transaction id is left blank.
	NullProbability float64

	// Seed makes output reproducible; zero picks a random seed.
	Seed uint64

	// Profile names the traffic profile used to draw sale dates and times.
	Profile string

	// Start and End bound the sale dates (inclusive).
	Start time.Time
	End   time.Time

	// Customers is the number of distinct customer ids drawn from.
	Customers int

	// Delimiter separates fields; defaults to a comma.
	Delimiter rune

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultConfig returns default generation settings: two years of sales
// across 155 customers.
func DefaultConfig() Config {
	return Config{
		Rows:             2000,
		NullProbability:  0.001,
		Profile:          profiles.DefaultProfile,
		Start:            time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		Customers:        155,
		Delimiter:        ',',
		ProgressInterval: DefaultBatchConfig().ProgressInterval,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Rows < 0 {
		return errors.New("rows must not be negative")
	}
	if c.NullProbability < 0 || c.NullProbability > 1 {
		return errors.New("null probability must be between 0 and 1")
	}
	if c.End.Before(c.Start) {
		return errors.New("end date must not be before start date")
	}
	if c.Customers < 1 {
		return errors.New("customers must be at least 1")
	}
	return nil
}

// Generator writes synthetic sales rows in the loader's input format.
type Generator struct {
	cfg     Config
	faker   *Faker
	profile profiles.Profile

	days       []time.Time
	dayWeights []int
	hourWeight map[time.Weekday][]int
}

// NewGenerator creates a new generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profile, err := profiles.Get(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if cfg.Delimiter == 0 {
		cfg.Delimiter = ','
	}

	faker := NewFaker()
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	}

	g := &Generator{
		cfg:        cfg,
		faker:      faker,
		profile:    profile,
		hourWeight: make(map[time.Weekday][]int),
	}

	// Busy days get proportionally more sales; hour weights depend only on
	// the weekday so they are computed once per weekday.
	start := truncateDay(cfg.Start)
	for d := start; !d.After(truncateDay(cfg.End)); d = d.AddDate(0, 0, 1) {
		weights, ok := g.hourWeight[d.Weekday()]
		if !ok {
			levels := profiles.HourWeights(profile, d)
			weights = make([]int, len(levels))
			for h, level := range levels {
				weights[h] = int(math.Round(level * 1000))
			}
			g.hourWeight[d.Weekday()] = weights
		}

		total := 0
		for _, w := range weights {
			total += w
		}
		g.days = append(g.days, d)
		g.dayWeights = append(g.dayWeights, total)
	}

	return g, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Record generates the sale with the given transaction id.
func (g *Generator) Record(id int64) sales.Record {
	f := g.faker

	day := ChooseWeighted(f, g.days, g.dayWeights)
	hour := ChooseWeighted(f, hours, g.hourWeight[day.Weekday()])
	quantity := f.Int(1, 4)
	price := Choose(f, unitPrices)
	cogs := Round(price * f.Float64(0.1, 0.5))

	r := sales.Record{
		TransactionID: id,
		SaleDate:      pgtype.Date{Time: day, Valid: true},
		SaleTime:      sales.TimeOfDay(hour, f.Int(0, 59), f.Int(0, 59)),
		CustomerID:    pgtype.Int4{Int32: int32(f.Int(1, g.cfg.Customers)), Valid: true},
		Gender:        pgtype.Text{String: f.Gender(), Valid: true},
		Age:           pgtype.Int4{Int32: int32(f.Int(18, 64)), Valid: true},
		Category:      pgtype.Text{String: ChooseWeighted(f, Categories, categoryWeights), Valid: true},
		Quantity:      pgtype.Int4{Int32: int32(quantity), Valid: true},
		PricePerUnit:  pgtype.Float8{Float64: price, Valid: true},
		COGS:          pgtype.Float8{Float64: cogs, Valid: true},
		TotalSale:     pgtype.Float8{Float64: price * float64(quantity), Valid: true},
	}

	p := g.cfg.NullProbability
	if f.Chance(p) {
		r.SaleDate.Valid = false
	}
	if f.Chance(p) {
		r.SaleTime.Valid = false
	}
	if f.Chance(p) {
		r.CustomerID.Valid = false
	}
	if f.Chance(p) {
		r.Gender.Valid = false
	}
	if f.Chance(p) {
		r.Age.Valid = false
	}
	if f.Chance(p) {
		r.Category.Valid = false
	}
	if f.Chance(p) {
		r.Quantity.Valid = false
	}
	if f.Chance(p) {
		r.PricePerUnit.Valid = false
	}
	if f.Chance(p) {
		r.COGS.Valid = false
	}
	if f.Chance(p) {
		r.TotalSale.Valid = false
	}

	return r
}

// Generate writes a header line and cfg.Rows sales rows to w and returns
// the number of rows written.
func (g *Generator) Generate(ctx context.Context, w io.Writer) (int64, error) {
	cw := csv.NewWriter(w)
	cw.Comma = g.cfg.Delimiter

	if err := cw.Write(sales.Columns); err != nil {
		return 0, err
	}

	progress := NewProgressReporter("Generating data", "sales file", g.cfg.Rows, g.cfg.ProgressInterval)
	row := make([]string, len(sales.Columns))

	var written int64
	for id := int64(1); id <= g.cfg.Rows; id++ {
		if (id-1)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}

		for i, v := range g.Record(id).Values() {
			row[i] = formatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return written, err
		}
		written++
		progress.Update(1)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, err
	}
	progress.Done()

	return written, nil
}

// GenerateFile writes the sales file at path.
func (g *Generator) GenerateFile(ctx context.Context, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := g.Generate(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Info().
		Str("path", path).
		Str("profile", g.profile.Name()).
		Int64("rows", n).
		Msg("Generated sales file")

	return n, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
