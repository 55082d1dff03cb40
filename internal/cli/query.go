//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pgEdge/pgedge-sales/internal/analysis"
	"github.com/pgEdge/pgedge-sales/internal/config"
	"github.com/pgEdge/pgedge-sales/internal/output"
	"github.com/pgEdge/pgedge-sales/internal/store"
	"github.com/pgEdge/pgedge-sales/internal/workload"
)

// queryFlags holds the per-command query parameter and output flags.
type queryFlags struct {
	params config.QueryConfig
	format string
}

// register adds the query parameter flags to fs.
func (f *queryFlags) register(fs *pflag.FlagSet) {
	def := config.DefaultConfig().Query
	fs.StringVar(&f.params.Date, "date", def.Date,
		"sale day for sales_on_date (YYYY-MM-DD)")
	fs.StringVar(&f.params.Category, "category", def.Category,
		"category for category_month_sales")
	fs.IntVar(&f.params.MinQuantity, "min-quantity", def.MinQuantity,
		"minimum quantity for category_month_sales")
	fs.StringVar(&f.params.Month, "month", def.Month,
		"month for category_month_sales (YYYY-MM)")
	fs.StringVar(&f.params.AgeCategory, "age-category", def.AgeCategory,
		"category for average_age")
	fs.Float64Var(&f.params.Threshold, "threshold", def.Threshold,
		"exclusive total sale threshold for high_value_sales")
	fs.IntVar(&f.params.Ranks, "ranks", def.Ranks,
		"dense ranks per year kept by best_months")
	fs.IntVar(&f.params.Limit, "limit", def.Limit,
		"number of customers returned by top_customers")
	fs.StringVar(&f.format, "format", "",
		"output format ("+strings.Join(output.Formats(), ", ")+")")
}

// apply overrides cfg with the flags that were set on the command line.
func (f *queryFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	q := &cfg.Query
	if fs.Changed("date") {
		q.Date = f.params.Date
	}
	if fs.Changed("category") {
		q.Category = f.params.Category
	}
	if fs.Changed("min-quantity") {
		q.MinQuantity = f.params.MinQuantity
	}
	if fs.Changed("month") {
		q.Month = f.params.Month
	}
	if fs.Changed("age-category") {
		q.AgeCategory = f.params.AgeCategory
	}
	if fs.Changed("threshold") {
		q.Threshold = f.params.Threshold
	}
	if fs.Changed("ranks") {
		q.Ranks = f.params.Ranks
	}
	if fs.Changed("limit") {
		q.Limit = f.params.Limit
	}
	if f.format != "" {
		cfg.Format = f.format
	}
}

func newQueryCmd(o *options) *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query <name>",
		Short: "Run one catalogue query",
		Long: `Run a single aggregate query against the store and print its result.
Use 'pgedge-sales queries' to list the available queries and the
parameters each one reads.

Example:
  pgedge-sales query record_count
  pgedge-sales query sales_on_date --date 2022-11-05
  pgedge-sales query top_customers --limit 10 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd.Flags(), o.cfg)

			def, err := analysis.Get(args[0])
			if err != nil {
				return err
			}
			if err := o.cfg.ValidateOutput(); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := o.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			table, err := def.Run(ctx, s, params(o.cfg.Query))
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), o.cfg.Format, table)
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newReportCmd(o *options) *cobra.Command {
	var (
		flags       queryFlags
		queries     []string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run catalogue queries concurrently",
		Long: `Run several aggregate queries concurrently and print their results in
catalogue order. With no --queries the whole catalogue is run. The first
failing query cancels the rest.

Example:
  pgedge-sales report
  pgedge-sales report --queries record_count,top_customers --parallelism 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd.Flags(), o.cfg)
			if len(queries) > 0 {
				o.cfg.Report.Queries = queries
			}
			if parallelism > 0 {
				o.cfg.Report.Parallelism = parallelism
			}

			ctx := cmd.Context()
			s, err := o.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			return runReport(ctx, cmd, o, s)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringSliceVar(&queries, "queries", nil,
		"comma-separated query names (default: all)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0,
		"maximum number of queries run at once (default: 4)")

	return cmd
}

// runReport runs the configured report queries against s and renders the
// results to the command's output.
func runReport(ctx context.Context, cmd *cobra.Command, o *options, s store.Queries) error {
	if err := o.cfg.ValidateReport(); err != nil {
		return err
	}

	definitions, err := analysis.Select(o.cfg.Report.Queries)
	if err != nil {
		return err
	}

	executor, err := workload.NewExecutor(workload.ExecutorConfig{
		Queries:     s,
		Definitions: definitions,
		Params:      params(o.cfg.Query),
		Parallelism: o.cfg.Report.Parallelism,
	})
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	results, err := executor.Run(ctx)
	if err != nil {
		return err
	}
	executor.PrintSummary()

	return output.Render(cmd.OutOrStdout(), o.cfg.Format, workload.Tables(results)...)
}
