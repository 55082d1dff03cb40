//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-sales/internal/ingest"
	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

func newRunCmd(o *options) *cobra.Command {
	var (
		flags       queryFlags
		queries     []string
		parallelism int
		delimiter   string
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Load, clean and report in one invocation",
		Long: `Create the schema if needed, replace the store contents with the rows
of a sales file, remove incomplete records, then run the report. The
pipeline stops cleanly on Ctrl+C.

Example:
  pgedge-sales run sales.csv
  pgedge-sales run sales.csv --connection :memory: --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd.Flags(), o.cfg)
			if len(queries) > 0 {
				o.cfg.Report.Queries = queries
			}
			if parallelism > 0 {
				o.cfg.Report.Parallelism = parallelism
			}
			if delimiter != "" {
				o.cfg.Load.Delimiter = delimiter
			}
			if err := o.cfg.ValidateReport(); err != nil {
				return err
			}

			// Handle shutdown signals
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := o.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			return runPipeline(ctx, cmd, o, s, args[0])
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringSliceVar(&queries, "queries", nil,
		"comma-separated query names (default: all)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0,
		"maximum number of queries run at once (default: 4)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "",
		"field delimiter (default: ,)")

	return cmd
}

func runPipeline(ctx context.Context, cmd *cobra.Command, o *options, s store.Store, path string) error {
	metadata, err := s.Metadata(ctx)
	if err != nil || metadata[store.MetaInitializedAt] == "" {
		if err := initSchema(ctx, s); err != nil {
			return err
		}
	}

	result, err := runLoad(ctx, o, s, path)
	if err != nil {
		return err
	}

	removed, err := ingest.Clean(ctx, s)
	if err != nil {
		return err
	}

	logging.Info().
		Str("load_id", result.LoadID.String()).
		Int64("loaded", result.Rows).
		Int64("removed", removed).
		Msg("Sales data ready")

	if err := runReport(ctx, cmd, o, s); err != nil {
		if ctx.Err() != nil {
			logging.Info().Msg("Report stopped")
		}
		return err
	}
	return nil
}
