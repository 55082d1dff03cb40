package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-sales/internal/ingest"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

func newLoadCmd(o *options) *cobra.Command {
	var (
		batchSize int
		delimiter string
		clean     bool
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a sales file into the store",
		Long: `Replace the contents of the store with the rows of a delimited sales
file. The header line is skipped and blank fields are stored as NULL. If
any row is malformed the store is left empty.

Example:
  pgedge-sales load sales.csv
  pgedge-sales load sales.csv --delimiter ";" --clean`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize > 0 {
				o.cfg.Load.BatchSize = batchSize
			}
			if delimiter != "" {
				o.cfg.Load.Delimiter = delimiter
			}
			if clean {
				o.cfg.Load.Clean = true
			}

			ctx := cmd.Context()
			s, err := o.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := requireInitialized(ctx, s); err != nil {
				return err
			}
			if _, err := runLoad(ctx, o, s, args[0]); err != nil {
				return err
			}
			if o.cfg.Load.Clean {
				removed, err := ingest.Clean(ctx, s)
				if err != nil {
					return err
				}
				cmd.Printf("Removed %d incomplete records\n", removed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0,
		"rows inserted per batch (default: 1000)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "",
		"field delimiter (default: ,)")
	cmd.Flags().BoolVar(&clean, "clean", false,
		"remove incomplete records after loading")

	return cmd
}

// runLoad loads path into s using the configured loader settings.
func runLoad(ctx context.Context, o *options, s store.Store, path string) (ingest.LoadResult, error) {
	if err := o.cfg.ValidateLoad(); err != nil {
		return ingest.LoadResult{}, err
	}
	delim, err := o.cfg.Load.DelimiterRune()
	if err != nil {
		return ingest.LoadResult{}, err
	}

	loader := ingest.NewLoader(s, ingest.Config{
		BatchSize:        o.cfg.Load.BatchSize,
		Delimiter:        delim,
		ProgressInterval: o.cfg.Load.ProgressInterval,
	})
	return loader.Load(ctx, path)
}

func newCleanCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove records with missing fields",
		Long: `Delete every record in the store that has at least one missing field
and print the number of records removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := o.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := requireInitialized(ctx, s); err != nil {
				return err
			}

			removed, err := ingest.Clean(ctx, s)
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d incomplete records\n", removed)
			return nil
		},
	}
}
