package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/store"
	"github.com/pgEdge/pgedge-sales/pkg/version"
)

func newInitCmd(o *options) *cobra.Command {
	var dropExisting bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the record store schema",
		Long: `Create the retail_sales table, its indexes and the metadata table in
the configured store. Existing tables are kept unless --drop-existing is
given.

Example:
  pgedge-sales init --backend sqlite --connection ./sales.db
  pgedge-sales init --backend postgres --connection "postgres://..." --drop-existing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dropExisting {
				o.cfg.Init.DropExisting = true
			}
			return runInit(cmd.Context(), o)
		},
	}

	cmd.Flags().BoolVar(&dropExisting, "drop-existing", false,
		"drop existing schema before initialization")

	return cmd
}

func runInit(ctx context.Context, o *options) error {
	s, err := o.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	logging.Info().
		Str("backend", s.Name()).
		Msg("Initializing store")

	// Check if already initialized by another backend
	metadata, err := s.Metadata(ctx)
	if err == nil {
		if existing := metadata[store.MetaBackend]; existing != "" && existing != s.Name() &&
			!o.cfg.Init.DropExisting {
			return fmt.Errorf(
				"store was initialized by the '%s' backend; use --drop-existing to reinitialize",
				existing)
		}
	}

	// Drop existing schema if requested
	if o.cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := s.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	return initSchema(ctx, s)
}

// initSchema creates the schema and records initialization metadata.
func initSchema(ctx context.Context, s store.Store) error {
	logging.Info().Msg("Creating schema")
	if err := s.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	err := s.SaveMetadata(ctx, map[string]string{
		store.MetaBackend:       s.Name(),
		store.MetaVersion:       version.Short(),
		store.MetaInitializedAt: store.Timestamp(time.Now()),
	})
	if err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("backend", s.Name()).
		Msg("Store initialization complete")

	return nil
}
