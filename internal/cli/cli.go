//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-sales.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-sales/internal/analysis"
	"github.com/pgEdge/pgedge-sales/internal/config"
	"github.com/pgEdge/pgedge-sales/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/store"
	"github.com/pgEdge/pgedge-sales/pkg/version"
)

// options holds the global flags and the loaded configuration shared by
// every subcommand.
type options struct {
	cfgFile    string
	backend    string
	connection string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the pgedge-sales command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "pgedge-sales",
		Short: "Retail sales analytics over PostgreSQL or SQLite",
		Long: `pgedge-sales loads a delimited file of retail sale transactions into
a flat record store, removes records with missing fields, and answers a
fixed catalogue of aggregate questions over the cleaned data.

The store is either a PostgreSQL database or a SQLite file. Results are
printed as text tables, CSV, JSON, or YAML.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.initConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&o.cfgFile, "config", "",
		"config file (default: ./pgedge-sales.yaml)")
	rootCmd.PersistentFlags().StringVar(&o.backend, "backend", "",
		"record store backend ("+strings.Join(store.List(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&o.connection, "connection", "",
		"PostgreSQL connection string or SQLite database path")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "",
		"log format (pretty, json)")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd(o))
	rootCmd.AddCommand(newLoadCmd(o))
	rootCmd.AddCommand(newCleanCmd(o))
	rootCmd.AddCommand(newQueryCmd(o))
	rootCmd.AddCommand(newReportCmd(o))
	rootCmd.AddCommand(newRunCmd(o))
	rootCmd.AddCommand(newGenerateCmd(o))
	rootCmd.AddCommand(newStatusCmd(o))
	rootCmd.AddCommand(newQueriesCmd())
	rootCmd.AddCommand(newProfilesCmd())

	return rootCmd
}

func (o *options) initConfig(cmd *cobra.Command) error {
	var err error
	o.cfg, err = config.Load(o.cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if o.backend != "" {
		o.cfg.Backend = o.backend
	}
	if o.connection != "" {
		o.cfg.Connection = o.connection
	}
	if o.logLevel != "" {
		o.cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		o.cfg.LogFormat = o.logFormat
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  o.cfg.LogLevel,
		Pretty: o.cfg.LogFormat != "json",
		Output: cmd.ErrOrStderr(),
	})

	return nil
}

// openStore validates the global configuration and connects to the
// configured backend.
func (o *options) openStore(ctx context.Context) (store.Store, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, o.cfg.Backend, o.cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", o.cfg.Backend, err)
	}
	return s, nil
}

// requireInitialized fails unless init has been run against s.
func requireInitialized(ctx context.Context, s store.Store) error {
	metadata, err := s.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if metadata[store.MetaInitializedAt] == "" {
		return fmt.Errorf("store has not been initialized; run 'pgedge-sales init' first")
	}
	return nil
}

// params converts the configured query inputs to catalogue parameters.
func params(q config.QueryConfig) analysis.Params {
	return analysis.Params{
		Date:        q.Date,
		Category:    q.Category,
		MinQuantity: q.MinQuantity,
		Month:       q.Month,
		AgeCategory: q.AgeCategory,
		Threshold:   q.Threshold,
		Ranks:       q.Ranks,
		Limit:       q.Limit,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Info())
		},
	}
}

func newQueriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "List available queries",
		Long: `List the catalogue of aggregate queries that can be run with the
'query' and 'report' commands, with the parameters each one reads.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Available queries:")
			cmd.Println()
			for _, def := range analysis.All() {
				line := fmt.Sprintf("  %-30s - %s", def.Name, def.Description)
				if len(def.Params) > 0 {
					line += fmt.Sprintf(" [%s]", strings.Join(def.Params, ", "))
				}
				cmd.Println(line)
			}
			cmd.Println()
			cmd.Println("Use 'pgedge-sales query <name>' to run one query.")
		},
	}
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List available sales profiles",
		Long: `List the sales traffic profiles used by 'generate' to distribute
synthetic sales across the hours of the day and the days of the week.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Available sales profiles:")
			cmd.Println()
			for _, name := range profiles.List() {
				p, err := profiles.Get(name)
				if err != nil {
					continue
				}
				cmd.Printf("  %-15s - %s\n", name, p.Description())
			}
			cmd.Println()
			cmd.Println("Profiles affect:")
			cmd.Println("  - Sale times throughout the day")
			cmd.Println("  - Weekend vs weekday sales volume")
		},
	}
}
