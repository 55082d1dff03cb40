package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-sales/internal/datagen"
	"github.com/pgEdge/pgedge-sales/internal/datagen/profiles"
)

func newGenerateCmd(o *options) *cobra.Command {
	var (
		rows            int64
		nullProbability float64
		seed            uint64
		profile         string
		start           string
		end             string
		customers       int
		delimiter       string
	)

	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate a synthetic sales file",
		Long: `Write a synthetic sales file in the format read by 'load'. Sale days
and hours follow the chosen sales profile, and each field is left blank
with the given probability so the cleaner has something to remove.

Example:
  pgedge-sales generate sales.csv --rows 10000 --seed 42
  pgedge-sales generate sales.csv --profile high-street --null-probability 0.01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Override config with CLI flags
			g := &o.cfg.Generate
			fs := cmd.Flags()
			if fs.Changed("rows") {
				g.Rows = rows
			}
			if fs.Changed("null-probability") {
				g.NullProbability = nullProbability
			}
			if seed != 0 {
				g.Seed = seed
			}
			if profile != "" {
				g.Profile = profile
			}
			if start != "" {
				g.Start = start
			}
			if end != "" {
				g.End = end
			}
			if customers > 0 {
				g.Customers = customers
			}
			if delimiter != "" {
				o.cfg.Load.Delimiter = delimiter
			}

			if err := o.cfg.ValidateGenerate(); err != nil {
				return err
			}
			delim, err := o.cfg.Load.DelimiterRune()
			if err != nil {
				return err
			}
			startDate, endDate, err := g.DateRange()
			if err != nil {
				return err
			}

			generator, err := datagen.NewGenerator(datagen.Config{
				Rows:             g.Rows,
				NullProbability:  g.NullProbability,
				Seed:             g.Seed,
				Profile:          g.Profile,
				Start:            startDate,
				End:              endDate,
				Customers:        g.Customers,
				Delimiter:        delim,
				ProgressInterval: o.cfg.Load.ProgressInterval,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := generator.GenerateFile(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Wrote %d sales rows to %s\n", n, args[0])
			return nil
		},
	}

	cmd.Flags().Int64Var(&rows, "rows", 0,
		"number of rows to generate (default: 2000)")
	cmd.Flags().Float64Var(&nullProbability, "null-probability", 0,
		"chance of each field being left blank (default: 0.001)")
	cmd.Flags().Uint64Var(&seed, "seed", 0,
		"random seed for reproducible output (0 = random)")
	cmd.Flags().StringVar(&profile, "profile", "",
		"sales profile (default: "+profiles.DefaultProfile+")")
	cmd.Flags().StringVar(&start, "start", "",
		"first sale date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "",
		"last sale date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&customers, "customers", 0,
		"number of distinct customers (default: 155)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "",
		"field delimiter (default: ,)")

	return cmd
}
