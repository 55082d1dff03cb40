package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-sales/internal/store"
)

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store status",
		Long: `Print the metadata recorded by init, load and clean together with the
current number of records in the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := o.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			metadata, err := s.Metadata(ctx)
			if err != nil {
				return fmt.Errorf("failed to read metadata: %w", err)
			}
			if metadata[store.MetaInitializedAt] == "" {
				cmd.Println("Store has not been initialized")
				return nil
			}

			cmd.Printf("%-20s %s\n", "connection", o.cfg.Connection)
			for _, key := range store.MetadataKeys {
				if value, ok := metadata[key]; ok {
					cmd.Printf("%-20s %s\n", key, value)
				}
			}

			count, err := s.Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count records: %w", err)
			}
			cmd.Printf("%-20s %d\n", "records", count)
			return nil
		},
	}
}
