package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/store"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the strata data directory",
		Long: `Create the data directory and an empty graph store.

By default the store lives in <root>/.strata; set store.dir in
~/.strata/config.yaml or STRATA_STORE_DIR to relocate it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			dataDir := cfg.ResolveDataDir(root)

			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dataDir, err)
			}

			// Opening the store creates the database and schema.
			gs, err := store.NewSQLiteGraphStore(dataDir)
			if err != nil {
				return fmt.Errorf("failed to initialize graph store: %w", err)
			}
			if err := gs.Close(); err != nil {
				return fmt.Errorf("failed to close graph store: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized strata store in %s\n", filepath.Clean(dataDir))
			return nil
		},
	}
}
