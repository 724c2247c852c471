package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/logging"
	"github.com/jmourtada/strata/internal/store"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Strata - activation trees and level snapshots over a property graph",
		Long: `strata manages an activation tree of use cases and tags, and captures
named snapshots of externally generated object levels.

Use cases form a tree whose active flags scope which tags are selected;
saves record which base objects each generated level aggregated at
capture time.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newUseCaseCmd(),
		newTagCmd(),
		newSaveCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "strata version %s\n", version)
			}
		},
	}
}

// cmdEnv is the shared wiring every data command needs.
type cmdEnv struct {
	cfg     *config.Config
	store   store.GraphStore
	log     *logging.Loggers
	dataDir string
}

// openEnv loads configuration and opens the SQLite store for the
// command's project root. Callers must call close when done.
func openEnv(cmd *cobra.Command) (*cmdEnv, func(), error) {
	root, _ := cmd.Flags().GetString("root")

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	dataDir := cfg.ResolveDataDir(root)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s not initialized. Run 'strata init' first", dataDir)
	}

	gs, err := store.NewSQLiteGraphStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening graph store: %w", err)
	}

	env := &cmdEnv{
		cfg:     cfg,
		store:   gs,
		log:     logging.New(cfg.Logging.Level, os.Stderr, dataDir),
		dataDir: dataDir,
	}
	closeFn := func() {
		env.log.Close()
		gs.Close()
	}
	return env, closeFn, nil
}
