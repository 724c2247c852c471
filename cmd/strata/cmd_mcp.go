package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/logging"
	"github.com/jmourtada/strata/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Start an MCP (Model Context Protocol) server exposing strata's
tag selection and snapshot tools to MCP clients. The server speaks
stdio and blocks until the client disconnects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			dataDir := cfg.ResolveDataDir(root)
			if _, err := os.Stat(dataDir); os.IsNotExist(err) {
				return fmt.Errorf("%s not initialized. Run 'strata init' first", dataDir)
			}

			srv, err := mcp.NewServer(&mcp.ServerConfig{
				Name:    "strata",
				Version: version,
				DataDir: dataDir,
				Config:  cfg,
				Log:     logging.NewLogger(cfg.Logging.Level, os.Stderr),
			})
			if err != nil {
				return fmt.Errorf("starting MCP server: %w", err)
			}

			return srv.Run(cmd.Context())
		},
	}
}
