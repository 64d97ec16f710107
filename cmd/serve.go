package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adamj-ops/liferx-sub001/internal/db"
	"github.com/adamj-ops/liferx-sub001/internal/mcpserver"
	"github.com/adamj-ops/liferx-sub001/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tool dispatch and brain search for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		database, err := db.Open(filepath.Join(cfg.DataDir, "liferx.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		// Reuse the full server wiring for the gateway and index; no
		// HTTP listener is started here.
		stack, err := server.New(*cfg, database)
		if err != nil {
			return fmt.Errorf("building tool stack: %w", err)
		}

		mcpserver.Version = Version
		fmt.Fprintln(os.Stderr, "liferx MCP server started on stdio")

		srv := mcpserver.NewServer(stack.Gateway(), stack.Index(), cfg.DefaultOrgID)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
