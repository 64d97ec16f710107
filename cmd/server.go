package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamj-ops/liferx-sub001/internal/db"
	"github.com/adamj-ops/liferx-sub001/internal/scheduler"
	"github.com/adamj-ops/liferx-sub001/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the contract and tool-dispatch server",
	Long:  `Starts the HTTP server: the streaming chat proxy, the internal tool API, pipeline triggers and the operator event socket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = serverPort
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "liferx.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv, err := server.New(*cfg, database)
		if err != nil {
			return fmt.Errorf("building server: %w", err)
		}

		// Recurring sweeps, enabled per configured schedule.
		sched := scheduler.New()
		engine := srv.Engine()
		broadcaster := srv.Broadcaster()
		err = sched.AddJob("outreach.discovery", cfg.Schedules.Discovery, func(ctx context.Context) error {
			candidates, err := engine.Discover(ctx, cfg.DefaultOrgID, cfg.Pipelines.DiscoveryLimit)
			if err != nil {
				return err
			}
			broadcaster.Publish("outreach.discovery", map[string]any{
				"candidates": len(candidates),
			})
			return nil
		})
		if err != nil {
			return fmt.Errorf("scheduling discovery: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "liferx server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Hub: %s\n", hubLabel(cfg.HubURL))

		return srv.Start()
	},
}

func hubLabel(url string) string {
	if url == "" {
		return "not configured (degraded local mode)"
	}
	return url
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serverCmd)
}
