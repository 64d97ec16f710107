package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamj-ops/liferx-sub001/internal/config"
	"github.com/adamj-ops/liferx-sub001/internal/logx"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "liferx",
	Short: "Agent contract enforcement and tool dispatch for the LifeRx hub",
	Long: `LifeRx sits between chat callers and the reasoning Hub. It validates
every agent response against the versioned contract, dispatches internal
tools with explainable results, and runs the enrichment, repurposing and
outreach pipelines over the guest database.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logx.Init(verbose, true)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".liferx.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `liferx init` to create a config file", err)
	}
	return cfg, nil
}
