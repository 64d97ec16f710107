package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamj-ops/liferx-sub001/internal/db"
	"github.com/adamj-ops/liferx-sub001/internal/guests"
	"github.com/adamj-ops/liferx-sub001/internal/interviews"
	"github.com/adamj-ops/liferx-sub001/internal/outreach"
	"github.com/adamj-ops/liferx-sub001/internal/progress"
)

var (
	discoverOrgID string
	discoverLimit int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Sweep the guest database for outreach-eligible candidates",
	Long:  `Evaluates every scored guest against the outreach eligibility gates and prints the candidates that pass, with the reasons for each verdict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "liferx.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		orgID := discoverOrgID
		if orgID == "" {
			orgID = cfg.DefaultOrgID
		}
		limit := discoverLimit
		if limit <= 0 {
			limit = cfg.Pipelines.DiscoveryLimit
		}

		guestStore := guests.NewStore(database)
		ivStore := interviews.NewStore(database)
		engine := outreach.NewEngine(guestStore, ivStore,
			cfg.Pipelines.ScoreThreshold, cfg.Pipelines.PresenceThreshold)

		ctx := cmd.Context()
		scored, err := guestStore.ListAboveScore(ctx, orgID, cfg.Pipelines.ScoreThreshold, limit)
		if err != nil {
			return fmt.Errorf("listing scored guests: %w", err)
		}
		if len(scored) == 0 {
			fmt.Println("No guests meet the score threshold yet.")
			return nil
		}

		reporter := progress.NewReporter("Evaluating guests")
		reporter.Start(len(scored))

		var eligible int
		for i, g := range scored {
			reporter.Update(i+1, g.Name)
			verdict, err := engine.Evaluate(ctx, orgID, g.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: evaluating %s: %v\n", g.Name, err)
				continue
			}
			if !verdict.Eligible {
				continue
			}
			eligible++
			fmt.Printf("%s (%s)\n", g.Name, g.ID)
			fmt.Printf("  %s\n", strings.Join(verdict.Reasons, "; "))
		}
		reporter.Finish()

		fmt.Printf("\n%d of %d candidates eligible for outreach\n", eligible, len(scored))
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverOrgID, "org", "", "Organization UUID (defaults to configured org)")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 0, "Maximum candidates to evaluate (defaults to configured limit)")
	rootCmd.AddCommand(discoverCmd)
}
