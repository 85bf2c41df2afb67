package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/memodraft/internal/score"
	"github.com/ppiankov/memodraft/internal/store"
)

var (
	statsJSON   bool
	statsSorted bool
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded runs",
	Long: `Stats reads the run log and prints total runs, approval rate, average
revision cycles, grounded ratio and per-topic averages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()

		outcomes, err := st.ListOutcomes(context.Background())
		if err != nil {
			return fmt.Errorf("load outcomes: %w", err)
		}

		summary := score.NewScorer().Calculate(outcomes)
		if statsSorted {
			score.SortTopicsByCycles(summary.Topics)
		}

		if statsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		return score.WriteText(cmd.OutOrStdout(), summary)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the summary as JSON")
	statsCmd.Flags().BoolVar(&statsSorted, "by-cycles", false, "order topics by average cycles, highest first")
}
