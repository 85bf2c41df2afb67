package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/memodraft/internal/llm"
	"github.com/ppiankov/memodraft/internal/model"
	"github.com/ppiankov/memodraft/internal/preference"
	"github.com/ppiankov/memodraft/internal/store"
)

// prefsCmd represents the prefs command
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show preferences learned from feedback history",
	Long: `Prefs tallies the stored feedback and prints the drafting directives
that the next memo will receive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()

		history, err := st.ListFeedback(context.Background())
		if err != nil {
			return fmt.Errorf("load feedback: %w", err)
		}

		return writePrefs(cmd.OutOrStdout(), history)
	},
}

func writePrefs(w io.Writer, history []model.FeedbackRecord) error {
	counts := preference.Tally(history)
	snap := preference.Infer(history)

	lines := []string{
		fmt.Sprintf("Feedback records: %d", len(history)),
		fmt.Sprintf("  %-18s %d", preference.BucketTooLong, counts[preference.BucketTooLong]),
		fmt.Sprintf("  %-18s %d", preference.BucketTooShort, counts[preference.BucketTooShort]),
		fmt.Sprintf("  %-18s %d", preference.BucketFormal, counts[preference.BucketFormal]),
		"",
		"Directives:",
	}
	directives := llm.PreferenceLines(snap)
	if len(directives) == 0 {
		directives = []string{"- none (no learned preferences yet)"}
	}
	lines = append(lines, directives...)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(prefsCmd)
}
