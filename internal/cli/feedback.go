package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/memodraft/internal/model"
	"github.com/ppiankov/memodraft/internal/review"
	"github.com/ppiankov/memodraft/internal/store"
)

var (
	feedbackTopic  string
	feedbackCycle  int
	feedbackRating string
	feedbackLimit  int
)

// feedbackCmd represents the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record or list memo feedback",
}

var feedbackAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Append a feedback record",
	Long: `Add stores a rating and/or free-text comment. Comments such as
"too long" or "more professional" shape future drafts.

Example:
  memodraft feedback add "Too long, keep it shorter" --rating 3 --topic "Q3 budget"`,
	RunE: runFeedbackAdd,
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored feedback, newest last",
	Args:  cobra.NoArgs,
	RunE:  runFeedbackList,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.AddCommand(feedbackAddCmd)
	feedbackCmd.AddCommand(feedbackListCmd)

	feedbackAddCmd.Flags().StringVar(&feedbackTopic, "topic", "", "memo topic the feedback refers to")
	feedbackAddCmd.Flags().IntVar(&feedbackCycle, "cycle", 0, "revision cycle the feedback refers to")
	feedbackAddCmd.Flags().StringVar(&feedbackRating, "rating", "", "rating from 1 to 5")

	feedbackListCmd.Flags().IntVar(&feedbackLimit, "limit", 20, "show at most this many records (0 = all)")
}

func runFeedbackAdd(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))

	rating, err := review.ParseRating(feedbackRating)
	if err != nil {
		if errors.Is(err, review.ErrMalformedRating) {
			logger.Warn("Ignoring malformed rating", zap.String("input", feedbackRating))
		} else {
			return err
		}
	}

	if rating == nil && text == "" {
		return fmt.Errorf("nothing to record: give a comment and/or --rating")
	}

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	rec := model.FeedbackRecord{
		Topic:     feedbackTopic,
		Cycle:     feedbackCycle,
		Rating:    rating,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if err := st.AppendFeedback(context.Background(), rec); err != nil {
		return fmt.Errorf("store feedback: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Feedback saved")
	return nil
}

func runFeedbackList(cmd *cobra.Command, args []string) error {
	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	records, err := st.ListFeedback(context.Background())
	if err != nil {
		return fmt.Errorf("load feedback: %w", err)
	}

	if feedbackLimit > 0 && len(records) > feedbackLimit {
		records = records[len(records)-feedbackLimit:]
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No feedback recorded yet.")
		return nil
	}
	for _, r := range records {
		rating := "-"
		if r.Rating != nil {
			rating = fmt.Sprintf("%d", *r.Rating)
		}
		fmt.Fprintf(out, "%s  %-24s cycle=%d rating=%s  %s\n",
			r.Timestamp.Format(time.RFC3339), r.Topic, r.Cycle, rating, r.Text)
	}
	return nil
}
