package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/memodraft/internal/classify"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <edit request>",
	Short: "Show whether an edit request asks for content or style",
	Long: `Classify runs the edit-request rules against the given text. Content
requests trigger a fresh evidence retrieval during drafting; everything else
is treated as style feedback.

Example:
  memodraft classify "Please add the Q3 numbers"
  memodraft classify "Make it shorter"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		kind, tag := classify.NewClassifier().Explain(text)

		if tag == "" {
			tag = "-"
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (rule: %s)\n", kind, tag)
		return err
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
