package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/memodraft/internal/evidence"
	"github.com/ppiankov/memodraft/internal/model"
	"github.com/ppiankov/memodraft/internal/worker"
)

var (
	batchFile       string
	retrieveTimeout time.Duration
	retrieveJSON    bool
)

// retrieveCmd represents the retrieve command
var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query...]",
	Short: "Retrieve evidence for one or more queries",
	Long: `Retrieve runs queries against the evidence corpus in parallel and merges
the results into one deduplicated evidence set, capped at evidence.merge_limit.

Each argument is one query. With --batch, queries are read from a file
(one per line, '#' comments allowed).

Example:
  memodraft retrieve "budget freeze"
  memodraft retrieve "budget freeze" "hiring plan" --json
  memodraft retrieve --batch queries.txt --concurrency 8`,
	RunE: runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().StringVar(&batchFile, "batch", "", "file with one query per line")
	retrieveCmd.Flags().Int("concurrency", 0, "number of concurrent workers (default from config)")
	retrieveCmd.Flags().Int("top-k", 0, "cases kept per query (default from config)")
	retrieveCmd.Flags().DurationVar(&retrieveTimeout, "timeout", time.Minute, "total timeout for retrieval")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "print the merged evidence set as JSON")

	_ = viper.BindPFlag("corpus.concurrency", retrieveCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("corpus.top_k", retrieveCmd.Flags().Lookup("top-k"))
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	queries := append([]string{}, args...)
	if batchFile != "" {
		fromFile, err := worker.ReadQueriesFromFile(batchFile)
		if err != nil {
			return fmt.Errorf("read batch file: %w", err)
		}
		queries = append(queries, fromFile...)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries given (pass arguments or --batch <file>)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), retrieveTimeout)
	defer cancel()

	index := evidence.OpenIndex(cfg.Corpus.Path, cfg.Corpus.TopK, logger)
	merged, err := retrieveAll(ctx, index, queries, cfg.Corpus.Concurrency, cfg.Evidence.MergeLimit)
	if err != nil {
		return err
	}

	if retrieveJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(merged)
	}

	if len(merged) == 0 {
		fmt.Println("No relevant evidence found.")
		return nil
	}
	for _, p := range merged {
		if p.Source != "" {
			fmt.Printf("- %s (%s)\n", p.Text, p.Source)
		} else {
			fmt.Printf("- %s\n", p.Text)
		}
	}
	fmt.Fprintf(os.Stderr, "\n✓ %d evidence point(s) from %d source(s)\n", len(merged), len(merged.Sources()))
	return nil
}

// retrieveAll runs queries concurrently and merges their points in query
// order. A failed query is reported and skipped; cancellation before every
// query ran is an error.
func retrieveAll(ctx context.Context, r worker.Retriever, queries []string, concurrency, limit int) (model.EvidenceSet, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := worker.NewBatchRetriever(r, concurrency).RetrieveQueries(ctx, queries)
	if len(results) < len(queries) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("retrieval interrupted after %d of %d queries: %w", len(results), len(queries), err)
		}
	}

	var merged model.EvidenceSet
	failures := 0
	for _, res := range results {
		if res.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Query, res.Error)
			continue
		}
		merged = evidence.Merge(merged, res.Points, limit)
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d queries failed", failures)
	}
	return merged, nil
}
