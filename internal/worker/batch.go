package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/memodraft/internal/model"
)

// Retriever looks up evidence for a query
type Retriever interface {
	Retrieve(query string, exclude map[string]bool) []model.EvidencePoint
}

// RetrieveJob represents one evidence query
type RetrieveJob struct {
	Query     string
	Exclude   map[string]bool
	Retriever Retriever
}

// Execute executes the retrieval job
func (j *RetrieveJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &RetrieveResult{Query: j.Query, Error: err}
	}
	return &RetrieveResult{
		Query:  j.Query,
		Points: j.Retriever.Retrieve(j.Query, j.Exclude),
	}
}

// RetrieveResult represents the result of a retrieval job
type RetrieveResult struct {
	Query  string
	Points []model.EvidencePoint
	Error  error
}

// GetError returns the error from the retrieval result
func (r *RetrieveResult) GetError() error {
	return r.Error
}

// BatchRetriever runs many queries against one shared retriever
type BatchRetriever struct {
	retriever   Retriever
	concurrency int
}

// NewBatchRetriever creates a new batch retriever
func NewBatchRetriever(retriever Retriever, concurrency int) *BatchRetriever {
	return &BatchRetriever{
		retriever:   retriever,
		concurrency: concurrency,
	}
}

// RetrieveQueries runs queries concurrently; results follow input order
func (b *BatchRetriever) RetrieveQueries(ctx context.Context, queries []string) []*RetrieveResult {
	if len(queries) == 0 {
		return []*RetrieveResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for _, q := range queries {
		pool.Submit(&RetrieveJob{
			Query:     q,
			Retriever: b.retriever,
		})
	}

	results := pool.Wait()

	out := make([]*RetrieveResult, len(results))
	for i, result := range results {
		out[i] = result.(*RetrieveResult)
	}

	return out
}

// RetrieveFile reads queries from a file and runs them concurrently
func (b *BatchRetriever) RetrieveFile(ctx context.Context, filePath string) ([]*RetrieveResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.RetrieveQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads queries from a file (one per line).
// Blank lines and '#' comments are skipped; duplicates keep the first.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
