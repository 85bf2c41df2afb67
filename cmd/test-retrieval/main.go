// Test program to demonstrate evidence retrieval and edit-request routing
// against a local corpus
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/memodraft/internal/classify"
	"github.com/ppiankov/memodraft/internal/evidence"
	"github.com/ppiankov/memodraft/internal/model"
)

func main() {
	corpus := flag.String("corpus", "business_memo_cases.csv", "evidence corpus CSV path")
	flag.Parse()

	fmt.Println("=== Evidence Retrieval Test ===")
	fmt.Println()

	index := evidence.OpenIndex(*corpus, evidence.DefaultTopK, nil)
	if index.Len() == 0 {
		fmt.Fprintf(os.Stderr, "No cases loaded from %s\n", *corpus)
	}

	topics := flag.Args()
	if len(topics) == 0 {
		topics = []string{
			"Q3 sales results for Product X",
			"Hiring freeze for engineering",
		}
	}

	for _, topic := range topics {
		fmt.Printf("Topic: %s\n", topic)
		fmt.Println(strings.Repeat("-", 60))

		points := evidence.Merge(nil, index.Retrieve(topic, nil), 0)
		if len(points) == 0 {
			fmt.Println("  (no relevant evidence, draft would be ungrounded)")
		}
		for _, p := range points {
			fmt.Printf("  - %s [%s]\n", p.Text, p.Source)
		}

		// Re-query the way a content request does: new cases only
		followUp := topic + " . User request: add the missing numbers"
		more := index.Retrieve(followUp, points.Sources())
		merged := evidence.Merge(points, more, model.DefaultConfig().Evidence.RequeryLimit)
		fmt.Printf("\n  After content re-query: %d point(s) (+%d)\n", len(merged), len(merged)-len(points))
		fmt.Println()
	}

	fmt.Println("=== Edit Request Routing ===")
	fmt.Println()

	classifier := classify.NewClassifier()
	requests := []string{
		"Please add the KPI numbers",
		"Make it shorter and more formal",
		"Missing the timeline",
		"Sounds good but tone it down",
	}
	for _, r := range requests {
		kind, tag := classifier.Explain(r)
		if tag == "" {
			tag = "-"
		}
		fmt.Printf("  %-40s %-8s (rule: %s)\n", r, kind, tag)
	}
}
