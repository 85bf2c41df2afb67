package score

import (
	"fmt"
	"io"
	"sort"

	"github.com/ppiankov/memodraft/internal/model"
)

// TopicStats aggregates runs that share a topic
type TopicStats struct {
	Topic         string  `json:"topic"`
	Runs          int     `json:"runs"`
	AverageCycles float64 `json:"average_cycles"`
}

// Summary is the evaluation roll-up over persisted run outcomes
type Summary struct {
	TotalRuns        int          `json:"total_runs"`
	Approved         int          `json:"approved"`
	MaxCyclesReached int          `json:"max_cycles_reached"`
	Unknown          int          `json:"unknown"`
	ApprovalRate     float64      `json:"approval_rate"`  // 0..1
	AverageCycles    float64      `json:"average_cycles"` // Edit requests per run
	GroundedRatio    float64      `json:"grounded_ratio"` // Share of runs drafted with evidence
	Topics           []TopicStats `json:"topics"`
}

// Scorer computes evaluation statistics from run outcomes
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate summarizes outcomes. Topics keep first-seen order.
func (s *Scorer) Calculate(outcomes []model.RunOutcome) Summary {
	summary := Summary{TotalRuns: len(outcomes), Topics: []TopicStats{}}
	if len(outcomes) == 0 {
		return summary
	}

	totalCycles := 0
	grounded := 0
	index := make(map[string]int)
	topicCycles := make(map[string]int)

	for _, o := range outcomes {
		switch o.FinalDecision {
		case model.FinalApproved:
			summary.Approved++
		case model.FinalMaxCyclesReached:
			summary.MaxCyclesReached++
		default:
			summary.Unknown++
		}
		if o.Grounded {
			grounded++
		}
		totalCycles += o.CycleCount

		i, ok := index[o.Topic]
		if !ok {
			i = len(summary.Topics)
			index[o.Topic] = i
			summary.Topics = append(summary.Topics, TopicStats{Topic: o.Topic})
		}
		summary.Topics[i].Runs++
		topicCycles[o.Topic] += o.CycleCount
	}

	n := float64(len(outcomes))
	summary.ApprovalRate = float64(summary.Approved) / n
	summary.AverageCycles = float64(totalCycles) / n
	summary.GroundedRatio = float64(grounded) / n

	for i := range summary.Topics {
		t := &summary.Topics[i]
		t.AverageCycles = float64(topicCycles[t.Topic]) / float64(t.Runs)
	}

	return summary
}

// SortTopicsByCycles orders topics by average cycles, highest first.
// Ties keep their existing order.
func SortTopicsByCycles(topics []TopicStats) {
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].AverageCycles > topics[j].AverageCycles
	})
}

// WriteText prints a human-readable summary
func WriteText(w io.Writer, s Summary) error {
	if s.TotalRuns == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}

	lines := []string{
		fmt.Sprintf("Total runs:          %d", s.TotalRuns),
		fmt.Sprintf("Approved:            %d (%.1f%%)", s.Approved, s.ApprovalRate*100),
		fmt.Sprintf("Max cycles reached:  %d", s.MaxCyclesReached),
		fmt.Sprintf("Unknown:             %d", s.Unknown),
		fmt.Sprintf("Avg revision cycles: %.2f", s.AverageCycles),
		fmt.Sprintf("Grounded:            %.1f%%", s.GroundedRatio*100),
		"",
		"Avg cycles per topic:",
	}
	for _, t := range s.Topics {
		lines = append(lines, fmt.Sprintf("  %-40s %.2f (%d run(s))", t.Topic, t.AverageCycles, t.Runs))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
