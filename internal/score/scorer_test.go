package score

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/memodraft/internal/model"
)

func outcome(topic string, cycles int, decision model.FinalDecision, grounded bool) model.RunOutcome {
	return model.RunOutcome{
		RunID:         topic,
		Topic:         topic,
		CycleCount:    cycles,
		FinalDecision: decision,
		Grounded:      grounded,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScorer_Calculate_Empty(t *testing.T) {
	s := NewScorer().Calculate(nil)

	if s.TotalRuns != 0 {
		t.Errorf("Expected 0 runs, got %d", s.TotalRuns)
	}
	if s.ApprovalRate != 0 || s.AverageCycles != 0 || s.GroundedRatio != 0 {
		t.Errorf("Expected zero rates for empty input, got %+v", s)
	}
	if s.Topics == nil {
		t.Error("Expected non-nil topics slice")
	}
}

func TestScorer_Calculate_Counts(t *testing.T) {
	outcomes := []model.RunOutcome{
		outcome("Budget", 0, model.FinalApproved, true),
		outcome("Budget", 2, model.FinalApproved, true),
		outcome("Hiring", 10, model.FinalMaxCyclesReached, false),
		outcome("Budget", 1, model.FinalUnknown, true),
	}

	s := NewScorer().Calculate(outcomes)

	if s.TotalRuns != 4 {
		t.Errorf("Expected 4 runs, got %d", s.TotalRuns)
	}
	if s.Approved != 2 || s.MaxCyclesReached != 1 || s.Unknown != 1 {
		t.Errorf("Unexpected decision counts: %+v", s)
	}
	if !almostEqual(s.ApprovalRate, 0.5) {
		t.Errorf("Expected approval rate 0.5, got %f", s.ApprovalRate)
	}
	if !almostEqual(s.AverageCycles, 13.0/4.0) {
		t.Errorf("Expected average cycles 3.25, got %f", s.AverageCycles)
	}
	if !almostEqual(s.GroundedRatio, 0.75) {
		t.Errorf("Expected grounded ratio 0.75, got %f", s.GroundedRatio)
	}
}

func TestScorer_Calculate_TopicsFirstSeenOrder(t *testing.T) {
	outcomes := []model.RunOutcome{
		outcome("Hiring", 4, model.FinalApproved, true),
		outcome("Budget", 1, model.FinalApproved, true),
		outcome("Hiring", 2, model.FinalApproved, true),
	}

	s := NewScorer().Calculate(outcomes)

	if len(s.Topics) != 2 {
		t.Fatalf("Expected 2 topics, got %d", len(s.Topics))
	}
	if s.Topics[0].Topic != "Hiring" || s.Topics[1].Topic != "Budget" {
		t.Errorf("Expected first-seen order [Hiring Budget], got %+v", s.Topics)
	}
	if s.Topics[0].Runs != 2 || !almostEqual(s.Topics[0].AverageCycles, 3) {
		t.Errorf("Unexpected Hiring stats: %+v", s.Topics[0])
	}
	if s.Topics[1].Runs != 1 || !almostEqual(s.Topics[1].AverageCycles, 1) {
		t.Errorf("Unexpected Budget stats: %+v", s.Topics[1])
	}
}

func TestSortTopicsByCycles(t *testing.T) {
	topics := []TopicStats{
		{Topic: "a", AverageCycles: 1},
		{Topic: "b", AverageCycles: 3},
		{Topic: "c", AverageCycles: 1},
	}

	SortTopicsByCycles(topics)

	got := []string{topics[0].Topic, topics[1].Topic, topics[2].Topic}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, Summary{}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Errorf("Expected empty message, got %q", buf.String())
	}

	buf.Reset()
	s := NewScorer().Calculate([]model.RunOutcome{outcome("Budget", 2, model.FinalApproved, true)})
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total runs:          1", "100.0%", "Budget", "2.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
