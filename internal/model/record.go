package model

import "time"

// FeedbackRecord is one append-only feedback row.
// Style edit requests and post-run reviews both land here.
type FeedbackRecord struct {
	Topic     string    `json:"topic"`
	Cycle     int       `json:"cycle_count"`
	Rating    *int      `json:"rating,omitempty"` // 1..5, nil when absent
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FinalDecision is the terminal state of a workflow run
type FinalDecision string

const (
	FinalApproved         FinalDecision = "approved"
	FinalMaxCyclesReached FinalDecision = "max_cycles_reached"
	FinalUnknown          FinalDecision = "unknown"
)

// RunOutcome is the record persisted once per completed run
type RunOutcome struct {
	RunID         string        `json:"run_id"`
	Topic         string        `json:"topic"`
	CycleCount    int           `json:"cycle_count"` // Number of edit-request transitions
	FinalDecision FinalDecision `json:"final_decision"`
	Grounded      bool          `json:"grounded"`
	Timestamp     time.Time     `json:"timestamp"`
}
