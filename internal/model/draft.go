package model

// DraftRequest is everything the drafter needs for one cycle
type DraftRequest struct {
	Topic       string             `json:"topic"`
	Evidence    EvidenceSet        `json:"evidence"`
	EditRequest string             `json:"edit_request,omitempty"` // Empty on the first cycle
	Cycle       int                `json:"cycle"`                  // 1-based, strictly increasing within a run
	Grounded    bool               `json:"grounded"`               // Evidence is non-empty
	Preferences PreferenceSnapshot `json:"preferences"`            // Learned directives after edit overrides
}

// DraftResult is the memo produced for one cycle
type DraftResult struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Cycle   int    `json:"cycle"`
}

// DecisionKind tags a reviewer decision
type DecisionKind string

const (
	DecisionApprove     DecisionKind = "approve"
	DecisionEditRequest DecisionKind = "edit_request"
)

// Decision is the reviewer's verdict on a draft
type Decision struct {
	Kind     DecisionKind `json:"kind"`
	EditText string       `json:"edit_text,omitempty"` // Only meaningful for edit requests
}

// Approve returns an approval decision
func Approve() Decision {
	return Decision{Kind: DecisionApprove}
}

// EditRequest returns an edit-request decision carrying free text
func EditRequest(text string) Decision {
	return Decision{Kind: DecisionEditRequest, EditText: text}
}
