package model

// UnknownCaseID is assigned to corpus rows without a case_id
const UnknownCaseID = "UNKNOWN_CASE"

// Case is one row of the evidence corpus. Cases are read-only after load.
type Case struct {
	CaseID       string   `json:"case_id"`
	Topic        string   `json:"topic"`
	Audience     string   `json:"audience"`
	Tone         string   `json:"tone"`
	EvidencePack string   `json:"evidence_pack"`
	GoldPoints   []string `json:"gold_points"` // Pipe-delimited in the source CSV
}
