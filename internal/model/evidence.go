package model

import "strings"

// EvidencePoint is one atomic fact attributed to a source case
type EvidencePoint struct {
	Text   string `json:"text"`             // The fact itself
	Source string `json:"source,omitempty"` // Case ID the fact came from (empty if unknown)
}

// EvidenceKey is the dedup identity of an evidence point
type EvidenceKey struct {
	Text   string
	Source string
}

// Key returns the normalized (text, source) identity used for deduplication
func (p EvidencePoint) Key() EvidenceKey {
	return EvidenceKey{
		Text:   strings.ToLower(strings.TrimSpace(p.Text)),
		Source: strings.ToLower(strings.TrimSpace(p.Source)),
	}
}

// EvidenceSet is an ordered collection of evidence points.
// Insertion order matters: the first occurrence of a duplicate survives and
// truncation drops the tail.
type EvidenceSet []EvidencePoint

// Sources returns the set of non-empty source IDs present in the set
func (s EvidenceSet) Sources() map[string]bool {
	sources := make(map[string]bool)
	for _, p := range s {
		if p.Source != "" {
			sources[p.Source] = true
		}
	}
	return sources
}

// Grounded reports whether the set carries any evidence
func (s EvidenceSet) Grounded() bool {
	return len(s) > 0
}
