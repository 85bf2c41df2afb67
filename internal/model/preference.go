package model

// PreferenceSnapshot holds drafting directives learned from feedback history.
// PreferShort and PreferLong are never both true.
type PreferenceSnapshot struct {
	PreferShort  bool `json:"prefer_short"`
	PreferLong   bool `json:"prefer_long"`
	PreferFormal bool `json:"prefer_formal"`
}
