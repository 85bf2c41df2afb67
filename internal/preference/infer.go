package preference

import (
	"strings"

	"github.com/ppiankov/memodraft/internal/model"
)

// Bucket names a class of feedback signal
type Bucket string

const (
	BucketTooLong  Bucket = "too_long"
	BucketTooShort Bucket = "too_short"
	BucketFormal   Bucket = "more_professional"
)

// signals lists the phrases counted for each bucket
var signals = map[Bucket][]string{
	BucketTooLong:  {"too long", "very long", "shorter"},
	BucketTooShort: {"too short", "longer", "more detail"},
	BucketFormal:   {"more professional", "professional tone", "more formal"},
}

// lengthOverrides are edit-request phrases that explicitly set the length,
// suppressing any learned length preference for that cycle
var lengthOverrides = []string{
	"3 lines", "three lines", "shorter", "concise", "summary",
	"longer", "more detail", "too short", "too long",
}

// Tally counts, per bucket, how many feedback records carry a signal.
// A record counts at most once per bucket.
func Tally(history []model.FeedbackRecord) map[Bucket]int {
	counts := map[Bucket]int{}
	for _, rec := range history {
		text := strings.ToLower(rec.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		for bucket, phrases := range signals {
			if containsAny(text, phrases) {
				counts[bucket]++
			}
		}
	}
	return counts
}

// Infer derives drafting directives from the full feedback history.
// Length preference needs a strict majority; a tie (including 0/0) sets neither.
func Infer(history []model.FeedbackRecord) model.PreferenceSnapshot {
	counts := Tally(history)
	return model.PreferenceSnapshot{
		PreferShort:  counts[BucketTooLong] > counts[BucketTooShort],
		PreferLong:   counts[BucketTooShort] > counts[BucketTooLong],
		PreferFormal: counts[BucketFormal] > 0,
	}
}

// ForcesLength reports whether an edit request explicitly sets the length
func ForcesLength(editRequest string) bool {
	return containsAny(strings.ToLower(editRequest), lengthOverrides)
}

// ApplyOverrides drops learned length preferences when the edit request
// already sets the length. Tone is never suppressed.
func ApplyOverrides(snap model.PreferenceSnapshot, editRequest string) model.PreferenceSnapshot {
	if ForcesLength(editRequest) {
		snap.PreferShort = false
		snap.PreferLong = false
	}
	return snap
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
