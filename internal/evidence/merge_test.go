package evidence

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/memodraft/internal/model"
	"github.com/stretchr/testify/assert"
)

func pt(text, source string) model.EvidencePoint {
	return model.EvidencePoint{Text: text, Source: source}
}

func TestMerge_DedupFirstWins(t *testing.T) {
	old := model.EvidenceSet{pt("Revenue rose 5%", "C1"), pt("Headcount steady", "C1")}
	incoming := []model.EvidencePoint{
		pt("  revenue ROSE 5% ", "c1"), // same key, different casing
		pt("Revenue rose 5%", "C2"),    // different source
		pt("Churn fell", ""),
	}

	got := Merge(old, incoming, 12)
	want := model.EvidenceSet{
		pt("Revenue rose 5%", "C1"),
		pt("Headcount steady", "C1"),
		pt("Revenue rose 5%", "C2"),
		pt("Churn fell", ""),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_TruncatesLatest(t *testing.T) {
	old := model.EvidenceSet{pt("a", "1"), pt("b", "1"), pt("c", "2")}
	incoming := []model.EvidencePoint{pt("d", "3"), pt("e", "3")}

	got := Merge(old, incoming, 4)
	want := model.EvidenceSet{pt("a", "1"), pt("b", "1"), pt("c", "2"), pt("d", "3")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_OldAlwaysSurvivesBeforeNew(t *testing.T) {
	old := model.EvidenceSet{pt("a", "1"), pt("b", "1")}
	incoming := []model.EvidencePoint{pt("c", "2")}

	got := Merge(old, incoming, 2)
	assert.Equal(t, model.EvidenceSet{pt("a", "1"), pt("b", "1")}, got)
}

func TestMerge_Properties(t *testing.T) {
	old := model.EvidenceSet{pt("a", "1"), pt("b", "1"), pt("A ", "1"), pt("c", "")}
	incoming := []model.EvidencePoint{pt("b", "1"), pt("d", "2"), pt("e", "2"), pt("c", "")}

	for limit := 1; limit <= 8; limit++ {
		merged := Merge(old, incoming, limit)
		assert.LessOrEqual(t, len(merged), limit)

		// Subsequence of old ++ new, no duplicate keys
		all := append(append([]model.EvidencePoint{}, old...), incoming...)
		seen := map[model.EvidenceKey]bool{}
		j := 0
		for _, p := range merged {
			assert.False(t, seen[p.Key()], "duplicate key %v", p.Key())
			seen[p.Key()] = true
			for j < len(all) && all[j] != p {
				j++
			}
			assert.Less(t, j, len(all), "merged is not a subsequence at %v", p)
			j++
		}

		// Idempotent
		assert.Equal(t, merged, Merge(merged, nil, limit))
	}
}

func TestMerge_NoLimit(t *testing.T) {
	old := model.EvidenceSet{pt("a", "1")}
	got := Merge(old, []model.EvidencePoint{pt("b", "1"), pt("c", "1")}, 0)
	assert.Len(t, got, 3)
}

func TestEvidenceSet_Sources(t *testing.T) {
	set := model.EvidenceSet{pt("a", "C1"), pt("b", "C2"), pt("c", ""), pt("d", "C1")}
	assert.Equal(t, map[string]bool{"C1": true, "C2": true}, set.Sources())
}
