package evidence

import "github.com/ppiankov/memodraft/internal/model"

// Merge appends incoming points to old, drops duplicates by normalized
// (text, source) keeping the first occurrence, and truncates to limit.
// Old evidence comes first so it survives truncation. A limit <= 0 means
// no cap.
func Merge(old model.EvidenceSet, incoming []model.EvidencePoint, limit int) model.EvidenceSet {
	seen := make(map[model.EvidenceKey]bool, len(old)+len(incoming))
	merged := make(model.EvidenceSet, 0, len(old)+len(incoming))

	add := func(points []model.EvidencePoint) {
		for _, p := range points {
			key := p.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, p)
		}
	}
	add(old)
	add(incoming)

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
