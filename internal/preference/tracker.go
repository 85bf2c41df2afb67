package preference

import (
	"context"
	"fmt"

	"github.com/ppiankov/memodraft/internal/cache"
	"github.com/ppiankov/memodraft/internal/model"
)

// FeedbackStore is the append-only feedback history
type FeedbackStore interface {
	AppendFeedback(ctx context.Context, rec model.FeedbackRecord) error
	ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error)
}

var snapshotKey = cache.Key("preferences", "global")

// Tracker serves preference snapshots derived from a feedback store.
// The snapshot is memoized and invalidated on every append made through
// the tracker.
type Tracker struct {
	store FeedbackStore
	memo  cache.Cache[model.PreferenceSnapshot]
}

// NewTracker creates a tracker over store
func NewTracker(store FeedbackStore) *Tracker {
	return &Tracker{
		store: store,
		memo:  cache.NewMemoryCache[model.PreferenceSnapshot](cache.NoExpiration, 0),
	}
}

// Snapshot returns the current preferences, recomputing from the full
// history when the memo is empty
func (t *Tracker) Snapshot(ctx context.Context) (model.PreferenceSnapshot, error) {
	if snap, ok := t.memo.Get(snapshotKey); ok {
		return snap, nil
	}

	history, err := t.store.ListFeedback(ctx)
	if err != nil {
		return model.PreferenceSnapshot{}, fmt.Errorf("list feedback: %w", err)
	}

	snap := Infer(history)
	t.memo.Set(snapshotKey, snap, 0)
	return snap, nil
}

// AppendFeedback writes rec to the store and invalidates the memo
func (t *Tracker) AppendFeedback(ctx context.Context, rec model.FeedbackRecord) error {
	// Invalidate even on failure: the store may have written a partial row
	defer t.memo.Delete(snapshotKey)
	return t.store.AppendFeedback(ctx, rec)
}

// ListFeedback returns the full feedback history
func (t *Tracker) ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error) {
	return t.store.ListFeedback(ctx)
}
