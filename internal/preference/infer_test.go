package preference

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/memodraft/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fb(text string) model.FeedbackRecord {
	return model.FeedbackRecord{Topic: "t", Text: text, Timestamp: time.Now()}
}

func TestInfer_EmptyHistory(t *testing.T) {
	assert.Equal(t, model.PreferenceSnapshot{}, Infer(nil))
}

func TestInfer_TooLongOnly(t *testing.T) {
	snap := Infer([]model.FeedbackRecord{fb("This is way too long")})
	assert.True(t, snap.PreferShort)
	assert.False(t, snap.PreferLong)
	assert.False(t, snap.PreferFormal)
}

func TestInfer_TooShortMajority(t *testing.T) {
	snap := Infer([]model.FeedbackRecord{
		fb("too short"),
		fb("please make it longer"),
		fb("shorter"),
	})
	assert.False(t, snap.PreferShort)
	assert.True(t, snap.PreferLong)
}

func TestInfer_TieSetsNeither(t *testing.T) {
	snap := Infer([]model.FeedbackRecord{fb("too long"), fb("too short")})
	assert.False(t, snap.PreferShort)
	assert.False(t, snap.PreferLong)
}

func TestInfer_Formal(t *testing.T) {
	snap := Infer([]model.FeedbackRecord{fb("Use a More Formal voice"), fb("")})
	assert.True(t, snap.PreferFormal)
	assert.False(t, snap.PreferShort)
	assert.False(t, snap.PreferLong)
}

func TestInfer_RecordCountsOncePerBucket(t *testing.T) {
	counts := Tally([]model.FeedbackRecord{fb("too long, much shorter, very long")})
	assert.Equal(t, 1, counts[BucketTooLong])
}

func TestInfer_IgnoresRatingOnlyRecords(t *testing.T) {
	rating := 2
	snap := Infer([]model.FeedbackRecord{{Topic: "t", Rating: &rating}})
	assert.Equal(t, model.PreferenceSnapshot{}, snap)
}

func TestApplyOverrides(t *testing.T) {
	learned := model.PreferenceSnapshot{PreferLong: true, PreferFormal: true}

	got := ApplyOverrides(learned, "make it shorter")
	assert.False(t, got.PreferLong)
	assert.False(t, got.PreferShort)
	assert.True(t, got.PreferFormal, "tone must never be suppressed")

	assert.Equal(t, learned, ApplyOverrides(learned, "fix the greeting"))
	assert.Equal(t, learned, ApplyOverrides(learned, ""))
	assert.True(t, ForcesLength("Keep it to 3 lines"))
	assert.True(t, ForcesLength("A one-paragraph SUMMARY"))
}

type memStore struct {
	mu        sync.Mutex
	records   []model.FeedbackRecord
	lists     int
	appendErr error
}

func (m *memStore) AppendFeedback(_ context.Context, rec model.FeedbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) ListFeedback(_ context.Context) ([]model.FeedbackRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	return append([]model.FeedbackRecord(nil), m.records...), nil
}

func TestTracker_MemoizesUntilAppend(t *testing.T) {
	store := &memStore{}
	tracker := NewTracker(store)
	ctx := context.Background()

	snap, err := tracker.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PreferenceSnapshot{}, snap)

	_, err = tracker.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists, "second snapshot should be served from the memo")

	require.NoError(t, tracker.AppendFeedback(ctx, fb("too long")))
	snap, err = tracker.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.PreferShort)
	assert.Equal(t, 2, store.lists)
}

func TestTracker_AppendErrorPropagates(t *testing.T) {
	store := &memStore{appendErr: errors.New("disk full")}
	tracker := NewTracker(store)

	err := tracker.AppendFeedback(context.Background(), fb("too long"))
	assert.EqualError(t, err, "disk full")
}
