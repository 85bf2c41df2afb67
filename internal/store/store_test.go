package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/memodraft/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(filepath.Join(dir, "db", "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"csv":    NewCSV(filepath.Join(dir, "feedback.csv"), filepath.Join(dir, "outcomes.csv"), nil),
	}
}

func intPtr(i int) *int { return &i }

func TestStore_FeedbackRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.ListFeedback(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			require.NoError(t, s.AppendFeedback(ctx, model.FeedbackRecord{Topic: "Q3", Cycle: 1, Text: "too long", Timestamp: ts}))
			require.NoError(t, s.AppendFeedback(ctx, model.FeedbackRecord{Topic: "Q3", Cycle: 2, Rating: intPtr(4), Timestamp: ts}))

			got, err := s.ListFeedback(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, "too long", got[0].Text)
			assert.Nil(t, got[0].Rating)
			assert.True(t, ts.Equal(got[0].Timestamp))

			require.NotNil(t, got[1].Rating)
			assert.Equal(t, 4, *got[1].Rating)
			assert.Equal(t, "", got[1].Text)
			assert.Equal(t, 2, got[1].Cycle)
		})
	}
}

func TestStore_OutcomesAppendOnly(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := model.RunOutcome{RunID: "r1", Topic: "Q3 sales", CycleCount: 0, FinalDecision: model.FinalApproved, Grounded: true, Timestamp: time.Now()}
			second := model.RunOutcome{RunID: "r2", Topic: "Relocation", CycleCount: 10, FinalDecision: model.FinalMaxCyclesReached, Timestamp: time.Now()}

			require.NoError(t, s.AppendOutcome(ctx, first))
			require.NoError(t, s.AppendOutcome(ctx, second))

			got, err := s.ListOutcomes(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, "r1", got[0].RunID)
			assert.Equal(t, model.FinalApproved, got[0].FinalDecision)
			assert.True(t, got[0].Grounded)
			assert.Equal(t, 10, got[1].CycleCount)
			assert.Equal(t, model.FinalMaxCyclesReached, got[1].FinalDecision)
			assert.False(t, got[1].Grounded)
		})
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, s.AppendOutcome(ctx, model.RunOutcome{Topic: "t", CycleCount: i, FinalDecision: model.FinalUnknown}))
				}(i)
			}
			wg.Wait()

			got, err := s.ListOutcomes(ctx)
			require.NoError(t, err)
			assert.Len(t, got, 20)
		})
	}
}

func TestCSV_HeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(filepath.Join(dir, "fb.csv"), filepath.Join(dir, "out.csv"), nil)
	ctx := context.Background()

	require.NoError(t, s.AppendOutcome(ctx, model.RunOutcome{Topic: "a", FinalDecision: model.FinalApproved}))
	require.NoError(t, s.AppendOutcome(ctx, model.RunOutcome{Topic: "b", FinalDecision: model.FinalApproved}))

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,topic,cycle_count,grounded,final_decision,run_id", lines[0])
}

func TestCSV_MalformedRatingTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fb.csv")
	content := "timestamp,topic,cycle_count,rating,feedback_text\n" +
		"2026-01-01T00:00:00Z,Q3,1,five,too long\n" +
		"2026-01-01T00:00:00Z,Q3,1,9,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s := NewCSV(path, filepath.Join(dir, "out.csv"), nil)
	got, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Rating)
	assert.Equal(t, "too long", got[0].Text)
	assert.Nil(t, got[1].Rating)
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(model.StoreConfig{Backend: "csv", FeedbackCSV: filepath.Join(dir, "f.csv"), OutcomesCSV: filepath.Join(dir, "o.csv")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, s)

	s, err = Open(model.StoreConfig{Backend: "sqlite", Path: filepath.Join(dir, "m.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(model.StoreConfig{Backend: "postgres"}, nil)
	assert.Error(t, err)
}
