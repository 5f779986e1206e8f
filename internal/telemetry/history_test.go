package telemetry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indexbench/internal/bench"
	"github.com/Aman-CERP/indexbench/internal/stats"
)

func openTestHistory(t *testing.T) *HistoryStore {
	t.Helper()

	h, err := OpenHistory(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = h.Close()
	})
	return h
}

func sampleOutcome(started time.Time) *bench.Outcome {
	return &bench.Outcome{
		Config:     bench.RunConfig{MaxDocuments: 5, Repetitions: 2, RotationIncrement: 2, StoreBodyText: true},
		CorpusSize: 10,
		Results: []stats.RepetitionResult{
			{Repetition: 1, ElapsedSeconds: 1.25, DocumentsIndexed: 5, Rotations: 2},
			{Repetition: 2, ElapsedSeconds: 1.5, DocumentsIndexed: 5, Rotations: 2},
		},
		Aggregate:   stats.Aggregate{MeanSeconds: 1.375, TrimmedMeanSeconds: 1.375, Kept: 2},
		Environment: stats.Environment{Engine: "Bleve", EngineVersion: "v2.5.7", Runtime: "Go 1.25", Platform: "linux amd64"},
		StartedAt:   started,
	}
}

func TestHistoryStore_RecordAndList(t *testing.T) {
	// Given: an empty history
	h := openTestHistory(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// When: recording a run
	id, err := h.Record(ctx, RunFromOutcome(sampleOutcome(started)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	// Then: it reads back unchanged
	runs, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, id, got.ID)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, "Bleve", got.Engine)
	assert.Equal(t, "v2.5.7", got.EngineVersion)
	assert.Equal(t, 10, got.CorpusSize)
	assert.Equal(t, 5, got.Docs)
	assert.Equal(t, 2, got.Reps)
	assert.Equal(t, 2, got.Increment)
	assert.True(t, got.Store)
	assert.Equal(t, 1.375, got.MeanSeconds)
	assert.Equal(t, 2, got.Kept)
	assert.Equal(t, sampleOutcome(started).Results, got.Results)
}

func TestHistoryStore_ListNewestFirstWithLimit(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		run := RunFromOutcome(sampleOutcome(base.Add(time.Duration(i) * time.Hour)))
		run.Reps = i + 1
		_, err := h.Record(ctx, run)
		require.NoError(t, err)
	}

	runs, err := h.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 4, runs[0].Reps)
	assert.Equal(t, 3, runs[1].Reps)
}

func TestHistoryStore_ReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := OpenHistory(ctx, path)
	require.NoError(t, err)
	_, err = h.Record(ctx, RunFromOutcome(sampleOutcome(time.Now())))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h, err = OpenHistory(ctx, path)
	require.NoError(t, err)
	defer func() { _ = h.Close() }()

	runs, err := h.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
