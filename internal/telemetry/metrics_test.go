package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indexbench/internal/stats"
)

func TestMetrics_RecordsRepetitions(t *testing.T) {
	// Given: collectors for one run
	m := NewMetrics("Bleve")

	// When: three repetitions and the aggregate are reported
	for i, secs := range []float64{1.5, 2.0, 2.5} {
		m.RepetitionFinished(stats.RepetitionResult{
			Repetition:       i + 1,
			ElapsedSeconds:   secs,
			DocumentsIndexed: 5,
			Rotations:        2,
		})
	}
	m.RunFinished(stats.Aggregate{MeanSeconds: 2.0, TrimmedMeanSeconds: 2.0, Kept: 3, Discarded: 0})

	// Then: counters and gauges reflect the run
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RepetitionsTotal))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.RotationsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MeanSeconds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrimmedMeanSeconds))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DiscardedTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RepetitionSeconds))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics("Bleve")
	b := NewMetrics("Bleve")

	a.RepetitionFinished(stats.RepetitionResult{Repetition: 1, DocumentsIndexed: 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RepetitionsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RepetitionsTotal))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics("SQLite FTS5")
	m.RepetitionFinished(stats.RepetitionResult{Repetition: 1, ElapsedSeconds: 0.25, DocumentsIndexed: 10})
	m.RunFinished(stats.Aggregate{MeanSeconds: 0.25, TrimmedMeanSeconds: 0.25, Kept: 1})

	path := filepath.Join(t.TempDir(), "textfile", "indexbench.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `indexbench_documents_indexed_total{engine="SQLite FTS5"} 10`)
	assert.Contains(t, text, `indexbench_mean_seconds{engine="SQLite FTS5"} 0.25`)
	assert.True(t, strings.Contains(text, "# TYPE indexbench_repetition_seconds histogram"))
}
