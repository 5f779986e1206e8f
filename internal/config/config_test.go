package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, "extracted_corpus", cfg.Corpus.Dir)
	assert.Equal(t, 0, cfg.Corpus.Workers)
	assert.Equal(t, "bench_index", cfg.Index.Dir)
	assert.Equal(t, "bleve", cfg.Index.Engine)
	assert.Equal(t, 100, cfg.Index.BatchSize)
	assert.Equal(t, -1, cfg.Benchmark.Docs)
	assert.Equal(t, 1, cfg.Benchmark.Reps)
	assert.Equal(t, 0, cfg.Benchmark.Increment)
	assert.False(t, cfg.Benchmark.Store)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Telemetry.Record)
	assert.Equal(t, DefaultHistoryPath(), cfg.Telemetry.HistoryDB)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectFile(t *testing.T) {
	// Given: a project file overriding part of the config
	dir := t.TempDir()
	yaml := `
index:
  engine: sqlite
  batch_size: 50
benchmark:
  reps: 5
  increment: 1000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yaml), 0644))

	// When: loading
	cfg, err := Load(dir, "")
	require.NoError(t, err)

	// Then: the file values win and everything else keeps its default
	assert.Equal(t, "sqlite", cfg.Index.Engine)
	assert.Equal(t, 50, cfg.Index.BatchSize)
	assert.Equal(t, 5, cfg.Benchmark.Reps)
	assert.Equal(t, 1000, cfg.Benchmark.Increment)
	assert.Equal(t, "bench_index", cfg.Index.Dir)
	assert.Equal(t, -1, cfg.Benchmark.Docs)
}

func TestLoad_YmlFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AltFileName), []byte("corpus:\n  dir: other\n"), 0644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Corpus.Dir)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), nil, 0644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("benchmark:\n  store: true\n"), 0644))

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.True(t, cfg.Benchmark.Store)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, benchErrors.ErrConfigNotFound)
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("benchmark:\n  repetitions: 3\n"), 0644))

	_, err := Load(dir, "")
	assert.ErrorIs(t, err, benchErrors.ErrConfigInvalid)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero reps", "benchmark:\n  reps: 0\n"},
		{"negative increment", "benchmark:\n  increment: -3\n"},
		{"docs below -1", "benchmark:\n  docs: -2\n"},
		{"unknown engine", "index:\n  engine: lucene\n"},
		{"zero batch", "index:\n  batch_size: 0\n"},
		{"bad level", "logging:\n  level: verbose\n"},
		{"record without db", "telemetry:\n  record: true\n  history_db: \"\"\n"},
		{"wrong type", "benchmark:\n  reps: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.yaml), 0644))

			_, err := Load(dir, "")
			require.Error(t, err)
			assert.Equal(t, benchErrors.ErrCodeConfigInvalid, benchErrors.GetCode(err))
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	// Given: a project file and env vars for the same keys
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("benchmark:\n  reps: 2\n"), 0644))
	t.Setenv("INDEXBENCH_REPS", "7")
	t.Setenv("INDEXBENCH_DOCS", "500")
	t.Setenv("INDEXBENCH_STORE", "true")
	t.Setenv("INDEXBENCH_ENGINE", "sqlite")
	t.Setenv("INDEXBENCH_CORPUS_DIR", "/data/corpus")
	t.Setenv("INDEXBENCH_RECORD", "1")

	// When: loading
	cfg, err := Load(dir, "")
	require.NoError(t, err)

	// Then: env wins over the file
	assert.Equal(t, 7, cfg.Benchmark.Reps)
	assert.Equal(t, 500, cfg.Benchmark.Docs)
	assert.True(t, cfg.Benchmark.Store)
	assert.Equal(t, "sqlite", cfg.Index.Engine)
	assert.Equal(t, "/data/corpus", cfg.Corpus.Dir)
	assert.True(t, cfg.Telemetry.Record)
}

func TestLoad_MalformedEnv(t *testing.T) {
	t.Setenv("INDEXBENCH_INCREMENT", "ten")

	_, err := Load(t.TempDir(), "")
	assert.ErrorIs(t, err, benchErrors.ErrConfigInvalid)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := NewConfig()
	cfg.Benchmark.Reps = 9
	cfg.Index.Engine = "sqlite"

	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(filepath.Dir(path), "")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
