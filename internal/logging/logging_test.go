package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "warn", cfg.Level)
	assert.Empty(t, cfg.FilePath)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
	assert.Equal(t, "indexbench.log", filepath.Base(cfg.FilePath))
	assert.Contains(t, cfg.FilePath, ".indexbench")
}

func TestSetup_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := setup(Config{Level: "info"}, &buf)
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("hidden")
	logger.Info("repetition_complete", slog.Int("repetition", 1))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "repetition_complete", entry["msg"])
	assert.Equal(t, float64(1), entry["repetition"])
}

func TestSetup_File(t *testing.T) {
	// Given: a log file path in a directory that does not exist yet
	logPath := filepath.Join(t.TempDir(), "logs", "bench.log")
	var stderr bytes.Buffer

	// When: logging through the configured logger
	logger, cleanup, err := setup(Config{Level: "debug", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 2}, &stderr)
	require.NoError(t, err)
	logger.Debug("writer_rotated", slog.Int("rotation", 1))
	cleanup()

	// Then: the entry is in the file and nothing went to stderr
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"writer_rotated"`)
	assert.Empty(t, stderr.String())
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, LevelFromString(tc.input), "level %q", tc.input)
	}
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("debug"))
	assert.True(t, ValidLevel("WARN"))
	assert.False(t, ValidLevel("verbose"))
	assert.False(t, ValidLevel(""))
}

func TestRotatingWriter_Rotation(t *testing.T) {
	// Given: a writer whose limit is already reached
	logPath := filepath.Join(t.TempDir(), "bench.log")
	require.NoError(t, os.WriteFile(logPath, bytes.Repeat([]byte("x"), 1024*1024), 0o644))

	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// When: writing one more entry
	_, err = w.Write([]byte("fresh\n"))
	require.NoError(t, err)

	// Then: the old content moved to .1 and the live file holds only the new entry
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(data))

	info, err := os.Stat(logPath + ".1")
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024), info.Size())
}

func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bench.log")
	for i := 1; i <= 3; i++ {
		require.NoError(t, os.WriteFile(fmt.Sprintf("%s.%d", logPath, i), []byte("old"), 0o644))
	}
	require.NoError(t, os.WriteFile(logPath, bytes.Repeat([]byte("x"), 1024*1024), 0o644))

	w, err := NewRotatingWriter(logPath, 1, 2)
	require.NoError(t, err)
	_, err = w.Write([]byte("next\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.FileExists(t, logPath+".1")
	assert.FileExists(t, logPath+".2")
	assert.NoFileExists(t, logPath+".3")
	assert.NoFileExists(t, logPath+".4")
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "bench.log"), 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, w.Sync())
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bench.log")
	w, err := NewRotatingWriter(logPath, 10, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = fmt.Fprintf(w, "g%d-%d\n", g, i)
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 400)
}
