package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_MissingFile(t *testing.T) {
	path, err := Backup(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackup_CopiesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("benchmark:\n  reps: 3\n"), 0644))

	backupPath, err := Backup(path)
	require.NoError(t, err)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "benchmark:\n  reps: 3\n", string(data))
}

func TestBackup_KeepsNewest(t *testing.T) {
	// Given: a fake clock so each backup gets its own timestamp
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	defer func() { now = time.Now }()

	// When: backing up more than MaxBackups times
	var made []string
	for i := 0; i < MaxBackups+2; i++ {
		p, err := Backup(path)
		require.NoError(t, err)
		made = append(made, p)
	}

	// Then: only the newest MaxBackups remain, newest first
	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, made[len(made)-1], backups[0])
	assert.NoFileExists(t, made[0])
}
