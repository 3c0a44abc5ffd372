package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateExportFileName(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 5, 7, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		ext    string
		want   string
	}{
		{"default pattern", "transfer_pricing_{date}.csv", ".csv", "transfer_pricing_2026-10-16.csv"},
		{"timestamp", "tp_{timestamp}.csv", ".csv", "tp_20261016_090507.csv"},
		{"extension added", "transfer_pricing_{date}", ".csv", "transfer_pricing_2026-10-16.csv"},
		{"extension swapped for workbook", "transfer_pricing_{date}.csv", ".xlsx", "transfer_pricing_2026-10-16.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateExportFileName(tt.format, tt.ext, now))
		})
	}
}

func TestGenerateExportFileNameUUID(t *testing.T) {
	name := GenerateExportFileName("tp_{uuid}.csv", ".csv", time.Now())
	assert.Regexp(t, regexp.MustCompile(`^tp_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.csv$`), name)
}

func TestFileManager_WriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	fm := NewFileManager(dir)

	path, err := fm.WriteFile("transfer_pricing_2026-10-16.csv", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transfer_pricing_2026-10-16.csv"), path)
	assert.True(t, FileExists(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	// Overwrites an earlier export of the same day and leaves no temp files.
	_, err = fm.WriteFile("transfer_pricing_2026-10-16.csv", []byte("newer"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileManager_WriteFileStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(dir)

	path, err := fm.WriteFile("../escape.csv", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.csv"), path)
}
