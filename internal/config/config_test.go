package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./exports", cfg.ExportDir)
	assert.Equal(t, "transfer_pricing_{date}.csv", cfg.ExportFileFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, schema.DefaultDepartmentPlaceholder, cfg.Placeholders.Department)
	assert.Equal(t, schema.DefaultServicePlaceholder, cfg.Placeholders.Service)
	assert.Len(t, cfg.Suggestions.Providers, 4)
	assert.Len(t, cfg.Suggestions.Services, 5)
	assert.Len(t, cfg.Suggestions.Receivers, 6)
}

func TestParse(t *testing.T) {
	data := []byte(`
export_dir: /tmp/tp
log_level: debug
log_format: json
placeholders:
  department: "-- department --"
suggestions:
  providers: [Finance, Legal]
  receivers: []
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tp", cfg.ExportDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "-- department --", cfg.Placeholders.Department)
	assert.Equal(t, schema.DefaultServicePlaceholder, cfg.Placeholders.Service)
	assert.Equal(t, []string{"Finance", "Legal"}, cfg.Suggestions.Providers)
	assert.Empty(t, cfg.Suggestions.Receivers, "an explicit empty list is kept")
	assert.Len(t, cfg.Suggestions.Services, 5)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "export_dir: [unclosed"},
		{"bad log level", "log_level: verbose"},
		{"bad log format", "log_format: xml"},
		{"file format without placeholder", "export_file_format: export.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export_dir: out\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.ExportDir)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicitly named file must exist")
}

func TestLoadDefaultPathMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
