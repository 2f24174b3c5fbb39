package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Workbook, cfg.Workbook)
	assert.Equal(t, 30, cfg.Export.MaxRows)
	assert.Equal(t, "utf8", cfg.Export.CSVEncoding)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[server]
port = 9090

[workbook]
path = "control.xlsx"
search_dirs = ["uploads"]

[log]
level = "debug"
format = "console"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Export.MaxRows, "unset keys keep their default")
	assert.Equal(t, []string{"control.xlsx", filepath.Join("uploads", "control.xlsx")}, cfg.WorkbookCandidates())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("DASHBOARD_PORT", "7000")
	t.Setenv("DASHBOARD_WORKBOOK", "/tmp/otro.xlsx")
	t.Setenv("DASHBOARD_LOG_LEVEL", "warn")

	cfg, err := Load(writeFile(t, "[server]\nport = 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/otro.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "[server\nport = "))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[server]\nport = 70000\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[export]\nmax_rows = 0\n"))
	assert.Error(t, err)

	t.Setenv("DASHBOARD_PORT", "ochenta")
	_, err = Load(writeFile(t, ""))
	assert.Error(t, err)
}

func TestMaxUploadBytes(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Workbook.MaxUploadMB = 2
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
}
