package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bamsammich/safetrix/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "safetrix")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	path := filepath.Join(configDir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Store.Path)
	assert.Nil(t, cfg.Transfer.Password)
	assert.Nil(t, cfg.Theme.Green)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[store]
path = "/var/lib/safetrix/tasks.db"
max_tasks = 16
journal = ""

[transfer]
password = "hunter2"
chunk_size = "8K"
sync_threshold = "1M"
bwlimit = "100M"
preallocate = true

[theme]
green = "#00ff00"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Store.Path)
	assert.Equal(t, "/var/lib/safetrix/tasks.db", *cfg.Store.Path)
	require.NotNil(t, cfg.Store.MaxTasks)
	assert.Equal(t, 16, *cfg.Store.MaxTasks)
	require.NotNil(t, cfg.Store.Journal)
	assert.Empty(t, *cfg.Store.Journal)

	require.NotNil(t, cfg.Transfer.Password)
	assert.Equal(t, "hunter2", *cfg.Transfer.Password)
	require.NotNil(t, cfg.Transfer.ChunkSize)
	assert.Equal(t, "8K", *cfg.Transfer.ChunkSize)
	require.NotNil(t, cfg.Transfer.SyncThreshold)
	assert.Equal(t, "1M", *cfg.Transfer.SyncThreshold)
	require.NotNil(t, cfg.Transfer.BWLimit)
	assert.Equal(t, "100M", *cfg.Transfer.BWLimit)
	require.NotNil(t, cfg.Transfer.Preallocate)
	assert.True(t, *cfg.Transfer.Preallocate)

	require.NotNil(t, cfg.Theme.Green)
	assert.Equal(t, "#00ff00", *cfg.Theme.Green)
	assert.Nil(t, cfg.Theme.Red)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[transfer]
bwlimit = "1M"
`)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Store.Path)
	assert.Nil(t, cfg.Transfer.Password)
	require.NotNil(t, cfg.Transfer.BWLimit)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\nmax_tasks = 4\n"), 0o644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Store.MaxTasks)
	assert.Equal(t, 4, *cfg.Store.MaxTasks)

	cfg, err = config.LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Store.MaxTasks)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/safetrix/config.toml", config.Path())
}
