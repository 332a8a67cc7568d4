package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveConfigPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.toml")
	require.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, filepath.Join(dir, "nested", DefaultDBName), cfg.DBPath)
	require.Equal(t, filepath.Join(dir, "nested", DefaultLogName), cfg.LogPath)
	require.Equal(t, 500*time.Millisecond, cfg.DebounceDelay())
	require.Equal(t, time.Second, cfg.ExternalQuiet())
	require.Equal(t, 3*time.Second, cfg.ToastDuration())

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadOrCreateFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `db_path = "/var/lib/visor/tasks.db"

[ui]
focus_minutes = 50

[keys]
quit = "ctrl+q"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/visor/tasks.db", cfg.DBPath)
	require.Equal(t, 50, cfg.UI.FocusMinutes)
	require.Equal(t, 3, cfg.UI.ToastSeconds)
	require.Equal(t, "ctrl+q", cfg.Keys.Quit)
	require.Equal(t, "j", cfg.Keys.Down)
	require.Equal(t, 500, cfg.Autosave.DebounceMS)
}

func TestLoadOrCreateRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("db_path = ["), 0o644))

	_, err := LoadOrCreate(path)
	require.Error(t, err)
}
