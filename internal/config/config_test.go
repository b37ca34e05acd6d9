package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /tmp/feeds.sqlite\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/feeds.sqlite", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultUserAgent, cfg.Fetch.UserAgent)
	assert.EqualValues(t, DefaultMaxBodyBytes, cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, 4, cfg.Settings.FeedRefreshDebounceMinutes)
	assert.Equal(t, 30, cfg.Settings.AutoUpdateIntervalMinutes)
	assert.Equal(t, "latest", cfg.Settings.DefaultViewType)
	assert.EqualValues(t, -1, cfg.Settings.DefaultViewID)
	assert.True(t, cfg.Settings.AutoCollapseFolders)

	timeout, err := cfg.Fetch.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoad_RejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  timeout: soon\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrCreate_WritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "latest", cfg.Settings.DefaultViewType)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Settings, reloaded.Settings)
	assert.Equal(t, cfg.Fetch, reloaded.Fetch)
}

func TestLoadOrCreate_ReplacesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings: [not, a, map"), 0644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Settings.AutoUpdateIntervalMinutes)

	_, err = Load(path)
	assert.NoError(t, err)
}

func TestSaveRoundTripKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Settings.AutoCollapseFolders = false
	cfg.Settings.DefaultViewType = "folder"
	cfg.Settings.DefaultViewID = 3

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.Settings.AutoCollapseFolders)
	assert.Equal(t, "folder", loaded.Settings.DefaultViewType)
	assert.EqualValues(t, 3, loaded.Settings.DefaultViewID)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data/feeds.sqlite"), expandPath("~/data/feeds.sqlite"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
}
