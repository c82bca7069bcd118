package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_MatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100_000, cfg.Collect.Threshold)
	assert.Equal(t, 1_000, cfg.Collect.ChunkSize)
	assert.Equal(t, 100, cfg.Collect.ChunkIntervalMs)
	assert.Equal(t, 100_000, cfg.Match.Threshold)
	assert.Equal(t, 1_000, cfg.Match.ChunkSize)
	assert.Equal(t, 5, cfg.Match.IntervalMs)
	assert.Equal(t, 150, cfg.Preview.DebounceMs)
	assert.Equal(t, 10, cfg.Scheduler.TickIntervalMs)
	assert.Equal(t, 100, cfg.Session.Capacity)
}

func TestLoadFromFile_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scheduler.TickIntervalMs, cfg.Scheduler.TickIntervalMs)
}

func TestSaveAndLoadFromFile_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Scheduler.TickIntervalMs = 25
	cfg.Logging.Level = "debug"

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25, loaded.Scheduler.TickIntervalMs)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestValidate_RejectsInvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveChunkSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collect.ChunkSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_ClampsNonPositiveSessionCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Capacity = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Session.Capacity)
}

func TestGetAndSet_RoundTripsByDottedKey(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("scheduler.tick_interval_ms", "42"))
	v, err := cfg.Get("scheduler.tick_interval_ms")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.Equal(t, 42, cfg.Scheduler.TickIntervalMs)
}

func TestGet_UnknownSectionErrors(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Get("bogus.key")
	assert.Error(t, err)
}

func TestSet_UnknownFieldErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Set("scheduler.nope", "1"))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FALL_LOG_LEVEL", "debug")
	t.Setenv("FALL_SESSION_CAPACITY", "250")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250, cfg.Session.Capacity)
}

func TestListKeys_IncludesEverySection(t *testing.T) {
	keys := ListKeys()
	assert.Contains(t, keys, "scheduler.tick_interval_ms")
	assert.Contains(t, keys, "preview.debounce_ms")
	assert.Contains(t, keys, "session.capacity")
}

func TestLoadFromFile_InvalidYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid yaml"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
