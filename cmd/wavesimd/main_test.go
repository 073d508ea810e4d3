package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.Server.HTTPAddr)
	assert.NotEmpty(t, cfg.Server.GRPCAddr)
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cfg, err := loadConfig("", "127.0.0.1:9191", "127.0.0.1:9292", "debug")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9191", cfg.Server.GRPCAddr)
	assert.Equal(t, "127.0.0.1:9292", cfg.Server.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsInvalidLogLevel(t *testing.T) {
	_, err := loadConfig("", "", "", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestLoadConfigFileThenOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err := loadConfig(path, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = loadConfig(path, "", "", "verbose")
	require.Error(t, err)
}
