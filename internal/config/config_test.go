package config_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/montyhall/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
	assert.Equal(t, 1000000, cfg.MaxTrials)
	assert.Empty(t, cfg.DBPath)
}

func TestLoad_EnvAndDotenv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("MONTYHALL_DB_PATH=runs.db\nMONTYHALL_LOG_LEVEL=warn\n"), 0o644))
	t.Setenv("MONTYHALL_LOG_LEVEL", "debug")
	t.Setenv("MONTYHALL_MAX_TRIALS", "500")
	t.Setenv("MONTYHALL_LOG_FORMAT", "json")
	t.Cleanup(func() { os.Unsetenv("MONTYHALL_DB_PATH") })

	cfg, err := config.Load(dotenv)
	require.NoError(t, err)
	assert.Equal(t, "runs.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 500, cfg.MaxTrials)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MONTYHALL_LOG_FORMAT", "xml")
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)

	t.Setenv("MONTYHALL_LOG_FORMAT", "text")
	t.Setenv("MONTYHALL_MAX_TRIALS", "notanumber")
	_, err = config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestNewLogger_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := config.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", "doors", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.EqualValues(t, 3, line["doors"])
}
