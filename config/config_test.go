package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, DefaultBatchLimit, cfg.Pipeline.BatchLimit)
	assert.Equal(t, 120, cfg.Pipeline.MinDurationSeconds)
	assert.Equal(t, 0.1, cfg.LLM.Temperature)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
environment: production
log_json: true
server:
  listen_addr: ":9090"
database:
  host: db.internal
  port: 5433
  database: tastetrail
  user: tastetrail
  max_conns: 25
  min_conns: 5
llm:
  gateway_url: https://llm.internal/v1/chat/completions
  model: gpt-4o
pipeline:
  batch_limit: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 10, cfg.Pipeline.BatchLimit)

	// Untouched values keep their defaults.
	assert.Equal(t, 25*time.Second, cfg.LLM.RequestTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TT_DB_HOST", "env-db")
	t.Setenv("TT_BATCH_LIMIT", "3")
	t.Setenv("TT_LLM_MODEL", "env-model")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, 3, cfg.Pipeline.BatchLimit)
	assert.Equal(t, "env-model", cfg.LLM.Model)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing listen addr",
			mutate:  func(c *Config) { c.Server.ListenAddr = "" },
			wantErr: "listen_addr",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Database.Port = 0 },
			wantErr: "database.port",
		},
		{
			name:    "conns inverted",
			mutate:  func(c *Config) { c.Database.MaxConns = 1; c.Database.MinConns = 5 },
			wantErr: "max_conns",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.LLM.Temperature = 3 },
			wantErr: "temperature",
		},
		{
			name:    "zero batch limit",
			mutate:  func(c *Config) { c.Pipeline.BatchLimit = 0 },
			wantErr: "batch_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
