package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scorekeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom("", env(nil))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, LedgerFile, cfg.Ledger.Type)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestEnvOverrides(t *testing.T) {
	cfg, err := LoadFrom("", env(map[string]string{
		"PORT":                  "8081",
		"LEDGER_TYPE":           "redis",
		"REDIS_URL":             "redis://localhost:6379/0",
		"REDIS_KEY":             "scores",
		"LEDGER_COMPRESS":       "true",
		"LOG_LEVEL":             "debug",
		"LOG_FORMAT":            "text",
		"LOG_FILE":              "/var/log/scorekeeper.log",
		"CORS_ORIGINS":          "https://a.example, https://b.example,",
		"LEADERBOARD_MAX_LIMIT": "25",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, LedgerRedis, cfg.Ledger.Type)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Ledger.RedisURL)
	assert.Equal(t, "scores", cfg.Ledger.RedisKey)
	assert.True(t, cfg.Ledger.Compress)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/var/log/scorekeeper.log", cfg.Log.File)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 25, cfg.LeaderboardMaxLimit)
}

func TestYAMLFileThenEnv(t *testing.T) {
	path := writeYAML(t, `
port: 9000
ledger:
  type: postgres
  database_url: postgres://localhost/scores
log:
  level: warn
cors_origins:
  - https://game.example
`)

	cfg, err := LoadFrom(path, env(map[string]string{"PORT": "9100"}))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "env wins over file")
	assert.Equal(t, LedgerPostgres, cfg.Ledger.Type)
	assert.Equal(t, "postgres://localhost/scores", cfg.Ledger.DatabaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, []string{"https://game.example"}, cfg.CORSOrigins)
}

func TestMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"), env(nil))
	assert.Error(t, err)
}

func TestMalformedFile(t *testing.T) {
	path := writeYAML(t, "port: [")

	_, err := LoadFrom(path, env(nil))
	assert.Error(t, err)
}

func TestBadEnvValues(t *testing.T) {
	_, err := LoadFrom("", env(map[string]string{
		"PORT":            "eighty",
		"LEDGER_COMPRESS": "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "LEDGER_COMPRESS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"unknown ledger", func(c *Config) { c.Ledger.Type = "s3" }, "unknown ledger type"},
		{"file without path", func(c *Config) { c.Ledger.Path = "" }, "LEDGER_PATH"},
		{"redis without url", func(c *Config) { c.Ledger.Type = LedgerRedis }, "REDIS_URL"},
		{"postgres without url", func(c *Config) { c.Ledger.Type = LedgerPostgres }, "DATABASE_URL"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"zero max limit", func(c *Config) { c.LeaderboardMaxLimit = 0 }, "max limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMemoryLedgerNeedsNothing(t *testing.T) {
	cfg := Default()
	cfg.Ledger = LedgerConfig{Type: LedgerMemory}

	assert.NoError(t, cfg.Validate())
}
