// Package config loads server configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ledger backends
const (
	LedgerFile     = "file"
	LedgerRedis    = "redis"
	LedgerPostgres = "postgres"
	LedgerMemory   = "memory"
)

// EnvConfigPath names the environment variable holding the YAML file path
const EnvConfigPath = "SCOREKEEPER_CONFIG"

// Config is the full server configuration
type Config struct {
	Port                int          `yaml:"port"`
	Ledger              LedgerConfig `yaml:"ledger"`
	Log                 LogConfig    `yaml:"log"`
	CORSOrigins         []string     `yaml:"cors_origins"`
	LeaderboardMaxLimit int          `yaml:"leaderboard_max_limit"`
}

// LedgerConfig selects and configures the durable ledger
type LedgerConfig struct {
	Type        string `yaml:"type"`
	Path        string `yaml:"path"`
	Compress    bool   `yaml:"compress"`
	RedisURL    string `yaml:"redis_url"`
	RedisKey    string `yaml:"redis_key"`
	DatabaseURL string `yaml:"database_url"`
}

// LogConfig controls log level, format and destination
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port: 3000,
		Ledger: LedgerConfig{
			Type:     LedgerFile,
			Path:     "data/users.json",
			RedisKey: "scorekeeper",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		CORSOrigins:         []string{"*"},
		LeaderboardMaxLimit: 100,
	}
}

// Load reads configuration from the process environment, including the YAML
// file named by SCOREKEEPER_CONFIG if set
func Load() (Config, error) {
	return LoadFrom(os.Getenv(EnvConfigPath), os.LookupEnv)
}

// LoadFrom builds a configuration from defaults, the YAML file at path (if
// non-empty) and the variables visible through lookup
func LoadFrom(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a boolean", key, v))
				return
			}
			*dst = b
		}
	}

	num("PORT", &cfg.Port)
	str("LEDGER_TYPE", &cfg.Ledger.Type)
	str("LEDGER_PATH", &cfg.Ledger.Path)
	flag("LEDGER_COMPRESS", &cfg.Ledger.Compress)
	str("REDIS_URL", &cfg.Ledger.RedisURL)
	str("REDIS_KEY", &cfg.Ledger.RedisKey)
	str("DATABASE_URL", &cfg.Ledger.DatabaseURL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("LOG_FILE", &cfg.Log.File)
	num("LEADERBOARD_MAX_LIMIT", &cfg.LeaderboardMaxLimit)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every inconsistent setting
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	switch c.Ledger.Type {
	case LedgerFile:
		if c.Ledger.Path == "" {
			errs = append(errs, errors.New("LEDGER_PATH required when LEDGER_TYPE=file"))
		}
	case LedgerRedis:
		if c.Ledger.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when LEDGER_TYPE=redis"))
		}
	case LedgerPostgres:
		if c.Ledger.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when LEDGER_TYPE=postgres"))
		}
	case LedgerMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown ledger type %q: must be file, redis, postgres or memory", c.Ledger.Type))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if c.LeaderboardMaxLimit < 1 {
		errs = append(errs, fmt.Errorf("leaderboard max limit must be positive, got %d", c.LeaderboardMaxLimit))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for Port
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
