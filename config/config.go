// Package config loads ledger configuration from a YAML file and/or
// environment variables. Environment variables override YAML values;
// secrets only ever come from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
)

type Config struct {
	// DatabaseURL selects the PostgreSQL store when set; otherwise the
	// SQLite store at SQLitePath is used.
	DatabaseURL string `yaml:"database_url" env:"LEDGER_DATABASE_URL" env-default:""`
	SQLitePath  string `yaml:"sqlite_path" env:"LEDGER_SQLITE_PATH" env-default:"ledger.db"`

	// ExportDir is where bundles are written.
	ExportDir string `yaml:"export_dir" env:"LEDGER_EXPORT_DIR" env-default:"exports"`

	// JWTSecret verifies incoming claims. Secret - not in YAML.
	JWTSecret string `yaml:"-" env:"LEDGER_JWT_SECRET" env-default:""`

	LogLevel string `yaml:"log_level" env:"LEDGER_LOG_LEVEL" env-default:"info"`
}

// Load reads path (when given and present) then applies the environment on
// top. A missing file is only an error if it was asked for explicitly.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds a zap logger honoring the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", c.LogLevel, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}
