package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env"
)

// LogConfig is read from LOG_* variables on top of a GO_ENV dependent baseline.
// Level, Format and Output carry no envDefault: their defaults differ per environment.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"`  // trace .. panic
	Format string `env:"LOG_FORMAT"` // text | json
	Output string `env:"LOG_OUTPUT"` // stdout | file | both

	// lumberjack rotation
	MaxSize    int  `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	MaxBackups int  `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	MaxAge     int  `env:"LOG_MAX_AGE" envDefault:"7"` // days
	Compress   bool `env:"LOG_COMPRESS" envDefault:"true"`

	LogPath   string `env:"LOG_PATH" envDefault:"./logs"`
	AppFile   string `env:"LOG_APP_FILE" envDefault:"app.log"`
	AuditFile string `env:"LOG_AUDIT_FILE" envDefault:"audit.log"`
	ErrorFile string `env:"LOG_ERROR_FILE" envDefault:"error.log"`

	// entries queued by the async hook before new ones are dropped
	BufferSize int `env:"LOG_BUFFER_SIZE" envDefault:"1000"`
}

// baseConfig is the configuration used when no LOG_* variable is set
func baseConfig(goEnv string) *LogConfig {
	cfg := &LogConfig{
		Level:      "debug",
		Format:     "text",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   true,
		LogPath:    "./logs",
		AppFile:    "app.log",
		AuditFile:  "audit.log",
		ErrorFile:  "error.log",
		BufferSize: 1000,
	}
	if goEnv != "" && goEnv != "development" {
		cfg.Level = "info"
		cfg.Format = "json"
		cfg.Output = "both"
	}
	return cfg
}

// LoadConfig parses the LOG_* variables over the GO_ENV baseline.
// Sizes that are not positive fall back to the baseline.
func LoadConfig() (*LogConfig, error) {
	base := baseConfig(os.Getenv("GO_ENV"))
	cfg := *base
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse log config: %w", err)
	}

	cfg.Level = strings.ToLower(cfg.Level)
	cfg.Format = strings.ToLower(cfg.Format)
	cfg.Output = strings.ToLower(cfg.Output)

	if cfg.MaxSize <= 0 {
		cfg.MaxSize = base.MaxSize
	}
	if cfg.MaxBackups < 0 {
		cfg.MaxBackups = base.MaxBackups
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = base.MaxAge
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = base.BufferSize
	}
	return &cfg, nil
}

// DefaultConfig is LoadConfig, falling back to the baseline when a LOG_* variable does not parse
func DefaultConfig() *LogConfig {
	cfg, err := LoadConfig()
	if err != nil {
		return baseConfig(os.Getenv("GO_ENV"))
	}
	return cfg
}
