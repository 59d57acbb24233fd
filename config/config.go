package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"github.com/scottcame/piet/internal/global"
)

// BuildVersion is stamped at build time (-ldflags "-X github.com/scottcame/piet/config.BuildVersion=...")
// and is the default API version reported to the client.
var BuildVersion = "dev"

// UI defaults reported by GET /config
const (
	DefaultApplicationTitle  = "Piet"
	DefaultLogoImageURL      = "img/piet-logo.jpg"
	DefaultLogLevel          = "error"
	DefaultMondrianRestURL   = "/mondrian-rest"
	DefaultTableFontIncrease = 1
)

// UIConfiguration is the read-only block served to the browser client by GET /config
type UIConfiguration struct {
	ApplicationTitle  string `json:"applicationTitle" env:"PIET_UI_APPLICATION_TITLE" envDefault:"Piet" validate:"required,no_xss"`
	LogoImageURL      string `json:"logoImageUrl" env:"PIET_UI_LOGO_IMAGE_URL" envDefault:"img/piet-logo.jpg" validate:"no_xss"`
	LogLevel          string `json:"logLevel" env:"PIET_UI_LOG_LEVEL" envDefault:"error" validate:"log_level"` // log level of the client, not the server
	APIVersion        string `json:"apiVersion" env:"PIET_UI_API_VERSION"`
	MondrianRestURL   string `json:"mondrianRestUrl" env:"PIET_UI_MONDRIAN_REST_URL" envDefault:"/mondrian-rest" validate:"required"`
	TableFontIncrease int    `json:"tableFontIncrease" env:"PIET_UI_TABLE_FONT_INCREASE" envDefault:"1" validate:"oneof=1 2 3"`
}

// Configuration holds the static settings the server needs, read once at startup
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080" validate:"required"` // listen port (or host:port)
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`                   // comma separated, * = all
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100" validate:"gte=0"`
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60" validate:"gte=1"` // seconds
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	BodyLimitMB           int    `env:"BODY_LIMIT_MB" envDefault:"4" validate:"gte=1"`
	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"`
	TLSCertFile string `env:"TLS_CERT_FILE" validate:"required_if=EnableTLS true"`
	TLSKeyFile  string `env:"TLS_KEY_FILE" validate:"required_if=EnableTLS true"`

	// Document store
	StoreDriver                 string `env:"STORE_DRIVER" envDefault:"mongodb" validate:"store_driver"`
	MongoDB_ConnectionURI       string `env:"MONGODB_CONNECTION_URI" envDefault:"mongodb://localhost:27017" validate:"required_if=StoreDriver mongodb"`
	MongoDB_DBName              string `env:"MONGODB_DBNAME" envDefault:"piet" validate:"required"`
	MongoDB_Collection          string `env:"MONGODB_COLLECTION" envDefault:"analysis" validate:"required"`
	MongoDB_RetryAttempts       int    `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3" validate:"gte=1"`
	MongoDB_RetryWaitMS         int    `env:"MONGODB_RETRY_WAIT_MS" envDefault:"3000" validate:"gte=0"`
	MongoDB_OperationTimeoutMS  int    `env:"MONGODB_OPERATION_TIMEOUT_MS" envDefault:"0" validate:"gte=0"` // 0 = bounded only by the driver
	ReadCounterAtomic           bool   `env:"READ_COUNTER_ATOMIC" envDefault:"true"`
	EnsureCollectionsAndIndexes bool   `env:"MONGODB_ENSURE_INDEXES" envDefault:"true"`

	ui UIConfiguration
}

// UI returns a copy of the client configuration block
func (c *Configuration) UI() UIConfiguration {
	return c.ui
}

// MongoDB_RetryWait returns the fixed backoff between connection attempts
func (c *Configuration) MongoDB_RetryWait() time.Duration {
	return time.Duration(c.MongoDB_RetryWaitMS) * time.Millisecond
}

// MongoDB_OperationTimeout returns the per-operation store timeout, 0 when disabled
func (c *Configuration) MongoDB_OperationTimeout() time.Duration {
	return time.Duration(c.MongoDB_OperationTimeoutMS) * time.Millisecond
}

// getEnvPath returns config/env/<GO_ENV>.env searching upwards from the working directory
func getEnvPath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig loads the given env files (or config/env/<GO_ENV>.env when none are given), then parses
// and validates the process environment. Variables already set in the environment win over files.
func NewConfig(files ...string) (*Configuration, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env files %v: %w", files, err)
		}
	} else if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := env.Parse(&cfg.ui); err != nil {
		return nil, fmt.Errorf("parse ui config: %w", err)
	}
	if cfg.ui.APIVersion == "" {
		cfg.ui.APIVersion = BuildVersion
	}

	global.InitValidator()
	if err := global.Validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := global.Validate.Struct(&cfg.ui); err != nil {
		return nil, fmt.Errorf("invalid ui config: %w", err)
	}

	return &cfg, nil
}
