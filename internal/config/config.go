// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone        = "Europe/Oslo"
	defaultSyncCron        = "*/10 * * * *"
	defaultSyncConcurrency = 4
	defaultDigestCron      = "0 6 * * *"
	defaultUpcomingLimit   = 8
	defaultBackendTimeout  = 15
	defaultShutdownTimeout = 30
	defaultTokenPerHour    = 600
	defaultIPPerHour       = 1200
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	APIKey         string `yaml:"-"` // Loaded from environment
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

// Configured reports whether SES credentials and a sender are present.
func (e EmailConfig) Configured() bool {
	return e.Region != "" && e.Sender != "" && e.AccessKeyID != "" && e.SecretAccessKey != ""
}

type Config struct {
	App struct {
		Name                   string `yaml:"name"`
		Environment            string `yaml:"environment"`
		Port                   int    `yaml:"port"`
		BaseDomain             string `yaml:"base_domain"`
		DefaultTimezone        string `yaml:"default_timezone"`
		TrustProxy             bool   `yaml:"trust_proxy"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Backend  BackendConfig  `yaml:"backend"`

	Sync struct {
		Cron        string `yaml:"cron"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"sync"`

	Digest struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"digest"`

	Email EmailConfig `yaml:"email"`

	Dashboard struct {
		UpcomingLimit int `yaml:"upcoming_limit"`
	} `yaml:"dashboard"`

	RateLimit struct {
		PerTokenPerHour int `yaml:"per_token_per_hour"`
		PerIPPerHour    int `yaml:"per_ip_per_hour"`
	} `yaml:"rate_limit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.Backend.APIKey = os.Getenv("BACKEND_API_KEY")
	cfg.Email.AccessKeyID = os.Getenv("AWS_SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SES_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills in defaults. It does not read
// the environment or validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.DefaultTimezone == "" {
		c.App.DefaultTimezone = defaultTimezone
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		c.App.ShutdownTimeoutSeconds = defaultShutdownTimeout
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeout
	}
	if c.Sync.Cron == "" {
		c.Sync.Cron = defaultSyncCron
	}
	if c.Sync.Concurrency <= 0 {
		c.Sync.Concurrency = defaultSyncConcurrency
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = defaultDigestCron
	}
	if c.Dashboard.UpcomingLimit <= 0 {
		c.Dashboard.UpcomingLimit = defaultUpcomingLimit
	}
	if c.RateLimit.PerTokenPerHour <= 0 {
		c.RateLimit.PerTokenPerHour = defaultTokenPerHour
	}
	if c.RateLimit.PerIPPerHour <= 0 {
		c.RateLimit.PerIPPerHour = defaultIPPerHour
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.BaseDomain == "" {
		return fmt.Errorf("app base_domain is required")
	}
	if _, err := time.LoadLocation(c.App.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default_timezone %q: %w", c.App.DefaultTimezone, err)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend base_url is required")
	}
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend base_url must be an absolute URL")
	}

	if _, err := cron.ParseStandard(c.Sync.Cron); err != nil {
		return fmt.Errorf("invalid sync cron %q: %w", c.Sync.Cron, err)
	}
	if c.Digest.Enabled {
		if _, err := cron.ParseStandard(c.Digest.Cron); err != nil {
			return fmt.Errorf("invalid digest cron %q: %w", c.Digest.Cron, err)
		}
	}

	return nil
}
