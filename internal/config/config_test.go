package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `app:
  name: "Glansen"
  environment: "development"
  port: 8080
  base_domain: "glansen.local"

database:
  driver: "sqlite"
  filename: "data/glansen.db"

backend:
  base_url: "https://api.example.com/rest/v1"
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.App.DefaultTimezone != "Europe/Oslo" {
		t.Fatalf("default timezone = %q", cfg.App.DefaultTimezone)
	}
	if cfg.Sync.Cron != "*/10 * * * *" || cfg.Sync.Concurrency != 4 {
		t.Fatalf("sync defaults = %+v", cfg.Sync)
	}
	if cfg.Dashboard.UpcomingLimit != 8 {
		t.Fatalf("upcoming limit = %d", cfg.Dashboard.UpcomingLimit)
	}
	if cfg.Backend.Timeout().Seconds() != 15 {
		t.Fatalf("backend timeout = %s", cfg.Backend.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "missing_name", mutate: func(c *Config) { c.App.Name = "" }, wantErr: "app name"},
		{name: "missing_port", mutate: func(c *Config) { c.App.Port = 0 }, wantErr: "app port"},
		{name: "missing_base_domain", mutate: func(c *Config) { c.App.BaseDomain = "" }, wantErr: "base_domain"},
		{name: "bad_timezone", mutate: func(c *Config) { c.App.DefaultTimezone = "Mars/Olympus" }, wantErr: "default_timezone"},
		{name: "missing_driver", mutate: func(c *Config) { c.Database.Driver = "" }, wantErr: "driver is required"},
		{name: "unsupported_driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: "unsupported"},
		{name: "missing_filename", mutate: func(c *Config) { c.Database.Filename = "" }, wantErr: "filename"},
		{name: "missing_backend", mutate: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: "base_url is required"},
		{name: "relative_backend", mutate: func(c *Config) { c.Backend.BaseURL = "/rest/v1" }, wantErr: "absolute URL"},
		{name: "bad_sync_cron", mutate: func(c *Config) { c.Sync.Cron = "every minute" }, wantErr: "sync cron"},
		{
			name: "bad_digest_cron_when_enabled",
			mutate: func(c *Config) {
				c.Digest.Enabled = true
				c.Digest.Cron = "61 * * * *"
			},
			wantErr: "digest cron",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validConfig))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			test.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("error = %q, want substring %q", err.Error(), test.wantErr)
			}
		})
	}
}

func TestLoadReadsSecretsFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(validConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("BACKEND_API_KEY", "backend-key")
	t.Setenv("AWS_SES_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SES_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.APIKey != "backend-key" {
		t.Fatalf("backend api key = %q", cfg.Backend.APIKey)
	}
	if cfg.Email.Configured() {
		t.Fatalf("email should not be configured without region and sender")
	}

	cfg.Email.Region = "eu-north-1"
	cfg.Email.Sender = "digest@glansen.no"
	if !cfg.Email.Configured() {
		t.Fatalf("email should be configured")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing config")
	}
}
