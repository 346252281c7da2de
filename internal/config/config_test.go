package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("TOD_CONFIG", "")
	t.Setenv("TOD_API_BASE_URL", "https://api.example.com")
	t.Setenv("TOD_STORAGE_DRIVER", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %s", cfg.HTTPTimeout)
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("unexpected storage driver %q", cfg.StorageDriver)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	for _, key := range []string{"TOD_API_BASE_URL", "TOD_HTTP_TIMEOUT", "TOD_STORAGE_DRIVER", "TOD_REDIS_ADDR"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	file := filepath.Join(t.TempDir(), "tod.yaml")
	content := "api_base_url: https://cards.example.org\nhttp_timeout: 5s\nstorage_driver: redis\nredis_addr: 127.0.0.1:6380\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://cards.example.org" || cfg.HTTPTimeout != 5*time.Second || cfg.RedisAddr != "127.0.0.1:6380" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		return Config{
			APIBaseURL:    "https://api.example.com",
			HTTPTimeout:   time.Second,
			StorageDriver: "sqlite",
			LogFormat:     "text",
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "relative url", mutate: func(c *Config) { c.APIBaseURL = "/api" }, want: "TOD_API_BASE_URL"},
		{name: "ftp url", mutate: func(c *Config) { c.APIBaseURL = "ftp://x" }, want: "scheme"},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTPTimeout = 0 }, want: "TOD_HTTP_TIMEOUT"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "etcd" }, want: "TOD_STORAGE_DRIVER"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StorageDriver = "postgres"; c.StorageDSN = "" }, want: "TOD_STORAGE_DSN"},
		{name: "log format", mutate: func(c *Config) { c.LogFormat = "xml" }, want: "TOD_LOG_FORMAT"},
		{name: "otel without endpoint", mutate: func(c *Config) { c.OTELTracingEnabled = true }, want: "OTEL_EXPORTER_OTLP_ENDPOINT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			var fe *FieldError
			if !errors.As(err, &fe) || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected field error containing %q, got %v", tc.want, err)
			}
		})
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Fatalf("expected read error, got %v", err)
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		t.Fatalf("read failure must not look like a field error: %v", fe)
	}
}
