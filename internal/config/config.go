package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	APIBaseURL  string        `yaml:"api_base_url" env:"TOD_API_BASE_URL" env-default:"http://localhost:8080"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"TOD_HTTP_TIMEOUT" env-default:"30s"`
	UserAgent   string        `yaml:"user_agent" env:"TOD_USER_AGENT" env-default:"tod-cli"`

	StorageDriver string `yaml:"storage_driver" env:"TOD_STORAGE_DRIVER" env-default:"sqlite"`
	StorageDSN    string `yaml:"storage_dsn" env:"TOD_STORAGE_DSN" env-default:"file:tod.db"`
	RedisAddr     string `yaml:"redis_addr" env:"TOD_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPrefix   string `yaml:"redis_prefix" env:"TOD_REDIS_PREFIX" env-default:"tod"`

	LogLevel  string `yaml:"log_level" env:"TOD_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"TOD_LOG_FORMAT" env-default:"text"`

	OTELServiceName           string        `yaml:"otel_service_name" env:"OTEL_SERVICE_NAME" env-default:"tod-client"`
	OTELEnvironment           string        `yaml:"otel_environment" env:"OTEL_ENVIRONMENT" env-default:"local"`
	OTELExporterOTLPEndpoint  string        `yaml:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTELExporterOTLPInsecure  bool          `yaml:"otel_exporter_otlp_insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"true"`
	OTELMetricsEnabled        bool          `yaml:"otel_metrics_enabled" env:"OTEL_METRICS_ENABLED" env-default:"false"`
	OTELTracingEnabled        bool          `yaml:"otel_tracing_enabled" env:"OTEL_TRACING_ENABLED" env-default:"false"`
	OTELLogsEnabled           bool          `yaml:"otel_logs_enabled" env:"OTEL_LOGS_ENABLED" env-default:"false"`
	OTELMetricsExportInterval time.Duration `yaml:"otel_metrics_export_interval" env:"OTEL_METRICS_EXPORT_INTERVAL" env-default:"15s"`
}

// Load reads path when it is set (YAML or .env), otherwise only the
// environment. TOD_CONFIG is consulted when path is empty. Validation
// failures unwrap to *FieldError.
func Load(path string) (*Config, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("TOD_CONFIG"))
	}
	source := sourceEnv
	if path != "" {
		source = sourceFile
	}
	cfg, stage, err := load(path)
	recordLoad(context.Background(), newLoadEvent(source, stage, err))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, string, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, stageRead, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, stageRead, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, stageValidate, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, stageNone, nil
}

// FieldError names the setting that failed validation by its env key.
type FieldError struct {
	Key    string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Key + " " + e.Reason
}

func invalid(key, format string, args ...any) error {
	return &FieldError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("TOD_API_BASE_URL", "must be an absolute URL, got %q", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("TOD_API_BASE_URL", "scheme must be http or https, got %q", u.Scheme)
	}
	if c.HTTPTimeout <= 0 {
		return invalid("TOD_HTTP_TIMEOUT", "must be positive")
	}
	switch strings.ToLower(c.StorageDriver) {
	case "memory", "sqlite":
	case "postgres":
		if c.StorageDSN == "" {
			return invalid("TOD_STORAGE_DSN", "is required for postgres storage")
		}
	case "redis":
		if c.RedisAddr == "" {
			return invalid("TOD_REDIS_ADDR", "is required for redis storage")
		}
	default:
		return invalid("TOD_STORAGE_DRIVER", "must be one of memory, sqlite, postgres, redis; got %q", c.StorageDriver)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return invalid("TOD_LOG_FORMAT", "must be text or json, got %q", c.LogFormat)
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		return invalid("OTEL_EXPORTER_OTLP_ENDPOINT", "is required when telemetry export is enabled")
	}
	return nil
}
