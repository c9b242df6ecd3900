// Package config loads the formrunner server configuration from a YAML file with
// FORMRUNNER_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

// Form sources
const (
	SourceFile = "file"
	SourceAPI  = "api"
)

// Config is the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Forms     FormsConfig     `yaml:"forms"`
	Logging   LoggingConfig   `yaml:"logging"`
	Events    EventsConfig    `yaml:"events"`
	Reporting ReportingConfig `yaml:"reporting"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	// MetricsPath serves Prometheus metrics; empty disables them
	MetricsPath string `yaml:"metrics_path"`
}

type SessionConfig struct {
	Backend      string        `yaml:"backend"`       // memory, redis, sqlite, bolt
	DSN          string        `yaml:"dsn,omitempty"` // redis URL, or database file for sqlite and bolt
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecret string        `yaml:"cookie_secret,omitempty"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

type FormsConfig struct {
	Source     string        `yaml:"source"` // file or api
	Dir        string        `yaml:"dir,omitempty"`
	APIBaseURL string        `yaml:"api_base_url,omitempty"`
	APIToken   string        `yaml:"api_token,omitempty"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryMax   int           `yaml:"retry_max"`
	CacheSize  int           `yaml:"cache_size"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type EventsConfig struct {
	// Output is stdout, stderr, discard or a file path
	Output string `yaml:"output"`
}

type ReportingConfig struct {
	SentryDSN   string `yaml:"sentry_dsn,omitempty"`
	Environment string `yaml:"environment,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         "0.0.0.0:8080",
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			MetricsPath:     "/metrics",
		},
		Session: SessionConfig{
			Backend:    "memory",
			TTL:        20 * time.Hour,
			CookieName: "formrunner_session",
		},
		Forms: FormsConfig{
			Source:    SourceFile,
			Dir:       "forms",
			Timeout:   5 * time.Second,
			RetryMax:  3,
			CacheSize: 100,
			CacheTTL:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Events: EventsConfig{
			Output: "stdout",
		},
		Reporting: ReportingConfig{
			Environment: "local",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, apperrors.NewFileNotFoundError(path)
			}
			return nil, apperrors.Wrap(apperrors.ErrCodeConfigLoad, "failed to read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.NewFileUnmarshalError(path, "YAML", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from FORMRUNNER_* variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"FORMRUNNER_ADDRESS":            &c.Server.Address,
		"FORMRUNNER_METRICS_PATH":       &c.Server.MetricsPath,
		"FORMRUNNER_SESSION_BACKEND":    &c.Session.Backend,
		"FORMRUNNER_SESSION_DSN":        &c.Session.DSN,
		"FORMRUNNER_SESSION_SECRET":     &c.Session.CookieSecret,
		"FORMRUNNER_FORMS_SOURCE":       &c.Forms.Source,
		"FORMRUNNER_FORMS_DIR":          &c.Forms.Dir,
		"FORMRUNNER_FORMS_API_BASE_URL": &c.Forms.APIBaseURL,
		"FORMRUNNER_FORMS_API_TOKEN":    &c.Forms.APIToken,
		"FORMRUNNER_LOG_LEVEL":          &c.Logging.Level,
		"FORMRUNNER_LOG_FORMAT":         &c.Logging.Format,
		"FORMRUNNER_EVENTS_OUTPUT":      &c.Events.Output,
		"FORMRUNNER_SENTRY_DSN":         &c.Reporting.SentryDSN,
		"FORMRUNNER_ENVIRONMENT":        &c.Reporting.Environment,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"FORMRUNNER_SESSION_TTL":     &c.Session.TTL,
		"FORMRUNNER_FORMS_CACHE_TTL": &c.Forms.CacheTTL,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.NewConfigInvalidError(fmt.Sprintf("%s: %v", key, err))
		}
		*dst = d
	}

	if v, ok := lookup("FORMRUNNER_SECURE_COOKIE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.NewConfigInvalidError(fmt.Sprintf("FORMRUNNER_SECURE_COOKIE: %v", err))
		}
		c.Session.SecureCookie = b
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Address == "" {
		problems = append(problems, "server.address is required")
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		problems = append(problems, "server.metrics_path must start with /")
	}

	switch c.Session.Backend {
	case "memory":
	case "redis", "sqlite", "bolt":
		if c.Session.DSN == "" {
			problems = append(problems, fmt.Sprintf("session.dsn is required for the %s backend", c.Session.Backend))
		}
		if c.Session.CookieSecret == "" {
			problems = append(problems, "session.cookie_secret is required for persistent sessions")
		}
	default:
		problems = append(problems, fmt.Sprintf("session.backend %q is not one of memory, redis, sqlite, bolt", c.Session.Backend))
	}
	if c.Session.CookieName == "" {
		problems = append(problems, "session.cookie_name is required")
	}

	switch c.Forms.Source {
	case SourceFile:
		if c.Forms.Dir == "" {
			problems = append(problems, "forms.dir is required for the file source")
		}
	case SourceAPI:
		if c.Forms.APIBaseURL == "" {
			problems = append(problems, "forms.api_base_url is required for the api source")
		}
	default:
		problems = append(problems, fmt.Sprintf("forms.source %q is not one of file, api", c.Forms.Source))
	}
	if c.Forms.CacheSize < 0 {
		problems = append(problems, "forms.cache_size must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of json, text", c.Logging.Format))
	}

	if len(problems) > 0 {
		return apperrors.NewConfigInvalidError(strings.Join(problems, "; "))
	}
	return nil
}
