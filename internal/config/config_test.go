package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 20*time.Hour, cfg.Session.TTL)
	assert.Equal(t, SourceFile, cfg.Forms.Source)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formrunner.yaml")
	content := `
server:
  address: 127.0.0.1:9090
session:
  backend: sqlite
  dsn: /var/lib/formrunner/sessions.db
  ttl: 2h
  cookie_secret: s3cret
forms:
  source: api
  api_base_url: http://forms-api.local
  cache_ttl: 1m
logging:
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout, "unset values keep defaults")
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "formrunner_session", cfg.Session.CookieName)
	assert.Equal(t, SourceAPI, cfg.Forms.Source)
	assert.Equal(t, time.Minute, cfg.Forms.CacheTTL)
	assert.Equal(t, 3, cfg.Forms.RetryMax)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeFileNotFound, apperrors.CodeOf(err))
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
		_, err := Load(path)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeFileUnmarshal, apperrors.CodeOf(err))
	})

	t.Run("invalid result", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("session:\n  backend: redis\n"), 0o600))
		_, err := Load(path)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.CodeOf(err))
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(fakeEnv(map[string]string{
		"FORMRUNNER_ADDRESS":         ":3000",
		"FORMRUNNER_SESSION_BACKEND": "redis",
		"FORMRUNNER_SESSION_DSN":     "redis://localhost:6379/0",
		"FORMRUNNER_SESSION_SECRET":  "abc",
		"FORMRUNNER_SESSION_TTL":     "90m",
		"FORMRUNNER_SECURE_COOKIE":   "true",
		"FORMRUNNER_SENTRY_DSN":      "https://public@example.com/1",
		"FORMRUNNER_METRICS_PATH":    "",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Session.DSN)
	assert.Equal(t, "abc", cfg.Session.CookieSecret)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.SecureCookie)
	assert.Equal(t, "https://public@example.com/1", cfg.Reporting.SentryDSN)
	assert.Empty(t, cfg.Server.MetricsPath)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "duration", vars: map[string]string{"FORMRUNNER_FORMS_CACHE_TTL": "soon"}},
		{name: "bool", vars: map[string]string{"FORMRUNNER_SECURE_COOKIE": "perhaps"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ApplyEnv(fakeEnv(tt.vars))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.CodeOf(err))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Session.Backend = "memcached" },
			wantMsg: `session.backend "memcached"`,
		},
		{
			name:    "persistent backend without dsn",
			mutate:  func(c *Config) { c.Session.Backend = "bolt"; c.Session.CookieSecret = "x" },
			wantMsg: "session.dsn is required for the bolt backend",
		},
		{
			name:    "persistent backend without secret",
			mutate:  func(c *Config) { c.Session.Backend = "sqlite"; c.Session.DSN = "s.db" },
			wantMsg: "session.cookie_secret is required",
		},
		{
			name:    "api source without url",
			mutate:  func(c *Config) { c.Forms.Source = SourceAPI },
			wantMsg: "forms.api_base_url is required",
		},
		{
			name:    "file source without dir",
			mutate:  func(c *Config) { c.Forms.Dir = "" },
			wantMsg: "forms.dir is required",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: `logging.format "xml"`,
		},
		{
			name:    "empty address",
			mutate:  func(c *Config) { c.Server.Address = "" },
			wantMsg: "server.address is required",
		},
		{
			name:    "relative metrics path",
			mutate:  func(c *Config) { c.Server.MetricsPath = "metrics" },
			wantMsg: "server.metrics_path must start with /",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
