package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/formrunner/internal/config"
	"github.com/felixgeelhaar/formrunner/internal/events"
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/formsapi"
	"github.com/felixgeelhaar/formrunner/internal/health"
	"github.com/felixgeelhaar/formrunner/internal/i18n"
	"github.com/felixgeelhaar/formrunner/internal/log"
	"github.com/felixgeelhaar/formrunner/internal/metrics"
	"github.com/felixgeelhaar/formrunner/internal/reporting"
	"github.com/felixgeelhaar/formrunner/internal/server"
	"github.com/felixgeelhaar/formrunner/internal/session"
	"github.com/felixgeelhaar/formrunner/internal/version"
	"github.com/felixgeelhaar/formrunner/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve forms over HTTP",
	Long: `Start the form runner HTTP server.

Forms are served at /form/{mode}/{form_id}/{form_slug}/{page}, where mode is
form, preview-draft or preview-live. Kubernetes-style health endpoints are
served alongside:
  /health/live    - Liveness probe (process alive and responsive)
  /health/ready   - Readiness probe (session store and form source reachable)
  /health/startup - Startup probe (finished initialization)
  /healthz        - Backward-compatible readiness endpoint
  /metrics        - Prometheus metrics (server.metrics_path, empty to disable)

The server drains connections when it receives SIGTERM or SIGINT.

Example:
  # Serve YAML forms from ./forms with in-memory sessions
  formrunner serve --forms-dir ./forms

  # Serve with a config file, overriding the session backend
  formrunner serve --config formrunner.yaml --session-backend redis --session-dsn redis://localhost:6379/0`,
	RunE: runServe,
}

var (
	serveConfigPath     string
	serveAddress        string
	serveFormsDir       string
	serveFormsAPI       string
	serveSessionBackend string
	serveSessionDSN     string
	serveLogLevel       string
	serveLogFormat      string
)

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "YAML config file")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Address to listen on (default 0.0.0.0:8080)")
	serveCmd.Flags().StringVar(&serveFormsDir, "forms-dir", "", "Directory of <id>.yaml form definitions")
	serveCmd.Flags().StringVar(&serveFormsAPI, "forms-api", "", "Forms API base URL, replacing the forms directory")
	serveCmd.Flags().StringVar(&serveSessionBackend, "session-backend", "", "Session backend: memory, redis, sqlite or bolt")
	serveCmd.Flags().StringVar(&serveSessionDSN, "session-dsn", "", "Redis URL, or database file for sqlite and bolt")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format: json or text")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, cmd.ErrOrStderr(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.WithError(err).Warn("closing resources")
		}
	}()

	a.logger.Info("starting form runner",
		"address", cfg.Server.Address,
		"forms_source", cfg.Forms.Source,
		"session_backend", cfg.Session.Backend)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.logger.Info("initiating graceful shutdown")

		// the caller's context is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		a.reporter.Flush(2 * time.Second)
		a.logger.Info("server stopped gracefully")
		return nil
	}
}

// loadServeConfig loads the config file and applies the flags that were set
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return nil, ConfigLoadError(serveConfigPath, err)
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("address", &cfg.Server.Address, serveAddress)
	set("forms-dir", &cfg.Forms.Dir, serveFormsDir)
	set("session-backend", &cfg.Session.Backend, serveSessionBackend)
	set("session-dsn", &cfg.Session.DSN, serveSessionDSN)
	set("log-level", &cfg.Logging.Level, serveLogLevel)
	set("log-format", &cfg.Logging.Format, serveLogFormat)
	if flags.Changed("forms-api") {
		cfg.Forms.Source = config.SourceAPI
		cfg.Forms.APIBaseURL = serveFormsAPI
	}

	if err := cfg.Validate(); err != nil {
		return nil, ConfigLoadError(serveConfigPath, err)
	}
	return cfg, nil
}

// app is the wired server and the resources released when it stops
type app struct {
	server   *server.Server
	probes   *health.ProbeManager
	handler  *web.Handler
	reporter reporting.Reporter
	logger   *log.Logger
	closers  []func() error
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// buildApp wires every component of the server from cfg. Logs go to logOut;
// events named "stdout" go to eventsOut.
func buildApp(ctx context.Context, cfg *config.Config, logOut, eventsOut io.Writer) (*app, error) {
	info := version.GetInfo()
	logger := log.New(log.ConfigFor(cfg.Logging.Level, cfg.Logging.Format, info.Version, logOut))
	log.SetDefaultLogger(logger)

	a := &app{logger: logger, probes: health.NewProbeManager(info.Version)}
	fail := func(err error) (*app, error) {
		_ = a.Close()
		return nil, err
	}

	registry, m := metrics.NewRegistry()

	repo, err := newFormRepository(cfg.Forms, a.probes, logger, m)
	if err != nil {
		return fail(err)
	}

	store, err := session.Open(ctx, session.Options{
		Backend: cfg.Session.Backend,
		DSN:     cfg.Session.DSN,
		TTL:     cfg.Session.TTL,
	})
	if err != nil {
		return fail(SessionStoreError(cfg.Session.Backend, err))
	}
	a.closers = append(a.closers, store.Close)
	a.probes.AddChecker(health.NewPingChecker("session-store", store))
	if sweeper, ok := store.(*session.SQLiteStore); ok {
		sweepCtx, cancel := context.WithCancel(context.Background())
		go sweepSessions(sweepCtx, sweeper, cfg.Session.TTL, logger)
		a.closers = append(a.closers, func() error { cancel(); return nil })
	}

	sink, closeSink, err := newEventSink(cfg.Events.Output, eventsOut)
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, closeSink)

	a.reporter, err = newReporter(cfg.Reporting, info.Version)
	if err != nil {
		return fail(err)
	}

	translations, err := i18n.NewTranslations()
	if err != nil {
		return fail(err)
	}

	var signer *session.CookieSigner
	if cfg.Session.CookieSecret != "" {
		signer = session.NewCookieSigner(cfg.Session.CookieSecret)
	} else {
		logger.Warn("no session.cookie_secret set, sessions will not survive a restart")
	}

	a.handler = web.New(web.Options{
		Forms:        repo,
		Sessions:     store,
		Translations: translations,
		Signer:       signer,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.SecureCookie,
		SessionTTL:   cfg.Session.TTL,
		Events:       events.NewTee(sink, m),
		Reporter:     a.reporter,
		Logger:       logger,
		Metrics:      m,
	})

	a.server = server.NewServer(a.probes, server.Config{
		Address:         cfg.Server.Address,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		Metrics:         metrics.HandlerFor(registry),
		MetricsPath:     cfg.Server.MetricsPath,
	}, a.handler)
	return a, nil
}

// newFormRepository builds the configured form source and registers its health check
func newFormRepository(cfg config.FormsConfig, probes *health.ProbeManager, logger *log.Logger, m *metrics.Metrics) (form.Repository, error) {
	switch cfg.Source {
	case config.SourceFile:
		probes.AddChecker(health.NewDirChecker("forms-dir", cfg.Dir))
		return form.NewFileRepository(cfg.Dir), nil

	case config.SourceAPI:
		client := formsapi.NewClient(formsapi.Options{
			BaseURL:  cfg.APIBaseURL,
			Token:    cfg.APIToken,
			Timeout:  cfg.Timeout,
			RetryMax: cfg.RetryMax,
			Logger:   logger,
		})
		probes.AddChecker(health.NewPingChecker("forms-api", client))
		if cfg.CacheSize == 0 {
			return client, nil
		}
		cached := formsapi.NewCachingRepository(client, cfg.CacheSize, cfg.CacheTTL)
		cached.OnLookup(m.RecordCacheLookup)
		return cached, nil
	}
	return nil, fmt.Errorf("unknown forms source %q", cfg.Source)
}

// newEventSink opens the analytics event destination. The returned func closes it.
func newEventSink(output string, stdout io.Writer) (events.Sink, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "", "stdout":
		return events.NewLogger(stdout), noop, nil
	case "stderr":
		return events.NewLogger(os.Stderr), noop, nil
	case "discard":
		return events.Discard{}, noop, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open events output: %w", err)
	}
	return events.NewLogger(f), f.Close, nil
}

// newReporter reports to Sentry when a DSN is configured
func newReporter(cfg config.ReportingConfig, release string) (reporting.Reporter, error) {
	if cfg.SentryDSN == "" {
		return reporting.Noop{}, nil
	}
	r, err := reporting.NewSentry(reporting.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     "formrunner@" + release,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return r, nil
}

// sweepSessions deletes sqlite sessions idle for longer than ttl until ctx ends
func sweepSessions(ctx context.Context, store *session.SQLiteStore, ttl time.Duration, logger *log.Logger) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.DeleteOlderThan(ctx, now.Add(-ttl))
			if err != nil {
				logger.WithError(err).Warn("sweeping expired sessions")
				continue
			}
			if n > 0 {
				logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
