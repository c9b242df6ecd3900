// Package reporting sends unexpected errors to an operator-facing channel.
package reporting

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter captures errors for operators
type Reporter interface {
	CaptureException(err error)
	Flush(timeout time.Duration) bool
}

// Options configures the Sentry reporter
type Options struct {
	DSN         string
	Environment string
	Release     string
	// BeforeSend may drop or alter events before they are sent
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// Sentry reports errors to Sentry
type Sentry struct {
	hub *sentry.Hub
}

// NewSentry creates a reporter with its own hub
func NewSentry(opts Options) (*Sentry, error) {
	env := opts.Environment
	if env == "" {
		env = "local"
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      env,
		Release:          opts.Release,
		TracesSampleRate: 0,
		BeforeSend:       opts.BeforeSend,
	})
	if err != nil {
		return nil, err
	}
	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sentry) CaptureException(err error) {
	if err == nil {
		return
	}
	s.hub.CaptureException(err)
}

func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

// Noop drops every error
type Noop struct{}

func (Noop) CaptureException(error)   {}
func (Noop) Flush(time.Duration) bool { return true }

// Recorder keeps captured errors in memory
type Recorder struct {
	mu     sync.Mutex
	errors []error
}

func (r *Recorder) CaptureException(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *Recorder) Flush(time.Duration) bool { return true }

// Errors returns the captured errors
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}
