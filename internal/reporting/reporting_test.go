package reporting

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentryCaptureException(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []*sentry.Event
	)
	reporter, err := NewSentry(Options{
		DSN:         "https://public@example.com/1",
		Environment: "test",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			sent = append(sent, event)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)

	reporter.CaptureException(errors.New("page not found"))
	reporter.CaptureException(nil)
	reporter.Flush(time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.Equal(t, "test", sent[0].Environment)
	require.NotEmpty(t, sent[0].Exception)
	assert.Equal(t, "page not found", sent[0].Exception[0].Value)
}

func TestNewSentryRejectsBadDSN(t *testing.T) {
	_, err := NewSentry(Options{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var reporter Reporter = &r
	boom := errors.New("boom")

	reporter.CaptureException(boom)
	assert.True(t, reporter.Flush(time.Millisecond))
	assert.Equal(t, []error{boom}, r.Errors())

	var noop Reporter = Noop{}
	noop.CaptureException(boom)
	assert.True(t, noop.Flush(time.Millisecond))
}
