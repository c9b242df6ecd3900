// Package events records analytics events about visitors moving through forms.
// Events are never logged for preview modes; callers check the mode.
package events

import (
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/formrunner/internal/journey"
)

// Event names
const (
	FormVisit            = "form_visit"
	FirstPageSave        = "first_page_save"
	PageSave             = "page_save"
	ChangeAnswerPageSave = "change_answer_page_save"
	OptionalSave         = "optional_save"
	FormSubmission       = "form_submission"
)

// Sink receives events
type Sink interface {
	Log(name string, attrs map[string]any)
}

// Request is the part of an HTTP request events describe
type Request struct {
	Method string
	URL    string
}

// Logger writes one JSON line per event
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates an event logger writing to w
func NewLogger(w io.Writer) *Logger {
	return &Logger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

func (l *Logger) Log(name string, attrs map[string]any) {
	l.logger.Info().Str("event", name).Fields(attrs).Msg("event")
}

// Discard drops every event
type Discard struct{}

func (Discard) Log(string, map[string]any) {}

// Tee sends every event to each of its sinks in order
type Tee []Sink

// NewTee combines sinks, skipping nil ones
func NewTee(sinks ...Sink) Tee {
	t := make(Tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	return t
}

func (t Tee) Log(name string, attrs map[string]any) {
	for _, s := range t {
		s.Log(name, attrs)
	}
}

// Recorder keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

// Recorded is one event kept by a Recorder
type Recorded struct {
	Name  string
	Attrs map[string]any
}

func (r *Recorder) Log(name string, attrs map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Name: name, Attrs: attrs})
}

// Names returns the recorded event names in order
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name
	}
	return names
}

// FormEvent builds the attributes of a form level event
func FormEvent(c *journey.Context, req Request) map[string]any {
	return map[string]any{
		"form":   c.Form().Name,
		"method": req.Method,
		"url":    req.URL,
	}
}

// PageSaveEvent picks the event for a saved step. A correction from the review
// page wins over an optional question, which wins over the first page.
func PageSaveEvent(c *journey.Context, step *journey.Step, req Request, changingExistingAnswer bool) (string, map[string]any) {
	attrs := FormEvent(c, req)
	attrs["question_number"] = step.QuestionNumber()
	attrs["question_text"] = step.Question().Text()

	switch {
	case changingExistingAnswer:
		return ChangeAnswerPageSave, attrs
	case step.Question().IsOptional():
		if step.Skipped() {
			attrs["skipped_question"] = "true"
		} else {
			attrs["skipped_question"] = "false"
		}
		return OptionalSave, attrs
	case step.Slug() == c.StartPageSlug():
		return FirstPageSave, attrs
	default:
		return PageSave, attrs
	}
}
