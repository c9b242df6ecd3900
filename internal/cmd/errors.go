package cmd

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with actionable recovery suggestions
type ErrorWithSuggestion struct {
	Message     string
	Suggestions []string
	err         error
}

func (e *ErrorWithSuggestion) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if e.err != nil {
		b.WriteString("\n\nDetails: ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.err
}

// NewErrorWithSuggestions creates an error with recovery suggestions
func NewErrorWithSuggestions(msg string, err error, suggestions ...string) error {
	return &ErrorWithSuggestion{
		Message:     msg,
		Suggestions: suggestions,
		err:         err,
	}
}

// ConfigLoadError explains a configuration that could not be loaded
func ConfigLoadError(path string, err error) error {
	if path == "" {
		path = "defaults and FORMRUNNER_* environment"
	}
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to load configuration from %s", path),
		err,
		"Check the file exists and is valid YAML",
		"Persistent session backends need session.dsn and session.cookie_secret",
		"Environment variables such as FORMRUNNER_SESSION_DSN override the file",
	)
}

// SessionStoreError explains a session backend that could not be opened
func SessionStoreError(backend string, err error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to open the %s session store", backend),
		err,
		"Check session.dsn points at a reachable redis server or a writable file",
		"Use --session-backend memory to run without persistence",
	)
}

// FormLoadError explains a form definition that could not be read
func FormLoadError(path string, err error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to load form %q", path),
		err,
		"Validate the definition: formrunner forms validate "+path,
	)
}
