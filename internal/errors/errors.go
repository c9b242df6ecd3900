package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Form definition errors (FORM-001 to FORM-099)
	ErrCodeFormNotFound        ErrorCode = "FORM-001"
	ErrCodeFormInvalid         ErrorCode = "FORM-002"
	ErrCodeFormNotLive         ErrorCode = "FORM-003"
	ErrCodeFormNoStartPage     ErrorCode = "FORM-004"
	ErrCodeFormUnsupportedType ErrorCode = "FORM-005"
	ErrCodeFormAPI             ErrorCode = "FORM-006"

	// Page errors (PAGE-001 to PAGE-099)
	ErrCodePageNotFound ErrorCode = "PAGE-001"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionBackend  ErrorCode = "SESSION-001"
	ErrCodeSessionLoad     ErrorCode = "SESSION-002"
	ErrCodeSessionSave     ErrorCode = "SESSION-003"
	ErrCodeSessionCorrupt  ErrorCode = "SESSION-004"
	ErrCodeSessionTampered ErrorCode = "SESSION-005"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// RunnerError represents an enhanced error with code, suggestions, and documentation
type RunnerError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *RunnerError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", suggestion)
		}
	}

	if e.DocsURL != "" {
		fmt.Fprintf(&b, "\n\nDocumentation: %s", e.DocsURL)
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *RunnerError) Unwrap() error {
	return e.Cause
}

// New creates a new RunnerError
func New(code ErrorCode, message string) *RunnerError {
	return &RunnerError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new RunnerError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *RunnerError {
	return &RunnerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *RunnerError) WithSuggestion(suggestion string) *RunnerError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *RunnerError) WithSuggestions(suggestions ...string) *RunnerError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *RunnerError) WithDocs(url string) *RunnerError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first RunnerError in err's chain, or "" when there is none
func CodeOf(err error) ErrorCode {
	for err != nil {
		if re, ok := err.(*RunnerError); ok {
			return re.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Common error constructors for frequently used errors

// NewFormNotFoundError creates a form not found error
func NewFormNotFoundError(id int64) *RunnerError {
	return New(ErrCodeFormNotFound, fmt.Sprintf("form not found: %d", id)).
		WithSuggestion("Check the form id in the URL").
		WithSuggestion("Run 'formrunner forms validate <file>' to check the form definition").
		WithDocs("https://github.com/felixgeelhaar/formrunner#form-definitions")
}

// NewFormInvalidError creates a form definition validation error
func NewFormInvalidError(path string, cause error) *RunnerError {
	return Wrap(ErrCodeFormInvalid, fmt.Sprintf("invalid form definition: %s", path), cause).
		WithSuggestion("Every page needs a unique id, question_text and answer_type").
		WithSuggestion("next_page and start_page must reference pages of the same form").
		WithDocs("https://github.com/felixgeelhaar/formrunner#form-definitions")
}

// NewFormAPIError creates a forms API failure
func NewFormAPIError(url string, cause error) *RunnerError {
	return Wrap(ErrCodeFormAPI, fmt.Sprintf("forms API request failed: %s", url), cause).
		WithSuggestion("Check forms.api_base_url and forms.api_token in the config file").
		WithSuggestion("Run 'curl <base>/health' to verify the forms API is reachable")
}

// NewSessionBackendError creates a session backend connection error
func NewSessionBackendError(backend string, cause error) *RunnerError {
	return Wrap(ErrCodeSessionBackend, fmt.Sprintf("session backend unavailable: %s", backend), cause).
		WithSuggestion("Check session.backend and session.dsn in the config file").
		WithSuggestion("Use session.backend: memory for local development")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *RunnerError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Compare your config file with examples/formrunner.yaml").
		WithDocs("https://github.com/felixgeelhaar/formrunner#configuration")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *RunnerError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *RunnerError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
