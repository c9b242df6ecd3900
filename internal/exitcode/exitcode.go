// Package exitcode maps CLI errors to process exit codes.
package exitcode

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
	"github.com/felixgeelhaar/formrunner/internal/form"
)

const (
	Success      = 0
	GeneralError = 1
	// UsageError is bad flags or arguments
	UsageError = 2
	// InvalidForm is a form definition that failed validation
	InvalidForm = 3
	// ConfigError is an invalid or unreadable configuration
	ConfigError = 4
	// BackendError is an unreachable session store or forms API
	BackendError = 5
	// NotFound is a missing form or file
	NotFound = 6
	// Interrupted is SIGINT or SIGTERM, following the shell's 128+signal convention
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with the code for err
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode picks the exit code for err from its error code, falling back
// to the message for errors raised by cobra
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch code := apperrors.CodeOf(err); code {
	case apperrors.ErrCodeFormInvalid, apperrors.ErrCodeFormNoStartPage, apperrors.ErrCodeFormUnsupportedType:
		return InvalidForm
	case apperrors.ErrCodeConfigInvalid, apperrors.ErrCodeConfigLoad:
		return ConfigError
	case apperrors.ErrCodeSessionBackend, apperrors.ErrCodeFormAPI:
		return BackendError
	case apperrors.ErrCodeFormNotFound, apperrors.ErrCodeFileNotFound:
		return NotFound
	}

	if errors.Is(err, form.ErrFormNotFound) || errors.Is(err, os.ErrNotExist) {
		return NotFound
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return BackendError
	}

	msg := strings.ToLower(err.Error())
	for _, usage := range []string{"unknown command", "unknown flag", "invalid argument", "required flag", "accepts ", "requires at least"} {
		if strings.Contains(msg, usage) {
			return UsageError
		}
	}
	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case InvalidForm:
		return "Invalid form definition"
	case ConfigError:
		return "Configuration error"
	case BackendError:
		return "Session store or forms API unavailable"
	case NotFound:
		return "Form or file not found"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
