package log

import "sync"

var (
	defaultLogger *Logger
	loggerMu      sync.RWMutex
)

// SetDefaultLogger replaces the process-wide logger. Passing nil restores the
// lazily created default.
func SetDefaultLogger(logger *Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = logger
}

// DefaultLogger returns the process-wide logger, creating one with
// DefaultConfig on first use.
func DefaultLogger() *Logger {
	loggerMu.RLock()
	l := defaultLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = Default()
	}
	return defaultLogger
}
