package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"chachatb/internal/tb"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a -log_level flag value to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SeverityDebug, nil
	case "info", "":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger interface defines the logging contract for the harness
type Logger interface {
	Log(severity Severity, msg string)
	Logf(severity Severity, format string, args ...interface{})
	Error(err error)
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
}

// StdLogger implements the Logger interface using Go's standard logger
type StdLogger struct {
	debugLog   *log.Logger
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	minLevel   Severity
}

// NewStdLogger creates a logger writing to stderr, so the console report on
// stdout stays clean.
func NewStdLogger(minLevel Severity) *StdLogger {
	return NewStdLoggerWithWriter(os.Stderr, os.Stderr, minLevel)
}

// NewStdLoggerWithWriter creates a new standard logger with custom writers
func NewStdLoggerWithWriter(stdout, stderr io.Writer, minLevel Severity) *StdLogger {
	return &StdLogger{
		debugLog:   log.New(stdout, "DEBUG: ", log.Ltime|log.Lmicroseconds),
		infoLog:    log.New(stdout, "INFO: ", log.Ltime),
		warningLog: log.New(stdout, "WARNING: ", log.Ltime),
		errorLog:   log.New(stderr, "ERROR: ", log.Ltime),
		minLevel:   minLevel,
	}
}

// MinLevel returns the lowest severity that is written.
func (l *StdLogger) MinLevel() Severity {
	return l.minLevel
}

// Log logs a message with the specified severity
func (l *StdLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}

	switch severity {
	case SeverityDebug:
		l.debugLog.Output(2, msg)
	case SeverityInfo:
		l.infoLog.Output(2, msg)
	case SeverityWarning:
		l.warningLog.Output(2, msg)
	case SeverityError:
		l.errorLog.Output(2, msg)
	}
}

// Logf logs a formatted message with the specified severity
func (l *StdLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error
func (l *StdLogger) Error(err error) {
	if err != nil {
		l.Log(SeverityError, err.Error())
	}
}

func (l *StdLogger) Debug(msg string)   { l.Log(SeverityDebug, msg) }
func (l *StdLogger) Info(msg string)    { l.Log(SeverityInfo, msg) }
func (l *StdLogger) Warning(msg string) { l.Log(SeverityWarning, msg) }

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Log(severity Severity, msg string)                         {}
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}
func (l *NoOpLogger) Error(err error)                                           {}
func (l *NoOpLogger) Debug(msg string)                                          {}
func (l *NoOpLogger) Info(msg string)                                           {}
func (l *NoOpLogger) Warning(msg string)                                        {}

// ErrorLogAdapter forwards component log traffic, filtered by
// tb.ErrSeverity, to a Logger.
type ErrorLogAdapter struct {
	logger Logger
}

// NewErrorLogAdapter wraps logger for attachment to a component.
func NewErrorLogAdapter(logger Logger) *ErrorLogAdapter {
	return &ErrorLogAdapter{logger: logger}
}

// LogError logs an error message.
func (a *ErrorLogAdapter) LogError(filterLevel tb.ErrSeverity, msg string) {
	a.logger.Log(severityFor(filterLevel), msg)
}

// LogMessage logs a component message.
func (a *ErrorLogAdapter) LogMessage(filterLevel tb.ErrSeverity, msg string) {
	a.logger.Log(severityFor(filterLevel), msg)
}

func severityFor(sev tb.ErrSeverity) Severity {
	switch sev {
	case tb.ErrSevError:
		return SeverityError
	case tb.ErrSevWarn:
		return SeverityWarning
	case tb.ErrSevInfo:
		return SeverityInfo
	default:
		return SeverityDebug
	}
}

// ErrSeverityFor maps a logger threshold to the component verbosity that
// produces the same messages.
func ErrSeverityFor(s Severity) tb.ErrSeverity {
	switch s {
	case SeverityDebug:
		return tb.ErrSevDebug
	case SeverityInfo:
		return tb.ErrSevInfo
	case SeverityWarning:
		return tb.ErrSevWarn
	default:
		return tb.ErrSevError
	}
}
