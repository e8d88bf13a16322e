package common

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"chachatb/internal/tb"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityDebug, "DEBUG"},
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityError, "ERROR"},
		{Severity(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.expected {
				t.Errorf("Severity.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"debug", SeverityDebug, false},
		{"INFO", SeverityInfo, false},
		{"", SeverityInfo, false},
		{" warn ", SeverityWarning, false},
		{"warning", SeverityWarning, false},
		{"error", SeverityError, false},
		{"loud", SeverityInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeverity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStdLogger_Log(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewStdLoggerWithWriter(&stdout, &stderr, SeverityDebug)

	tests := []struct {
		name     string
		severity Severity
		message  string
		checkOut bool // true for stdout, false for stderr
	}{
		{"Debug", SeverityDebug, "debug message", true},
		{"Info", SeverityInfo, "info message", true},
		{"Warning", SeverityWarning, "warning message", true},
		{"Error", SeverityError, "error message", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout.Reset()
			stderr.Reset()

			logger.Log(tt.severity, tt.message)

			output := stderr.String()
			if tt.checkOut {
				output = stdout.String()
			}
			if !strings.Contains(output, tt.message) {
				t.Errorf("Log output should contain %q, got: %s", tt.message, output)
			}
			if !strings.Contains(output, tt.severity.String()) {
				t.Errorf("Log output should contain severity %q, got: %s", tt.severity.String(), output)
			}
		})
	}
}

func TestStdLogger_ErrorAndMinLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewStdLoggerWithWriter(&stdout, &stderr, SeverityWarning)
	if logger.MinLevel() != SeverityWarning {
		t.Errorf("MinLevel() = %v", logger.MinLevel())
	}

	logger.Debug("debug message")
	logger.Info("info message")
	if stdout.Len() != 0 {
		t.Errorf("Debug and Info should not be logged when minLevel is Warning, got: %s", stdout.String())
	}

	logger.Logf(SeverityWarning, "phase %s stalled at %d", "encryption", 10000)
	if !strings.Contains(stdout.String(), "phase encryption stalled at 10000") {
		t.Errorf("Logf output missing, got: %s", stdout.String())
	}

	logger.Error(errors.New("test error"))
	if !strings.Contains(stderr.String(), "test error") {
		t.Errorf("Error output should contain error message, got: %s", stderr.String())
	}

	stderr.Reset()
	logger.Error(nil)
	if stderr.Len() != 0 {
		t.Errorf("Error(nil) should not log anything, got: %s", stderr.String())
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()
	logger.Log(SeverityInfo, "test")
	logger.Logf(SeverityInfo, "test %s", "formatted")
	logger.Error(errors.New("test error"))
	logger.Debug("debug")
	logger.Info("info")
	logger.Warning("warning")
}

func TestErrorLogAdapter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	adapter := NewErrorLogAdapter(NewStdLoggerWithWriter(&stdout, &stderr, SeverityDebug))

	adapter.LogMessage(tb.ErrSevInfo, "reset released")
	adapter.LogMessage(tb.ErrSevDebug, "unit 3 offered")
	adapter.LogError(tb.ErrSevError, "phase timed out")

	out := stdout.String()
	if !strings.Contains(out, "INFO: ") || !strings.Contains(out, "reset released") {
		t.Errorf("info message not forwarded: %q", out)
	}
	if !strings.Contains(out, "DEBUG: ") || !strings.Contains(out, "unit 3 offered") {
		t.Errorf("debug message not forwarded: %q", out)
	}
	if !strings.Contains(stderr.String(), "phase timed out") {
		t.Errorf("error not forwarded: %q", stderr.String())
	}
}

func TestErrSeverityFor(t *testing.T) {
	tests := []struct {
		in   Severity
		want tb.ErrSeverity
	}{
		{SeverityDebug, tb.ErrSevDebug},
		{SeverityInfo, tb.ErrSevInfo},
		{SeverityWarning, tb.ErrSevWarn},
		{SeverityError, tb.ErrSevError},
	}
	for _, tt := range tests {
		if got := ErrSeverityFor(tt.in); got != tt.want {
			t.Errorf("ErrSeverityFor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
