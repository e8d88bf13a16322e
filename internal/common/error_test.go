package common

import (
	"errors"
	"testing"

	"chachatb/internal/tb"
)

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "Invalid SevNone",
			err:      NewError(tb.ErrSevNone, tb.OK),
			expected: "HARNESS INTERNAL ERROR: Invalid Error Object",
		},
		{
			name:     "Invalid Sev Out of Bounds",
			err:      NewError(tb.ErrSeverity(99), tb.OK),
			expected: "HARNESS INTERNAL ERROR: Invalid Error Object",
		},
		{
			name:     "Error Basic",
			err:      NewError(tb.ErrSevError, tb.ErrFail),
			expected: "ERROR:0x0001 (TB_ERR_FAIL) [General failure.]; ",
		},
		{
			name:     "Error with msg",
			err:      NewErrorMsg(tb.ErrSevWarn, tb.ErrConfig, "bad width"),
			expected: "WARN :0x0005 (TB_ERR_CONFIG) [Harness configuration error.]; bad width",
		},
		{
			name:     "Timeout with phase and time",
			err:      NewErrorAt(tb.ErrSevError, tb.ErrTimeout, tb.PhaseEncrypt, 10000, "3 of 25 units"),
			expected: "ERROR:0x0008 (TB_ERR_TIMEOUT) [Simulated time budget exhausted before phase completion.]; Phase=encryption; SimTime=10000; 3 of 25 units",
		},
		{
			name:     "Info",
			err:      NewError(tb.ErrSevInfo, tb.OK),
			expected: "INFO :0x0000 (TB_OK) [No Error.]; ",
		},
		{
			name:     "Unknown error code",
			err:      NewError(tb.ErrSevError, 9999),
			expected: "ERROR:0x270f (unknown); ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.err.Error()
			if got != tc.expected {
				t.Errorf("Expected string: %q, got: %q", tc.expected, got)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := NewErrorAt(tb.ErrSevError, tb.ErrTimeout, tb.PhaseDecrypt, 42, "stalled")
	if !errors.Is(err, NewError(tb.ErrSevError, tb.ErrTimeout)) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, NewError(tb.ErrSevError, tb.ErrLengthMismatch)) {
		t.Error("expected errors.Is to reject a different code")
	}
	if errors.Is(err, errors.New("stalled")) {
		t.Error("expected errors.Is to reject a non harness error")
	}
}

func TestCodeName(t *testing.T) {
	if got := CodeName(tb.ErrLengthMismatch); got != "TB_ERR_LENGTH_MISMATCH" {
		t.Errorf("got %q", got)
	}
	if got := CodeName(tb.Err(500)); got != "TB_ERR_UNKNOWN" {
		t.Errorf("got %q", got)
	}
}
