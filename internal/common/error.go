package common

import (
	"fmt"
	"strings"

	"chachatb/internal/tb"
)

// Error represents a harness error object.
// Protocol failures are reported as values of this type inside an outcome,
// never as panics.
type Error struct {
	Code    tb.Err
	Sev     tb.ErrSeverity
	Time    tb.SimTime
	Phase   tb.Phase
	Message string
}

func NewError(sev tb.ErrSeverity, code tb.Err) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
		Time: tb.BadSimTime,
	}
}

func NewErrorMsg(sev tb.ErrSeverity, code tb.Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Time:    tb.BadSimTime,
		Message: msg,
	}
}

func NewErrorAt(sev tb.ErrSeverity, code tb.Err, phase tb.Phase, t tb.SimTime, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Time:    t,
		Phase:   phase,
		Message: msg,
	}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case tb.ErrSevNone:
		return "HARNESS INTERNAL ERROR: Invalid Error Object"
	case tb.ErrSevError:
		sb.WriteString("ERROR:")
	case tb.ErrSevWarn:
		sb.WriteString("WARN :")
	case tb.ErrSevInfo, tb.ErrSevDebug:
		sb.WriteString("INFO :")
	default:
		return "HARNESS INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", e.Code))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	if e.Phase != tb.PhaseNone {
		sb.WriteString(fmt.Sprintf("Phase=%s; ", e.Phase))
	}

	if e.Time != tb.BadSimTime {
		sb.WriteString(fmt.Sprintf("SimTime=%d; ", e.Time))
	}

	sb.WriteString(e.Message)
	return sb.String()
}

// Is matches another *Error by code, so errors.Is works against sentinel
// values built with NewError.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeName returns the symbolic name of an error code.
func CodeName(code tb.Err) string {
	if desc, ok := errorCodeDesc[code]; ok {
		return desc.name
	}
	return "TB_ERR_UNKNOWN"
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[tb.Err]errDesc{
	tb.OK:                    {"TB_OK", "No Error."},
	tb.ErrFail:               {"TB_ERR_FAIL", "General failure."},
	tb.ErrNotInit:            {"TB_ERR_NOT_INIT", "Component not initialised."},
	tb.ErrInvalidParamVal:    {"TB_ERR_INVALID_PARAM_VAL", "Invalid value parameter passed to component."},
	tb.ErrInvalidWidth:       {"TB_ERR_INVALID_WIDTH", "Transfer unit width must be a multiple of 8 no wider than 32."},
	tb.ErrConfig:             {"TB_ERR_CONFIG", "Harness configuration error."},
	tb.ErrAttachTooMany:      {"TB_ERR_ATTACH_TOO_MANY", "Cannot attach - attach device limit reached."},
	tb.ErrAttachCompNotFound: {"TB_ERR_ATTACH_COMP_NOT_FOUND", "Cannot detach - component not found."},
	tb.ErrTimeout:            {"TB_ERR_TIMEOUT", "Simulated time budget exhausted before phase completion."},
	tb.ErrLengthMismatch:     {"TB_ERR_LENGTH_MISMATCH", "Ciphertext length mismatch."},
	tb.ErrContentMismatch:    {"TB_ERR_CONTENT_MISMATCH", "Decrypted data does not match original message."},
	tb.ErrLast:               {"TB_ERR_LAST", "No error - error code end marker"},
}
