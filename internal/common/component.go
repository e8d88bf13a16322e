package common

import (
	"chachatb/internal/tb"
)

// ErrorLog is the interface to the target environment logging functionality.
type ErrorLog interface {
	// LogError logs an error.
	LogError(filterLevel tb.ErrSeverity, msg string)
	// LogMessage logs a standard message.
	LogMessage(filterLevel tb.ErrSeverity, msg string)
}

// AttachPt is a generic component attachment point.
// T represents the interface type being attached.
type AttachPt[T any] struct {
	enabled     bool
	hasAttached bool
	comp        T
}

// NewAttachPt creates a new attachment point.
func NewAttachPt[T any]() *AttachPt[T] {
	return &AttachPt[T]{
		enabled: true,
	}
}

// Attach attaches an interface of type T to the attachment point.
func (a *AttachPt[T]) Attach(comp T) tb.Err {
	if a.hasAttached {
		return tb.ErrAttachTooMany
	}
	a.comp = comp
	a.hasAttached = true
	return tb.OK
}

// Detach detaches the current component from the attachment point.
func (a *AttachPt[T]) Detach() tb.Err {
	if !a.hasAttached {
		return tb.ErrAttachCompNotFound
	}
	var empty T
	a.comp = empty
	a.hasAttached = false
	return tb.OK
}

// ReplaceFirst detaches any currently attached component and attaches the new one.
func (a *AttachPt[T]) ReplaceFirst(comp T) tb.Err {
	if a.hasAttached {
		_ = a.Detach()
	}
	return a.Attach(comp)
}

// First returns the current attached interface.
// The caller should check HasAttachedAndEnabled before using it.
func (a *AttachPt[T]) First() T {
	if !a.enabled {
		var empty T
		return empty
	}
	return a.comp
}

// Enabled returns true if the attachment point is enabled.
func (a *AttachPt[T]) Enabled() bool {
	return a.enabled
}

// SetEnabled sets the enabled state.
func (a *AttachPt[T]) SetEnabled(enable bool) {
	a.enabled = enable
}

// HasAttached returns true if there is an attached interface.
func (a *AttachPt[T]) HasAttached() bool {
	return a.hasAttached
}

// HasAttachedAndEnabled returns true if there is an attachment and it is enabled.
func (a *AttachPt[T]) HasAttachedAndEnabled() bool {
	return a.hasAttached && a.enabled
}

// Component is the base struct for harness components.
// It provides error logging attachment, naming and verbosity filtering.
type Component struct {
	name         string
	errorLogger  AttachPt[ErrorLog]
	errVerbosity tb.ErrSeverity
}

// InitComponent initializes a Component in place so it can be embedded.
func (c *Component) InitComponent(name string) {
	c.name = name
	c.errVerbosity = tb.ErrSevError
	c.errorLogger.enabled = true
}

// ComponentName returns the component's name.
func (c *Component) ComponentName() string {
	return c.name
}

// ErrorLogAttachPt returns the error logger attachment point.
func (c *Component) ErrorLogAttachPt() *AttachPt[ErrorLog] {
	return &c.errorLogger
}

// LogError logs an error if an error logger is attached.
func (c *Component) LogError(err *Error) {
	if err != nil && c.errorLogger.HasAttachedAndEnabled() {
		c.errorLogger.First().LogError(err.Sev, c.name+": "+err.Error())
	}
}

// LogMessage logs a message if the level matches the verbosity and a logger is attached.
func (c *Component) LogMessage(filterLevel tb.ErrSeverity, msg string) {
	if filterLevel <= c.errVerbosity && c.errorLogger.HasAttachedAndEnabled() {
		c.errorLogger.First().LogMessage(filterLevel, c.name+": "+msg)
	}
}

// ErrorLogLevel returns the current error log level.
func (c *Component) ErrorLogLevel() tb.ErrSeverity {
	return c.errVerbosity
}

// IsLoggingErrorLevel returns true if the level would be logged.
func (c *Component) IsLoggingErrorLevel(level tb.ErrSeverity) bool {
	return level <= c.errVerbosity
}

// SetErrorLogLevel sets the verbosity of error logging.
func (c *Component) SetErrorLogLevel(level tb.ErrSeverity) {
	c.errVerbosity = level
}
