package narration

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for the narration system.
var (
	// Engine errors
	ErrEngineUnavailable  = errors.New("speech engine is not available")
	ErrUtteranceFailed    = errors.New("utterance could not be spoken")
	ErrCatalogUnavailable = errors.New("voice catalog did not populate")

	// Scheduler errors
	ErrNoSegments       = errors.New("no segments to narrate")
	ErrLanguageDisabled = errors.New("narration is disabled for this language")
	ErrSchedulerClosed  = errors.New("narration scheduler has been closed")
	ErrCancelled        = errors.New("utterance was cancelled")
)

// IsRecoverableError checks if an error leaves narration usable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, ErrEngineUnavailable),
		errors.Is(err, ErrSchedulerClosed):
		return false
	}
	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for failures that narration recovers from.
	SeverityWarning
	// SeverityError is for failures that disable a feature.
	SeverityError
)

// String returns the severity name.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// NarrationError provides detailed error information.
type NarrationError struct {
	Err       error          // The underlying error
	Component string         // Component that generated the error
	Action    string         // Action being performed when error occurred
	Severity  ErrorSeverity  // Severity of the error
	Timestamp time.Time      // When the error occurred
	Context   map[string]any // Additional context
}

// Error implements the error interface.
func (e *NarrationError) Error() string {
	if e.Err == nil {
		return "unknown narration error"
	}
	if e.Component == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *NarrationError) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *NarrationError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewNarrationError creates a new narration error with context.
func NewNarrationError(err error, component, action string) *NarrationError {
	return &NarrationError{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
}

// WithSeverity sets the error severity.
func (e *NarrationError) WithSeverity(severity ErrorSeverity) *NarrationError {
	e.Severity = severity
	return e
}

// WithContext adds context to the error.
func (e *NarrationError) WithContext(key string, value any) *NarrationError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// utteranceFailure wraps an engine error for segment index i so callers can
// match it against ErrUtteranceFailed while keeping the engine's cause.
func utteranceFailure(cause error, index int) *NarrationError {
	err := ErrUtteranceFailed
	if cause != nil && !errors.Is(cause, ErrUtteranceFailed) {
		err = fmt.Errorf("%w: %w", ErrUtteranceFailed, cause)
	} else if cause != nil {
		err = cause
	}
	return NewNarrationError(err, "scheduler", "speak").
		WithSeverity(SeverityWarning).
		WithContext("index", index)
}
