// Package errors provides standardized error handling for scriptbridge.
// It includes error classification, standard error variables, and helper
// functions for consistent error wrapping across the system. Every
// classified error can carry a client-facing suggestion so that a
// non-interactive agent can self-correct from the error response alone.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorNotFound represents lookups that failed: documents, nodes,
	// ports, catalog entries, owning types
	ErrorNotFound ErrorClass = iota
	// ErrorInvalidState represents operations rejected by current state
	// (port already connected, port is an output, property not editable)
	ErrorInvalidState
	// ErrorUnsupported represents shapes this system has no rule for
	// (unrecognized struct default layout, uncoercible property type)
	ErrorUnsupported
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorInternal represents unexpected failures inside the host or
	// this system
	ErrorInternal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorNotFound:
		return "not_found"
	case ErrorInvalidState:
		return "invalid_state"
	case ErrorUnsupported:
		return "unsupported"
	case ErrorInvalid:
		return "invalid"
	case ErrorInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Lookup errors
	ErrDocumentNotFound = errors.New("script document not found")
	ErrGraphNotFound    = errors.New("graph not found")
	ErrNodeNotFound     = errors.New("node not found")
	ErrPortNotFound     = errors.New("port not found")
	ErrEntryNotFound    = errors.New("catalog entry not found")
	ErrTypeNotFound     = errors.New("type not found")
	ErrEntryStale       = errors.New("catalog entry no longer valid")

	// State errors
	ErrPortConnected   = errors.New("port already has a connection")
	ErrPortIsOutput    = errors.New("port is an output")
	ErrPortNotEditable = errors.New("port default is not editable")
	ErrDuplicateNode   = errors.New("node ID already present in graph")

	// Shape errors
	ErrUnsupportedShape = errors.New("unrecognized struct default layout")
	ErrNoCoercionRule   = errors.New("no coercion rule for value type")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification and the context
// needed for an agent to retry correctly.
type ClassifiedError struct {
	Class      ErrorClass
	Err        error
	Message    string
	Component  string
	Operation  string
	Suggestion string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsNotFound checks if an error represents a failed lookup
func IsNotFound(err error) bool {
	return classOf(err) == ErrorNotFound ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrGraphNotFound) ||
		errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrPortNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrTypeNotFound) ||
		errors.Is(err, ErrEntryStale)
}

// IsInvalidState checks if an error was rejected by current graph state
func IsInvalidState(err error) bool {
	return classOf(err) == ErrorInvalidState ||
		errors.Is(err, ErrPortConnected) ||
		errors.Is(err, ErrPortIsOutput) ||
		errors.Is(err, ErrPortNotEditable) ||
		errors.Is(err, ErrDuplicateNode)
}

// IsUnsupported checks if an error represents a shape with no handling rule
func IsUnsupported(err error) bool {
	return classOf(err) == ErrorUnsupported ||
		errors.Is(err, ErrUnsupportedShape) ||
		errors.Is(err, ErrNoCoercionRule)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	return classOf(err) == ErrorInvalid ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

func classOf(err error) ErrorClass {
	if err == nil {
		return ErrorInternal
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ErrorInternal
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorInternal
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	switch {
	case IsNotFound(err):
		return ErrorNotFound
	case IsInvalidState(err):
		return ErrorInvalidState
	case IsUnsupported(err):
		return ErrorUnsupported
	case IsInvalid(err):
		return ErrorInvalid
	default:
		return ErrorInternal
	}
}

// SuggestionOf returns the client-facing suggestion attached to an error,
// or an empty string when none was attached.
func SuggestionOf(err error) string {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Suggestion
	}
	return ""
}

// newClassified creates a new classified error.
// This is an internal helper - use the Wrap* functions instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapNotFound wraps an error as a failed lookup with context
func WrapNotFound(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorNotFound, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalidState wraps an error as a state rejection with context
func WrapInvalidState(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalidState, wrappedErr, component, method, wrappedErr.Error())
}

// WrapUnsupported wraps an error as an unsupported shape with context
func WrapUnsupported(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorUnsupported, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid input with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInternal wraps an error as an internal failure with context
func WrapInternal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInternal, wrappedErr, component, method, wrappedErr.Error())
}

// WithSuggestion attaches a client-facing suggestion to an error. If the
// error is not already classified it is classified first, so the
// suggestion survives errors.As extraction at the service boundary.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		// Copy rather than mutate: the same underlying error may be
		// wrapped on several paths.
		clone := *ce
		clone.Suggestion = suggestion
		clone.Err = err
		return &clone
	}
	return &ClassifiedError{
		Class:      Classify(err),
		Err:        err,
		Message:    err.Error(),
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's tree matches target.
// Re-exported so callers don't need to import both error packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
