package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine error for containment and reporting.
type ErrorKind string

const (
	// ErrInvalidManifest indicates the desired-state model failed
	// validation. Fatal: the run aborts before any backend call.
	ErrInvalidManifest ErrorKind = "invalid_manifest"

	// ErrObservationFailure indicates a backend query failed while
	// snapshotting the host. Contained per resource: the resource is
	// observed as unknown and the pass continues.
	ErrObservationFailure ErrorKind = "observation_failure"

	// ErrBackend indicates a mutating backend call failed while applying
	// an action. Contained per action; fatal only under FailFast.
	ErrBackend ErrorKind = "backend_error"

	// ErrLinkConflict indicates a non-symlink occupies a linked-file
	// target path. The occupant is never removed automatically; the
	// conflict is surfaced for explicit user action.
	ErrLinkConflict ErrorKind = "link_conflict"

	// ErrCyclicDependency indicates the kind precedence graph contains a
	// cycle. Unreachable with the three built-in kinds.
	ErrCyclicDependency ErrorKind = "cyclic_dependency"
)

// Error is a classified engine error with resource and operation context.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Resource is the resource the error relates to, if any.
	Resource string `json:"resource,omitempty"`

	// Operation is the operation being performed, if any.
	Operation string `json:"operation,omitempty"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Resource != "" {
		msg += fmt.Sprintf(" (resource=%s", e.Resource)
		if e.Operation != "" {
			msg += fmt.Sprintf(", operation=%s", e.Operation)
		}
		msg += ")"
	} else if e.Operation != "" {
		msg += fmt.Sprintf(" (operation=%s)", e.Operation)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is: two engine errors are equal
// when their kinds match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a classified engine error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithResource adds resource context to the error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// KindOf returns the classification of err, or the empty kind when err is
// not an engine error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInvalidManifest reports whether err is a manifest validation failure.
func IsInvalidManifest(err error) bool {
	return KindOf(err) == ErrInvalidManifest
}

// IsLinkConflict reports whether err is a link conflict.
func IsLinkConflict(err error) bool {
	return KindOf(err) == ErrLinkConflict
}

// IsCyclicDependency reports whether err is a kind-ordering cycle.
func IsCyclicDependency(err error) bool {
	return KindOf(err) == ErrCyclicDependency
}
