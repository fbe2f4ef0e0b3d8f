// Package apperror defines the closed set of error kinds shared across
// todozi's components, and the boundary-facing classification used by the
// CLI and server to render a single-line kind prefix plus a message.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a closed set of error classifications. New kinds are never added
// without updating every boundary mapping (CLI exit codes, server status
// codes) that switches on them.
type Kind string

const (
	Validation       Kind = "validation"
	NotFound         Kind = "not_found"
	Conflict         Kind = "conflict"
	Io               Kind = "io"
	Serialization    Kind = "serialization"
	ModelInit        Kind = "model_init"
	EmbeddingFailure Kind = "embedding_failure"
	EmbeddingTimeout Kind = "embedding_timeout"
	SchemaMigration  Kind = "schema_migration"
	Cancelled        Kind = "cancelled"
)

// Error wraps an underlying error with a Kind for boundary classification.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a classified error with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an existing error under kind, preserving it for errors.Is/As.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrapf is Wrap with formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// EntityNotFound builds the NotFound error for a missing entity by kind/id,
// matching the persistence failure mode in spec §4.1.
func EntityNotFound(entityKind, id string) *Error {
	return New(NotFound, fmt.Sprintf("%s %q not found", entityKind, id))
}

// DeserializationError builds the Serialization error for a malformed file,
// matching spec §4.1: the file path is reported and the file is not
// auto-corrected.
func DeserializationError(path string, err error) *Error {
	return Wrapf(Serialization, err, "failed to deserialize %s", path)
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, otherwise returns Io as the default boundary classification for
// unclassified errors (propagated I/O or unexpected failures per spec §7).
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return Io
}

// ExitCode maps a Kind to the CLI exit code contract in spec §6.4.
func ExitCode(kind Kind) int {
	switch kind {
	case Validation:
		return 2
	case NotFound:
		return 3
	case Conflict:
		return 4
	case "":
		return 0
	default:
		return 1
	}
}

// HTTPStatus maps a Kind to the server status code contract in spec §7.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation:
		return 400
	case NotFound:
		return 404
	case Conflict:
		return 409
	default:
		return 500
	}
}
