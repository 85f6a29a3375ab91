// Package apperrors defines the error taxonomy shared across the pipeline:
// every failure a caller can observe is one of these kinds, each knowing
// whether retrying the same operation could plausibly succeed.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories the HTTP layer maps to status
// codes without inspecting underlying causes.
type Kind string

const (
	KindInputInvalid     Kind = "input_invalid"
	KindNotFound         Kind = "not_found"
	KindEmbeddingFailed  Kind = "embedding_failed"
	KindRetrievalFailed  Kind = "retrieval_failed"
	KindGenerationFailed Kind = "generation_failed"
	KindPersistenceFailed Kind = "persistence_failed"
	KindTransient        Kind = "transient"
)

// Error wraps an underlying cause with a Kind and optional structured
// details, matching the {message, details} shape callers expect.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether a caller may retry the same operation as-is.
// Only Transient errors are retryable; every other kind, including
// generation, input, not-found, and persistence failures, is not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransient:
		return true
	default:
		return false
	}
}

func newErr(kind Kind, message string, cause error, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{Kind: kind, Message: message, Details: details, Cause: cause}
}

func InputInvalid(message string, details map[string]any) *Error {
	return newErr(KindInputInvalid, message, nil, details)
}

func NotFound(message string, details map[string]any) *Error {
	return newErr(KindNotFound, message, nil, details)
}

func EmbeddingFailed(message string, cause error) *Error {
	return newErr(KindEmbeddingFailed, message, cause, nil)
}

func RetrievalFailed(message string, cause error) *Error {
	return newErr(KindRetrievalFailed, message, cause, nil)
}

func GenerationFailed(message string, cause error) *Error {
	return newErr(KindGenerationFailed, message, cause, nil)
}

func PersistenceFailed(message string, cause error) *Error {
	return newErr(KindPersistenceFailed, message, cause, nil)
}

func Transient(message string, cause error) *Error {
	return newErr(KindTransient, message, cause, nil)
}

// As is a thin convenience wrapper over errors.As for *Error.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf extracts the Kind of err, defaulting to KindTransient for unknown
// error types so the HTTP layer always has something to map.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindTransient
}
