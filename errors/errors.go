package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMCommunication indicates LLM communication failed
	ErrLLMCommunication = errors.New("llm communication failed")

	// ErrExtractionFailure indicates a structured LLM call returned
	// unparseable or schema-invalid output. Callers degrade the affected
	// field to its zero value and continue.
	ErrExtractionFailure = errors.New("structured extraction failed")

	// ErrConstraintBuild indicates the filter builder could not produce a
	// constraint set. Treated as "no candidates", feeding the refine loop.
	ErrConstraintBuild = errors.New("constraint build failed")

	// ErrRetrievalDegraded indicates every level of the hybrid fallback
	// chain produced zero results.
	ErrRetrievalDegraded = errors.New("retrieval degraded to empty result")

	// ErrReferentUnresolved indicates deep-dive could not identify the
	// target candidate. Surfaces a clarifying question, never a guess.
	ErrReferentUnresolved = errors.New("referent could not be resolved")

	// ErrDatabaseOperation indicates a database operation failed
	ErrDatabaseOperation = errors.New("database operation failed")
)

// WrapError wraps an error with a context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with a formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// WrapDatabase tags a low-level database failure with ErrDatabaseOperation
// while preserving the cause message.
func WrapDatabase(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsExtractionFailure checks if error is a structured extraction failure
func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrExtractionFailure)
}

// IsReferentUnresolved checks if error is an unresolved referent
func IsReferentUnresolved(err error) bool {
	return errors.Is(err, ErrReferentUnresolved)
}
