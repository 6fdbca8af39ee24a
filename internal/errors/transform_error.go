// Package errors provides standardized error types for transform and
// pipeline operations. Contract violations (missing columns, invalid
// configuration, transform before fit) are fatal and reported through
// TransformError; data-quality anomalies are warnings, not errors.
package errors

import (
	"errors"
	"fmt"
)

// TransformError represents a contract violation raised by an operator
// or the pipeline driver.
type TransformError struct {
	Op      string // Operator or operation name (e.g. "Mapping", "TargetEncode", "Split")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support.
func (e *TransformError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *TransformError) Is(target error) bool {
	if te, ok := target.(*TransformError); ok {
		return e.Op == te.Op && e.Column == te.Column && e.Message == te.Message
	}
	return false
}

// Sentinel causes for the recurring contract violations. Matchable with
// errors.Is through the Cause chain.
var (
	// ErrNotFitted indicates Transform was invoked before a successful Fit.
	ErrNotFitted = errors.New("transform called before fit")

	// ErrColumnNotFound indicates an operation on a non-existent column.
	ErrColumnNotFound = errors.New("column does not exist")

	// ErrLengthMismatch indicates features and labels of unequal length.
	ErrLengthMismatch = errors.New("features and labels must have the same length")

	// ErrInvalidConfig indicates an invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration value")

	// ErrNotNumeric indicates a numeric operator applied to a
	// non-numeric column.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrInvalidInput indicates input data the operation cannot work
	// with (empty frames, unusable samples).
	ErrInvalidInput = errors.New("invalid input data")
)

// NewColumnNotFoundError creates an error for operations on non-existent columns.
func NewColumnNotFoundError(op, column string) *TransformError {
	return &TransformError{
		Op:      op,
		Column:  column,
		Message: "column does not exist",
		Cause:   ErrColumnNotFound,
	}
}

// NewNotFittedError creates an error for transform-before-fit violations.
func NewNotFittedError(op string) *TransformError {
	return &TransformError{
		Op:      op,
		Message: "transform called before fit",
		Cause:   ErrNotFitted,
	}
}

// NewNotNumericError creates an error for numeric operators applied to
// non-numeric columns.
func NewNotNumericError(op, column string) *TransformError {
	return &TransformError{
		Op:      op,
		Column:  column,
		Message: "column is not numeric",
		Cause:   ErrNotNumeric,
	}
}

// NewInvalidConfigError creates an error for invalid operator configuration.
func NewInvalidConfigError(op, message string) *TransformError {
	return &TransformError{
		Op:      op,
		Message: message,
		Cause:   ErrInvalidConfig,
	}
}

// NewLengthMismatchError creates an error for mismatched feature/label lengths.
func NewLengthMismatchError(op string, rows, labels int) *TransformError {
	return &TransformError{
		Op:      op,
		Message: fmt.Sprintf("features have %d rows but %d labels were given", rows, labels),
		Cause:   ErrLengthMismatch,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs.
func NewInvalidInputError(op, message string) *TransformError {
	return &TransformError{
		Op:      op,
		Message: message,
		Cause:   ErrInvalidInput,
	}
}

// NewInternalError creates an error wrapping an unexpected failure.
func NewInternalError(op string, cause error) *TransformError {
	return &TransformError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}
