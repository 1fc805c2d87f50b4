// Package errors defines the error kinds the contract core can produce.
// They are layer-agnostic: transport code translates them at the boundary.
package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by must-exist lookups (GetByID, Delete) when no
// contract with the given id exists. May-exist lookups return nil instead.
var ErrNotFound = errors.New("contract not found")

// ValidationError reports a malformed value object or required field.
// It is raised at construction time and is never retryable with the same input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Msg)
}

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RuleViolationError reports a state-machine or business-rule violation.
// The caller must change the aggregate's state before retrying.
type RuleViolationError struct {
	Msg string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("business rule violation: %s", e.Msg)
}

// RuleViolation builds a RuleViolationError from a format string.
func RuleViolation(format string, args ...interface{}) error {
	return &RuleViolationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports an optimistic-lock conflict detected at save time.
// Transient: the caller should reload the aggregate and reapply its change.
type ConflictError struct {
	// Expected is the version the in-memory aggregate carried.
	Expected int
	// Actual is the version found in storage.
	Actual int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %d, actual %d", e.Expected, e.Actual)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRuleViolation reports whether err is (or wraps) a RuleViolationError.
func IsRuleViolation(err error) bool {
	var rv *RuleViolationError
	return errors.As(err, &rv)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
