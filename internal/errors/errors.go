// Package errors provides sentinel errors for the wxlog data store and
// rollup pipeline.
//
// This file provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Not found errors
	ErrNotFound = errors.New("not found")

	// Storage errors
	ErrInvalidIndex       = errors.New("invalid index")
	ErrMalformedPartition = errors.New("malformed partition")
	ErrUnknownField       = errors.New("unknown field")

	// Pipeline errors
	ErrNoData = errors.New("no data found")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingField  = errors.New("missing required field")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// New is a convenience wrapper for errors.New
var New = errors.New

// IsNotFound returns true if err is a not-found error.
// A point lookup miss is an expected outcome, not a defect.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorage returns true if err is a storage-layer error.
func IsStorage(err error) bool {
	return errors.Is(err, ErrInvalidIndex) ||
		errors.Is(err, ErrMalformedPartition) ||
		errors.Is(err, ErrUnknownField)
}

// IsValidation returns true if err is a configuration validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewNotFound creates a not-found error for a point lookup at the given index.
func NewNotFound(index time.Time) error {
	return fmt.Errorf("reading at %s: %w", index.Format("2006-01-02 15:04:05"), ErrNotFound)
}

// NewMalformedPartition creates a malformed-partition error with file context.
func NewMalformedPartition(path string, line int, cause error) error {
	return fmt.Errorf("%s line %d: %v: %w", path, line, cause, ErrMalformedPartition)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}
