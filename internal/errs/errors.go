// Package errs defines the error taxonomy shared by the catalog, sync and
// user-signal layers. The HTTP layer maps each type to a status code.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError indicates malformed filter or request input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// NotFoundError indicates a referenced user, movie, rating or favorite is absent.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ForbiddenError indicates the caller does not own the row it tries to mutate.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// ConflictError indicates a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ConfigurationError indicates missing provider settings.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("TMDB API credentials are not configured properly: missing %s", strings.Join(e.Missing, ", "))
}

// SyncFailedError wraps whatever broke a sync attempt.
type SyncFailedError struct {
	Cause error
}

func (e *SyncFailedError) Error() string {
	return fmt.Sprintf("failed to sync TMDB movies: %v", e.Cause)
}

func (e *SyncFailedError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
