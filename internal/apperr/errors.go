// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid argument")

	// ErrNotReady reports that a host object or behavior table does not exist yet.
	// Callers retry on the next layout change; it is never shown to the user.
	ErrNotReady = errors.New("not ready")

	// ErrMissingOriginal reports that a method to decorate is absent from a behavior table.
	ErrMissingOriginal = errors.New("missing original method")
)
