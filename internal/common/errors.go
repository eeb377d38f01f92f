package common

import "errors"

// Sentinel errors shared across service and storage layers.
var (
	// ErrNotFound reports that a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable reports that an operation cannot proceed because a
	// required precondition is absent, e.g. no authenticated user on the
	// request. The server maps it to an unauthenticated empty-state
	// response rather than a hard failure.
	ErrUnavailable = errors.New("unavailable")
)
