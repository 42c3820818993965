package domain

import "errors"

// Sentinel errors shared across workflows. Controllers map these to HTTP
// status codes; services wrap everything else with context via fmt.Errorf.
var (
	// ErrNotFound covers both a missing event and an event owned by a
	// different provider. The two cases are deliberately indistinguishable
	// so callers cannot probe which events exist.
	ErrNotFound = errors.New("not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeadlinePassed     = errors.New("registration deadline passed")
	ErrAlreadyRegistered  = errors.New("participant already registered")
)
