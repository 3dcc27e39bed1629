package domain

import "errors"

// Sentinel errors shared by services and mapped to HTTP status codes by the controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")

	// ErrTicketing wraps any failure returned by the ticketing vendor.
	ErrTicketing = errors.New("ticketing vendor error")

	// ErrSessionCreationFailed is the single outcome reported to clients when any step of
	// the session-creation workflow fails after validation.
	ErrSessionCreationFailed = errors.New("failed to create session")
)
