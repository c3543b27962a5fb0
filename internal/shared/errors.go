// Package shared defines sentinel errors used across the server layers.
// Callers should use errors.Is to match these values.
package shared

import "errors"

var (
	// common errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// auth-specific errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// feed-specific errors
	ErrSourceUnavailable = errors.New("feed source unavailable")

	// participant lifecycle errors
	ErrNotRegistered    = errors.New("participant not registered")
	ErrAlreadyCheckedIn = errors.New("participant already checked in")
	ErrAlreadyApproved  = errors.New("participant already registered")
)
