package service

import "errors"

var (
	// ErrAuthentication is returned when no usable platform credential exists
	// or a token refresh failed.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound is returned when an integration is missing, disabled or has
	// no active credential.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input such as an unknown period.
	ErrValidation = errors.New("validation failed")
)
