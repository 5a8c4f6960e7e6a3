package domain

import "errors"

// Session errors.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrSessionExpired    = errors.New("session expired")
	ErrRefreshInProgress = errors.New("session refresh already in progress")
	ErrRefreshFailed     = errors.New("session refresh failed")
)

// Wizard and request errors.
var (
	ErrTokenRequired = errors.New("token is required")
	ErrNoDateRange   = errors.New("please select a time period preset")
	ErrPromptTooLong = errors.New("prompt exceeds maximum length")
	ErrUnknownPreset = errors.New("unknown preset")
	ErrInvalidStep   = errors.New("step not reachable yet")
	ErrValidation    = errors.New("validation failed")
)
