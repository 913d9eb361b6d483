package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgUnauthorized   = "backend rejected api key"
	ErrMsgBackendStatus  = "unexpected backend status"
	ErrMsgInvalidSteamID = "invalid steam id"
)

// Common domain errors. Wrap with fmt.Errorf("%w: ...") for context.
var (
	ErrUnauthorized   = errors.New(ErrMsgUnauthorized)
	ErrBackendStatus  = errors.New(ErrMsgBackendStatus)
	ErrInvalidSteamID = errors.New(ErrMsgInvalidSteamID)
)
