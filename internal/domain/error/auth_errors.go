// Package error defines domain-specific errors for the expense report service.
package error

import "errors"

// Authentication errors raised by the HTTP layer.
var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingToken is returned when the authorization header is absent.
	ErrMissingToken = errors.New("missing token")

	// ErrRateLimited is returned when too many requests are made.
	ErrRateLimited = errors.New("too many requests")
)

// AuthErrorCode defines error codes for authentication errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	// Throttling errors (02XXXX)
	ErrCodeRateLimited AuthErrorCode = "AUTH-020003"

	// Token errors (03XXXX)
	ErrCodeInvalidToken AuthErrorCode = "AUTH-030001"
	ErrCodeMissingToken AuthErrorCode = "AUTH-030003"
)
