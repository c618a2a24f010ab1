// Package common defines shared constants and sentinel errors used across the
// DadKeeper server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorUnauthorized          = errors.New("unauthorized")
	ErrorValidation            = errors.New("validation failed")
	ErrorRateLimited           = errors.New("rate limit exceeded")
	ErrorDependencyUnavailable = errors.New("dependency unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// IsUnauthenticated reports whether err means the caller has no usable identity.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrorUnauthorized) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrRefreshTokenExpired)
}
