package auth

import "errors"

// Domain errors returned by the auth package.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenMissing       = errors.New("missing token")
)
