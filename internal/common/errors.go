// Package common defines shared constants and sentinel errors used across
// client and server layers of Medi Mate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Validation errors.
	ErrValidation      = errors.New("validation error")
	ErrPayloadTooLarge = errors.New("payload too large")

	// Credential errors. Unknown email and wrong password share this value.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// PublicError pairs a sentinel kind with a message that is safe to show to
// API clients. The optional cause is kept for logs.
type PublicError struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *PublicError) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *PublicError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NewPublicError wraps kind with a client-facing message.
func NewPublicError(kind error, msg string, cause error) error {
	return &PublicError{Kind: kind, Msg: msg, Cause: cause}
}
