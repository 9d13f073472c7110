package domain

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrDuplicateEmail         = errors.New("duplicate email")
	ErrCodeNotFound           = errors.New("verification code not found")
	ErrCodeExpired            = errors.New("verification code expired")
	ErrCodeMismatch           = errors.New("verification code mismatch")
	ErrMissingAuthHeader      = errors.New("missing authorization header")
	ErrMalformedAuthHeader    = errors.New("malformed authorization header")
	ErrInvalidToken           = errors.New("invalid token")
	ErrExpiredToken           = errors.New("expired token")
	ErrAccountNotFound        = errors.New("account not found")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
)

// ValidationError is a user-correctable input problem on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
