package usecase

import (
	"errors"

	"yamdb/internal/policy"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrInvalidCode     = errors.New("invalid confirmation code")
	ErrTooManyRequests = errors.New("too many requests")

	ErrForbidden       = policy.ErrForbidden
	ErrUnauthenticated = policy.ErrUnauthenticated
)

// FieldError carries field-scoped messages for one of the sentinels above.
type FieldError struct {
	Err     error
	Message string
	Fields  map[string]string
}

func (e *FieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Fields returns the field messages attached to err, if any.
func Fields(err error) map[string]string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Fields
	}
	return nil
}

func invalidInput(fields map[string]string) error {
	return &FieldError{Err: ErrInvalidInput, Message: "Validation failed", Fields: fields}
}

func conflict(message string, fields map[string]string) error {
	return &FieldError{Err: ErrConflict, Message: message, Fields: fields}
}

func notFound(message string) error {
	return &FieldError{Err: ErrNotFound, Message: message}
}

func invalidCode() error {
	return &FieldError{
		Err:     ErrInvalidCode,
		Message: "Invalid confirmation code",
		Fields:  map[string]string{"confirmation_code": "Invalid or expired confirmation code"},
	}
}
