package service

import (
	"errors"
	"fmt"

	"rideboard/internal/repository"
)

// Error kinds returned across the service boundary. Callers test with
// errors.Is / errors.As.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrOwnRide         = fmt.Errorf("%w: you cannot reserve a seat on your own ride", ErrForbidden)
	ErrAlreadyReserved = fmt.Errorf("%w: you already have a reservation for this ride", ErrConflict)
	ErrEmailTaken      = fmt.Errorf("%w: user with this email already exists", ErrConflict)
)

// ValidationError reports malformed or past-dated input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
}

// isMissing reports whether err is the repository's not-found sentinel.
func isMissing(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
