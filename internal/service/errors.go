package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid session status transition")
	ErrSessionNotOpen     = errors.New("session is not open for voting")
	ErrSessionNotDraft    = errors.New("session is not in draft")
	ErrRegistrationClosed = errors.New("registration is closed for this role")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}
