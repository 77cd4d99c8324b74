package core

import (
	"errors"
	"fmt"
)

// Error kinds reported to callers. Handlers map these to HTTP statuses;
// anything not wrapping one of them is treated as an internal failure.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with a short description of the missing entity.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// Forbidden wraps ErrForbidden with the reason the operation was refused.
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// Validation wraps ErrValidation with the failing rule.
func Validation(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}
