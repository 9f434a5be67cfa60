package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookup and validation failures.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrFlightNotFound  = errors.New("flight not found")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrCrewNotFound    = errors.New("crew member not found")

	ErrInvalidOffer      = errors.New("invalid offer")
	ErrInvalidSimParams  = errors.New("invalid simulation parameters")
	ErrInvalidTransition = errors.New("invalid offer status transition")
	ErrNotAuthorized     = errors.New("user not authorized for this offer")

	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
