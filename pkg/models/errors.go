package models

import "errors"

// ErrInvalidParameter reports a parameter the generator cannot work with:
// a non-numeric value, a non-integral point count, or points < 1.
var ErrInvalidParameter = errors.New("invalid parameter")

// ValidationError is returned when a validated run is declined.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// IsValidationError reports whether err wraps a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
