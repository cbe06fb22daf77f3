package assistant

import (
	"errors"
	"fmt"
)

// ValidationError rejects bad input before any state mutation. Message is
// safe to show the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ProviderError wraps a completion provider failure. The whole Ask aborts
// with no state mutation when one occurs.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("ai provider: %v", e.Err) }
func (e *ProviderError) Unwrap() error { return e.Err }

// IsProvider reports whether err is a completion provider failure.
func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
