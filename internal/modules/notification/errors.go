package notification

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed create input. Callers map it to 400.
	ErrValidation = errors.New("validation failed")

	// ErrStorage marks persistence failures. Callers map it to 500; retrying
	// is their choice, the store never retries on its own.
	ErrStorage = errors.New("notification storage unavailable")
)

func validationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
