package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyTitle        = errors.New("empty title")
	ErrMissingCategory   = errors.New("missing category")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNoteTooLong       = errors.New("note too long")
	ErrEmptyCategoryName = errors.New("empty category name")
	ErrInvalidType       = errors.New("invalid transaction type")
)

// ValidationError rejects user input before it reaches the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
