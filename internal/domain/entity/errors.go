package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDate is returned for anything that is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrSourceMissing is the cause recorded for a source no pipeline reported on.
	ErrSourceMissing = errors.New("source report missing")
)

// ValidationError names the field of a rejected value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
