package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: a column the caller named is absent or cannot serve the request
	ErrColumnNotFound = errors.New("column not found")
	ErrUnusableColumn = errors.New("column unusable for this operation")

	// Statistical validity errors
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Dataset construction errors
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrLengthMismatch = errors.New("column length does not match dataset length")
	ErrDuplicateName  = errors.New("duplicate column name")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewUnusableColumnError(column, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrUnusableColumn, column, reason)
}

func NewInsufficientDataError(test, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInsufficientData, test, reason)
}

func NewLengthMismatchError(column string, got, want int) error {
	return fmt.Errorf("%w: %q has %d values, dataset has %d rows", ErrLengthMismatch, column, got, want)
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrUnusableColumn)
}
