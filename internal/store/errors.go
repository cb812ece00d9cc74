package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested vertex, edge, or trail does
	// not exist.
	ErrNotFound = errors.New("store: resource not found")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("store: duplicate key violation")

	// ErrInvalidInput is returned when input validation fails before any
	// query runs.
	ErrInvalidInput = errors.New("store: invalid input")
)

// NotFoundError names the missing resource and ID.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: %s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
