package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a point lookup matches zero rows.
	ErrNotFound = errors.New("not found")
	// ErrMalformedIdentifier is returned when an identifier cannot be decoded.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrHashFailure is returned when a credential could not be hashed.
	ErrHashFailure = errors.New("hash failure")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError wraps a failure reported by the relational store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the failing operation name.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err carries a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
