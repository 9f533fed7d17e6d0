package service

import (
	"errors"
	"fmt"
)

// Client-facing failures. The messages are returned to callers verbatim, and
// credential failures deliberately do not say which part was wrong.
var (
	ErrMissingFields      = errors.New("missing")
	ErrAdminExists        = errors.New("admin already exists")
	ErrInvalidCredentials = errors.New("invalid")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPasswordTooLong    = errors.New("password too long")
)

// StoreError wraps a failure of the credential store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
