package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert violates the unique
// email constraint on users.
var ErrDuplicateEmail = errors.New("email already registered")
