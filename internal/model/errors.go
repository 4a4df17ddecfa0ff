package model

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist for the user.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the record changed since the caller loaded it.
	ErrConflict = errors.New("conflict: task was modified since it was loaded")

	// ErrValidation indicates invalid caller input.
	ErrValidation = errors.New("validation failed")
)
