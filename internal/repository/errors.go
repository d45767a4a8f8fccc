package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStale is returned when a conditional write matched no row because
	// the entity's state changed since it was read.
	ErrStale = errors.New("precondition no longer holds")
)
