package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the store is unavailable or a
	// transaction fails
	ErrPersistence = errors.New("persistence failure")
)
