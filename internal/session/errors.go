package session

import "errors"

var (
	// ErrNotInitialized is returned when an operation requires Init first
	ErrNotInitialized = errors.New("session manager not initialized")

	// ErrAlreadyInitialized is returned when Init is called twice
	ErrAlreadyInitialized = errors.New("session manager already initialized")
)
