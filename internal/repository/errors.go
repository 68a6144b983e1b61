package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when two writers race on the same
	// document's version chain. The caller may safely retry the whole upsert.
	ErrVersionConflict = errors.New("concurrent version append conflict")

	// ErrSessionTerminal is returned when a caller tries to mutate a session
	// that has already reached COMPLETED or FAILED. It signals a driver bug
	// and is never silently ignored.
	ErrSessionTerminal = errors.New("session is already terminal")
)
