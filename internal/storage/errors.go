package storage

import "errors"

var (
	// ErrNoSnapshot is returned when no snapshot has been stored yet.
	ErrNoSnapshot = errors.New("no snapshot loaded")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
