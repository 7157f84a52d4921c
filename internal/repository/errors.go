package repository

import "errors"

var (
	// ErrNotFound is returned when a rating or setting does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTable is returned by ClearTable for tables outside the resettable set.
	ErrInvalidTable = errors.New("invalid table name")
)
