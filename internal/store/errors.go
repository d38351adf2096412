package store

import "errors"

var (
	// ErrNotFound is returned when a domain, record, account or preset id
	// does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a record would violate the
	// (type, name, content) uniqueness within its domain.
	ErrDuplicateKey = errors.New("record with same type, name and content already exists")

	// ErrInvalidRecord is returned when a record fails validation before
	// any persistence or network call.
	ErrInvalidRecord = errors.New("invalid record")
)
