package contracts

import "errors"

var (
	// ErrNotFound marks a ticker without a filer mapping, a filer without a
	// facts document, or a concept missing from a document. Callers treat it
	// as "no data", not as a failure.
	ErrNotFound = errors.New("not found")

	// ErrMalformed marks a document or concept whose structure is unexpected
	ErrMalformed = errors.New("malformed data")
)
