package schema

import "github.com/pkg/errors"

// Errors returned by the schema registry.
var (
	// ErrSchemaMismatch is returned when a value fails structural validation.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnknownSchema is returned when no schema is registered under a key.
	ErrUnknownSchema = errors.New("unknown schema")

	// ErrDuplicateSchema is returned when a key is registered twice.
	ErrDuplicateSchema = errors.New("duplicate schema")
)
