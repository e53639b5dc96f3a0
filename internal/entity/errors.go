package entity

import (
	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/internal/schema"
)

var (
	// ErrSchemaMismatch is returned when a field or the assembled object
	// fails validation. It is the same sentinel the schema registry uses.
	ErrSchemaMismatch = schema.ErrSchemaMismatch

	// ErrDuplicateType is returned when a type is declared twice.
	ErrDuplicateType = errors.New("duplicate configuration type")

	// ErrUnknownType is returned when constructing an undeclared type.
	ErrUnknownType = errors.New("unknown configuration type")
)
