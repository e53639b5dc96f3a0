// Package entity manufactures immutable, schema-validated configuration
// objects from declared field sets.
//
// A TypeSpec binds each field of a configuration type to a schema key. The
// Factory validates every supplied field with its own schema, then validates
// the assembled object against the type's schema, and only then returns an
// Entity. Entities have no setters.
package entity

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/jbweber/diskforge/internal/schema"
)

// TypeSpec declares a configuration type.
type TypeSpec struct {
	// SchemaName is the human-readable type name, e.g. "VmAhvDisk".
	SchemaName string

	// OpenAPIType is the schema key the whole object validates against.
	OpenAPIType string

	// Fields maps each field name to the schema key of its validator.
	Fields map[string]string
}

// Factory holds declared types and constructs entities of those types.
// It is safe for concurrent use.
type Factory struct {
	registry *schema.Registry

	mu    sync.RWMutex
	types map[string]TypeSpec
}

// NewFactory creates a factory whose validators come from registry.
// A nil registry selects schema.Default().
func NewFactory(registry *schema.Registry) *Factory {
	if registry == nil {
		registry = schema.Default()
	}
	return &Factory{
		registry: registry,
		types:    make(map[string]TypeSpec),
	}
}

// Declare registers a configuration type.
//
// The type's own schema and every field's schema must already be registered.
// Declaring the same OpenAPIType twice fails with ErrDuplicateType.
func (f *Factory) Declare(spec TypeSpec) error {
	if spec.OpenAPIType == "" {
		return errors.New("openapi type cannot be empty")
	}
	if !f.registry.Has(spec.OpenAPIType) {
		return errors.Wrapf(schema.ErrUnknownSchema, "type %s: %q", spec.SchemaName, spec.OpenAPIType)
	}
	for _, field := range sortedKeys(spec.Fields) {
		key := spec.Fields[field]
		if !f.registry.Has(key) {
			return errors.Wrapf(schema.ErrUnknownSchema, "type %s: field %q: %q", spec.SchemaName, field, key)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.types[spec.OpenAPIType]; exists {
		return errors.Wrapf(ErrDuplicateType, "%q", spec.OpenAPIType)
	}
	f.types[spec.OpenAPIType] = TypeSpec{
		SchemaName:  spec.SchemaName,
		OpenAPIType: spec.OpenAPIType,
		Fields:      lo.Assign(spec.Fields),
	}
	return nil
}

// MustDeclare is like Declare but panics on error.
func (f *Factory) MustDeclare(spec TypeSpec) {
	if err := f.Declare(spec); err != nil {
		panic(err)
	}
}

// Lookup returns the declared type for openapiType.
func (f *Factory) Lookup(openapiType string) (TypeSpec, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	spec, ok := f.types[openapiType]
	return spec, ok
}

// MakeType constructs an entity of the declared type openapiType.
//
// Fields are checked in name order. An undeclared field, a field failing its
// validator, or an assembled object failing the type schema all return an
// error wrapping ErrSchemaMismatch that names the offending field.
func (f *Factory) MakeType(name, openapiType string, fields map[string]any) (*Entity, error) {
	spec, ok := f.Lookup(openapiType)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q", openapiType)
	}

	values := make(map[string]any, len(fields))
	for _, field := range sortedKeys(fields) {
		key, declared := spec.Fields[field]
		if !declared {
			return nil, errors.Wrapf(ErrSchemaMismatch, "%s: field %q is not declared (declared: %v)",
				spec.SchemaName, field, sortedKeys(spec.Fields))
		}

		if _, err := f.registry.Validate(key, fields[field]); err != nil {
			return nil, errors.Wrapf(err, "%s: field %q (expected %s)", spec.SchemaName, field, key)
		}

		normalized, err := schema.Normalize(fields[field])
		if err != nil {
			return nil, errors.Wrapf(ErrSchemaMismatch, "%s: field %q: %v", spec.SchemaName, field, err)
		}
		values[field] = normalized
	}

	if _, err := f.registry.Validate(spec.OpenAPIType, values); err != nil {
		return nil, errors.Wrapf(err, "%s", spec.SchemaName)
	}

	return &Entity{
		name:        name,
		openapiType: spec.OpenAPIType,
		schemaName:  spec.SchemaName,
		fields:      values,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
