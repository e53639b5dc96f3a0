// Package schema maps openapi_type keys to structural schemas and validates
// candidate values against them.
//
// Validation is structural only: types, enums, required properties and
// numeric bounds. Cross-field rules belong to the callers that build values.
package schema

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Registry holds one schema per openapi_type key.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*openapi3.Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*openapi3.Schema)}
}

// Register binds a schema to key. Registering the same key twice fails with
// ErrDuplicateSchema and leaves the first registration in place.
func (r *Registry) Register(key string, s *openapi3.Schema) error {
	if key == "" {
		return errors.New("schema key cannot be empty")
	}
	if s == nil {
		return errors.Errorf("schema for %q cannot be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[key]; exists {
		return errors.Wrapf(ErrDuplicateSchema, "%q", key)
	}
	r.schemas[key] = s
	return nil
}

// MustRegister is like Register but panics on error.
// Intended for package-level registration.
func (r *Registry) MustRegister(key string, s *openapi3.Schema) {
	if err := r.Register(key, s); err != nil {
		panic(err)
	}
}

// Lookup returns the schema registered under key.
func (r *Registry) Lookup(key string) (*openapi3.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSchema, "%q", key)
	}
	return s, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := lo.Keys(r.schemas)
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Validate checks value against the schema registered under key and returns
// value unchanged on success.
//
// The value is normalized through encoding/json first, so Go structs with
// json tags validate the same way as their decoded map form.
func (r *Registry) Validate(key string, value any) (any, error) {
	s, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}

	normalized, err := Normalize(value)
	if err != nil {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%s: value is not representable as JSON: %v", key, err)
	}

	if err := s.VisitJSON(normalized); err != nil {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%s: %s", key, describe(err))
	}
	return value, nil
}

// Normalize converts value into its generic JSON form: maps, slices,
// float64, string, bool and nil.
func Normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// describe renders a kin-openapi validation error as "path: reason".
func describe(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := strings.Join(schemaErr.JSONPointer(), ".")
		if path == "" {
			return schemaErr.Reason
		}
		return path + ": " + schemaErr.Reason
	}
	return err.Error()
}
