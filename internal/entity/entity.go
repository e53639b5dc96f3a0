package entity

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Entity is an immutable, validated configuration object.
//
// Field values are held in their generic JSON form. Accessors return deep
// copies, so callers cannot mutate an entity after construction.
type Entity struct {
	name        string
	openapiType string
	schemaName  string
	fields      map[string]any
}

// Name returns the optional identifier given at construction.
func (e *Entity) Name() string { return e.name }

// OpenAPIType returns the schema key the entity was validated against.
func (e *Entity) OpenAPIType() string { return e.openapiType }

// SchemaName returns the declared type name.
func (e *Entity) SchemaName() string { return e.schemaName }

// Field returns a copy of the named field value.
func (e *Entity) Field(name string) (any, bool) {
	v, ok := e.fields[name]
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// FieldNames returns the names of the fields set on the entity, sorted.
func (e *Entity) FieldNames() []string {
	return sortedKeys(e.fields)
}

// Fields returns a copy of all field values.
func (e *Entity) Fields() map[string]any {
	return deepCopy(e.fields).(map[string]any)
}

// Decode unmarshals the entity's fields into out, typically a pointer to a
// typed wire struct such as v1alpha1.DiskConfiguration.
func (e *Entity) Decode(out any) error {
	data, err := json.Marshal(e.fields)
	if err != nil {
		return errors.Wrapf(err, "encode %s", e.schemaName)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s into %T", e.schemaName, out)
	}
	return nil
}

// MarshalJSON emits the wire form: the fields object only.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields)
}

// MarshalYAML emits the same shape as MarshalJSON. Integral numbers are
// emitted as integers so large sizes do not render in exponent form.
func (e *Entity) MarshalYAML() (interface{}, error) {
	return integralNumbers(e.Fields()), nil
}

// String returns a short description for logs.
func (e *Entity) String() string {
	if e.name == "" {
		return e.schemaName
	}
	return fmt.Sprintf("%s(%s)", e.schemaName, e.name)
}

func integralNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = integralNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = integralNumbers(item)
		}
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
		return val
	default:
		return val
	}
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return val
	}
}
