package skeleton

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Instance holds the converted data of one record. Field values live in an
// internal map keyed by field name; accessors read and write through it.
type Instance struct {
	schema *Schema
	data   map[string]any
}

// Schema returns the schema that produced the instance.
func (in *Instance) Schema() *Schema { return in.schema }

// Lookup returns the stored value for name and whether one is stored.
func (in *Instance) Lookup(name string) (any, bool) {
	v, ok := in.data[name]
	return v, ok
}

// Get returns the stored value for name, falling back to the field default.
// Unknown names yield nil.
func (in *Instance) Get(name string) any {
	if v, ok := in.data[name]; ok {
		return v
	}
	if f, ok := in.schema.FieldByName(name); ok {
		return f.spec().defaultValue()
	}
	return nil
}

// Set stores v for name as-is.
func (in *Instance) Set(name string, v any) error {
	if _, ok := in.schema.FieldByName(name); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, in.schema.name, name)
	}
	in.data[name] = v
	return nil
}

// String returns the value of name as a string, or "" when it is not one.
func (in *Instance) String(name string) string {
	s, _ := in.Get(name).(string)
	return s
}

// Int returns the value of name as an int64, or 0 when it is not one.
func (in *Instance) Int(name string) int64 {
	n, _ := in.Get(name).(int64)
	return n
}

// Float returns the value of name as a float64, or 0 when it is not one.
func (in *Instance) Float(name string) float64 {
	f, _ := in.Get(name).(float64)
	return f
}

// Bool returns the value of name as a bool, or false when it is not one.
func (in *Instance) Bool(name string) bool {
	b, _ := in.Get(name).(bool)
	return b
}

// Time returns the value of a date or datetime field.
func (in *Instance) Time(name string) time.Time {
	t, _ := in.Get(name).(time.Time)
	return t
}

// Decimal returns the value of a decimal field.
func (in *Instance) Decimal(name string) decimal.Decimal {
	d, _ := in.Get(name).(decimal.Decimal)
	return d
}

// UUID returns the value of a UUID field.
func (in *Instance) UUID(name string) uuid.UUID {
	u, _ := in.Get(name).(uuid.UUID)
	return u
}

// Object returns the nested instance stored for name, or nil.
func (in *Instance) Object(name string) *Instance {
	o, _ := in.Get(name).(*Instance)
	return o
}

// List returns the sequence stored for name, or nil.
func (in *Instance) List(name string) []any {
	l, _ := asSlice(in.Get(name))
	return l
}

// Data returns a shallow copy of the internal map.
func (in *Instance) Data() map[string]any {
	out := make(map[string]any, len(in.data))
	for k, v := range in.data {
		out[k] = v
	}
	return out
}

// ToPrimitive exports the instance to plain nested maps, recursing into
// nested instances and lists. Date/time values are formatted with their
// field's pattern, decimals and UUIDs become strings.
func (in *Instance) ToPrimitive() map[string]any {
	out := make(map[string]any, len(in.data))
	for _, f := range in.schema.fields {
		v, ok := in.data[f.Name()]
		if !ok {
			continue
		}
		if v == nil {
			out[f.Name()] = nil
			continue
		}
		out[f.Name()] = f.export(v)
	}
	return out
}

// MarshalJSON encodes the primitive form.
func (in *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.ToPrimitive())
}

// MarshalYAML exposes the primitive form to gopkg.in/yaml.v3.
func (in *Instance) MarshalYAML() (any, error) {
	return in.ToPrimitive(), nil
}

// exportAny converts values set outside the conversion engine.
func exportAny(v any) any {
	switch t := v.(type) {
	case *Instance:
		if t == nil {
			return nil
		}
		return t.ToPrimitive()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = exportAny(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = exportAny(vv)
		}
		return out
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case decimal.Decimal:
		return t.String()
	case uuid.UUID:
		return t.String()
	}
	return v
}
