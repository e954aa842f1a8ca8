package dsl

import (
	"reflect"

	"github.com/reoring/skeleton"
)

// From builds an instance of T's schema from a struct value without running
// conversion. Nested structs become nested instances and slices become
// lists, so the result exports with Instance.ToPrimitive.
func From[T any](v T) (*skeleton.Instance, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	b, err := bindingFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return b.instance(rv)
}

func (b *binding) instance(rv reflect.Value) (*skeleton.Instance, error) {
	values := make(map[string]any, len(b.fields))
	for _, bf := range b.fields {
		fv, err := rv.FieldByIndexErr(bf.index)
		if err != nil {
			continue
		}
		pv, err := primitive(fv)
		if err != nil {
			return nil, err
		}
		values[bf.name] = pv
	}
	return b.schema.New(values), nil
}

func primitive(v reflect.Value) (any, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct && !leaf(v.Type()) {
		b, err := bindingFor(v.Type())
		if err != nil {
			return nil, err
		}
		return b.instance(v)
	}
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		out := make([]any, v.Len())
		for i := range out {
			pv, err := primitive(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = pv
		}
		return out, nil
	}
	return v.Interface(), nil
}
