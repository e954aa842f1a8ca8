package dsl

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/skeleton"
)

// BindError reports a converted value that does not fit its struct field.
type BindError struct {
	Path  string // JSON Pointer of the value
	Type  reflect.Type
	Value any
}

func (e *BindError) Error() string {
	p := e.Path
	if p == "" {
		p = "/"
	}
	return fmt.Sprintf("dsl: cannot bind %T to %s at %s", e.Value, e.Type, p)
}

// Convert derives the schema of T, converts raw with it and binds the result.
func Convert[T any](ctx context.Context, raw any) (T, error) {
	var zero T
	b, err := bindingFor(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	in, err := b.schema.Convert(ctx, raw)
	if err != nil {
		return zero, err
	}
	return Bind[T](in)
}

// Bind copies the values of in into a new T, matching struct fields by their
// resolved key. Nested instances fill nested structs and lists fill slices.
// Nil values leave the zero value in place.
func Bind[T any](in *skeleton.Instance) (T, error) {
	var out T
	if in == nil {
		return out, nil
	}
	if err := assign(reflect.ValueOf(&out).Elem(), in, ""); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](in *skeleton.Instance) T {
	v, err := Bind[T](in)
	if err != nil {
		panic(err)
	}
	return v
}

func (b *binding) fill(dst reflect.Value, in *skeleton.Instance, path string) error {
	for _, bf := range b.fields {
		fv := dst.FieldByIndex(bf.index)
		if !fv.CanSet() {
			continue
		}
		if err := assign(fv, in.Get(bf.name), path+"/"+escape(bf.name)); err != nil {
			return err
		}
	}
	return nil
}

func assign(dst reflect.Value, v any, path string) error {
	if v == nil {
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(dst.Elem(), v, path)
	}
	if in, ok := v.(*skeleton.Instance); ok {
		if dst.Kind() != reflect.Struct {
			return &BindError{Path: path, Type: dst.Type(), Value: v}
		}
		b, err := bindingFor(dst.Type())
		if err != nil {
			return err
		}
		return b.fill(dst, in, path)
	}
	if items, ok := v.([]any); ok {
		return assignList(dst, items, path)
	}
	vv := reflect.ValueOf(v)
	switch {
	case vv.Type().AssignableTo(dst.Type()):
		dst.Set(vv)
		return nil
	case numeric(vv.Kind()) && numeric(dst.Kind()):
		cv := vv.Convert(dst.Type())
		if integer(dst.Kind()) && cv.Convert(vv.Type()).Interface() != v {
			return &BindError{Path: path, Type: dst.Type(), Value: v}
		}
		dst.Set(cv)
		return nil
	case vv.Kind() == dst.Kind() && vv.Type().ConvertibleTo(dst.Type()):
		dst.Set(vv.Convert(dst.Type()))
		return nil
	}
	return &BindError{Path: path, Type: dst.Type(), Value: v}
}

func assignList(dst reflect.Value, items []any, path string) error {
	switch dst.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, it := range items {
			if err := assign(out.Index(i), it, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		if len(items) > dst.Len() {
			return &BindError{Path: path, Type: dst.Type(), Value: items}
		}
		for i, it := range items {
			if err := assign(dst.Index(i), it, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Interface:
		dst.Set(reflect.ValueOf(items))
		return nil
	}
	return &BindError{Path: path, Type: dst.Type(), Value: items}
}

func numeric(k reflect.Kind) bool {
	return integer(k) || k == reflect.Float32 || k == reflect.Float64
}

func integer(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
