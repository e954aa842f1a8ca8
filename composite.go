package skeleton

import (
	"context"
	"reflect"
	"strconv"
)

// Object returns a field that converts its resolved value with the nested
// schema s. Failures inside s surface unchanged apart from their path.
func Object(s *Schema, opts ...Option) Field {
	f := &objectField{schema: s, fieldSpec: newSpec(opts)}
	if s == nil {
		f.fail(ErrNilSchema)
	}
	return f
}

// List returns a field holding an ordered sequence. When member is non-nil
// each element is converted with it; otherwise elements keep their raw form.
// The default is an empty list.
func List(member Field, opts ...Option) Field {
	f := &listField{member: member, fieldSpec: newSpec(append([]Option{WithDefault([]any{})}, opts...))}
	if member != nil && member.spec().err != nil {
		f.fail(member.spec().err)
	}
	return f
}

// ---- object ----

type objectField struct {
	schema *Schema
	fieldSpec
}

func (f *objectField) Kind() Kind       { return KindObject }
func (f *objectField) spec() *fieldSpec { return &f.fieldSpec }
func (f *objectField) clone() Field     { c := *f; return &c }

// Schema returns the nested schema.
func (f *objectField) Schema() *Schema { return f.schema }

func (f *objectField) convert(ctx context.Context, v any) (any, error) {
	if in, ok := v.(*Instance); ok && in.schema == f.schema {
		return in, nil
	}
	return f.schema.Convert(ctx, v)
}

func (f *objectField) export(v any) any { return exportAny(v) }

// ---- list ----

type listField struct {
	member Field
	fieldSpec
}

func (f *listField) Kind() Kind       { return KindList }
func (f *listField) spec() *fieldSpec { return &f.fieldSpec }

func (f *listField) clone() Field {
	c := *f
	if f.member != nil {
		c.member = f.member.clone()
	}
	return &c
}

// Member returns the element field, or nil for untyped lists.
func (f *listField) Member() Field { return f.member }

func (f *listField) convert(ctx context.Context, v any) (any, error) {
	items, ok := asSlice(v)
	if !ok {
		return nil, invalidType("expected list, got %T", v)
	}
	if f.member == nil {
		return items, nil
	}
	out := make([]any, 0, len(items))
	for i, it := range items {
		cv, err := toValue(ctx, f.member, it)
		if err != nil {
			return nil, rebase(err, strconv.Itoa(i))
		}
		out = append(out, cv)
	}
	return out, nil
}

func (f *listField) export(v any) any {
	items, ok := asSlice(v)
	if !ok {
		return exportAny(v)
	}
	out := make([]any, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}
		if f.member != nil {
			out[i] = f.member.export(it)
		} else {
			out[i] = exportAny(it)
		}
	}
	return out
}

// asSlice views any slice or array as []any. Strings and byte slices are not
// sequences here.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
