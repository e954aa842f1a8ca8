package dsl

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/transform"
)

var (
	ErrNotStruct       = errors.New("dsl: struct type required")
	ErrUnsupportedType = errors.New("dsl: unsupported field type")
	ErrRecursiveType   = errors.New("dsl: recursive type")
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
)

// binding ties a derived schema to the struct fields it fills.
type binding struct {
	schema *skeleton.Schema
	fields []boundField
}

type boundField struct {
	attr  string
	name  string // field name in instance data
	index []int  // reflect.Value.FieldByIndex path
}

// cache holds *binding per struct type.
var cache sync.Map

// SchemaOf derives the schema of struct type T. The result is cached per type.
func SchemaOf[T any]() (*skeleton.Schema, error) {
	b, err := bindingFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return b.schema, nil
}

// MustSchemaOf is like SchemaOf but panics on error.
func MustSchemaOf[T any]() *skeleton.Schema {
	s, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func bindingFor(rt reflect.Type) (*binding, error) {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, rt)
	}
	if b, ok := cache.Load(rt); ok {
		return b.(*binding), nil
	}
	return (&deriver{active: map[reflect.Type]bool{}}).derive(rt)
}

// deriver walks one type graph; active holds the types being derived.
type deriver struct {
	active map[reflect.Type]bool
}

func (d *deriver) derive(rt reflect.Type) (*binding, error) {
	if b, ok := cache.Load(rt); ok {
		return b.(*binding), nil
	}
	if d.active[rt] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveType, rt)
	}
	d.active[rt] = true
	defer delete(d.active, rt)

	name := rt.Name()
	if name == "" {
		name = rt.String()
	}
	sb := skeleton.Define(name)
	b := &binding{}
	if err := d.collect(name, rt, nil, sb, b); err != nil {
		return nil, err
	}
	s, err := sb.Build()
	if err != nil {
		return nil, err
	}
	b.schema = s
	for i := range b.fields {
		f, _ := s.Field(b.fields[i].attr)
		b.fields[i].name = f.Name()
	}
	actual, _ := cache.LoadOrStore(rt, b)
	return actual.(*binding), nil
}

// collect registers the fields of rt. Embedded structs without a key of
// their own are flattened into the enclosing schema.
func (d *deriver) collect(schema string, rt reflect.Type, index []int, sb *skeleton.Builder, b *binding) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		idx := append(append([]int(nil), index...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !leaf(sf.Type) && !keyed(sf) {
			if err := d.collect(schema, sf.Type, idx, sb, b); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		attr := ResolveStructKey(sf)
		if attr == "-" || attr == "" {
			continue
		}
		f, err := d.fieldFor(sf.Type, parseTag(sf))
		if err != nil {
			return &skeleton.ConfigError{Schema: schema, Field: attr, Err: err}
		}
		sb.Field(attr, f)
		b.add(boundField{attr: attr, index: idx})
	}
	return nil
}

// add keeps one entry per attribute; the later declaration wins.
func (b *binding) add(bf boundField) {
	for i := range b.fields {
		if b.fields[i].attr == bf.attr {
			b.fields[i] = bf
			return
		}
	}
	b.fields = append(b.fields, bf)
}

func keyed(sf reflect.StructField) bool {
	if parseTag(sf).name != "" {
		return true
	}
	jt := sf.Tag.Get("json")
	return jt != "" && jt[0] != ','
}

// leaf reports struct types converted as a single value.
func leaf(t reflect.Type) bool {
	return t == timeType || t == decimalType || t == uuidType
}

func (d *deriver) fieldFor(t reflect.Type, tag fieldTag) (skeleton.Field, error) {
	var opts []skeleton.Option
	if tag.mapping != "" {
		opts = append(opts, skeleton.WithMapping(tag.mapping))
	}
	if tag.hasDefault {
		opts = append(opts, skeleton.WithDefault(tag.def))
	}
	if len(tag.transforms) > 0 {
		fn, err := transform.LookupChain(tag.transforms)
		if err != nil {
			return nil, err
		}
		opts = append(opts, skeleton.WithTransformer(fn))
	}
	return d.kindFor(t, tag, opts...)
}

func (d *deriver) kindFor(t reflect.Type, tag fieldTag, opts ...skeleton.Option) (skeleton.Field, error) {
	switch t {
	case timeType:
		if tag.date {
			return skeleton.Date(orDefault(tag.format, "%Y-%m-%d"), opts...), nil
		}
		return skeleton.Datetime(orDefault(tag.format, time.RFC3339), opts...), nil
	case decimalType:
		return skeleton.Decimal(opts...), nil
	case uuidType:
		return skeleton.UUID(opts...), nil
	}
	switch t.Kind() {
	case reflect.String:
		return skeleton.String(opts...), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return skeleton.Int(opts...), nil
	case reflect.Float32, reflect.Float64:
		return skeleton.Numeric(opts...), nil
	case reflect.Bool:
		return skeleton.Bool(opts...), nil
	case reflect.Pointer:
		return d.kindFor(t.Elem(), tag, opts...)
	case reflect.Struct:
		b, err := d.derive(t)
		if err != nil {
			return nil, err
		}
		return skeleton.Object(b.schema, opts...), nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Interface && t.Elem().NumMethod() == 0 {
			return skeleton.List(nil, opts...), nil
		}
		member, err := d.kindFor(t.Elem(), fieldTag{format: tag.format, date: tag.date})
		if err != nil {
			return nil, err
		}
		return skeleton.List(member, opts...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
