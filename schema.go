package skeleton

import (
	"context"
	"fmt"
)

// Builder records field declarations in order and produces an immutable
// Schema. The zero value is not usable; start with Define.
type Builder struct {
	name   string
	attrs  []string
	fields map[string]Field
	parent *Schema
	delim  string
	err    error
}

// Define starts a schema named name.
func Define(name string) *Builder {
	return &Builder{name: name, fields: map[string]Field{}, delim: DefaultDelimiter}
}

// Field declares attribute attr. Declaring the same attribute twice keeps the
// first position and the last field.
func (b *Builder) Field(attr string, f Field) *Builder {
	if _, seen := b.fields[attr]; !seen {
		b.attrs = append(b.attrs, attr)
	}
	b.fields[attr] = f
	return b
}

// Inherit reuses parent's field table when this schema declares no fields of
// its own. Declaring any field replaces the inherited table entirely.
func (b *Builder) Inherit(parent *Schema) *Builder {
	if parent == nil {
		b.fail(&ConfigError{Schema: b.name, Err: ErrNilSchema})
		return b
	}
	b.parent = parent
	return b
}

// Delimiter overrides the path segment delimiter ("__" by default).
func (b *Builder) Delimiter(sep string) *Builder {
	if sep == "" {
		b.fail(&ConfigError{Schema: b.name, Err: ErrInvalidDelimiter})
		return b
	}
	b.delim = sep
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates every declaration and freezes the field table. Each field
// is copied, so a Field value may be declared in several schemas.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &Schema{name: b.name, delim: b.delim, byAttr: map[string]int{}, byName: map[string]int{}}
	if len(b.attrs) == 0 && b.parent != nil {
		s.attrs = append(s.attrs, b.parent.attrs...)
		s.fields = append(s.fields, b.parent.fields...)
		if b.delim == DefaultDelimiter {
			s.delim = b.parent.delim
		}
	} else {
		for _, attr := range b.attrs {
			f, err := register(attr, b.fields[attr])
			if err != nil {
				return nil, &ConfigError{Schema: b.name, Field: attr, Err: err}
			}
			s.attrs = append(s.attrs, attr)
			s.fields = append(s.fields, f)
		}
	}
	for i, attr := range s.attrs {
		s.byAttr[attr] = i
		s.byName[s.fields[i].Name()] = i
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// register copies f and back-fills its name from attr when unset. List
// members without a name take the list's name so errors stay attributable.
func register(attr string, f Field) (Field, error) {
	if f == nil {
		return nil, ErrNilField
	}
	if err := f.spec().err; err != nil {
		return nil, err
	}
	c := f.clone()
	if c.spec().name == "" {
		c.spec().name = attr
	}
	if lf, ok := c.(*listField); ok && lf.member != nil {
		m, err := register(lf.name, lf.member)
		if err != nil {
			return nil, fmt.Errorf("member: %w", err)
		}
		lf.member = m
	}
	return c, nil
}

// Schema is an immutable, ordered table of fields. It is safe for concurrent
// use once built.
type Schema struct {
	name   string
	attrs  []string
	fields []Field
	byAttr map[string]int
	byName map[string]int
	delim  string
}

// Name returns the schema name given to Define.
func (s *Schema) Name() string { return s.name }

// Delimiter returns the path segment delimiter.
func (s *Schema) Delimiter() string { return s.delim }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Attrs returns attribute names in declaration order.
func (s *Schema) Attrs() []string { return append([]string(nil), s.attrs...) }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Field returns the field registered under attribute attr.
func (s *Schema) Field(attr string) (Field, bool) {
	i, ok := s.byAttr[attr]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// FieldByName returns the field whose Name is name.
func (s *Schema) FieldByName(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Convert turns a raw record into an instance. Fields are processed in
// declaration order: resolve, transform, convert. The first failure aborts
// the whole record; no partial instance is returned.
func (s *Schema) Convert(ctx context.Context, raw any) (*Instance, error) {
	data := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		v, err := s.convertField(ctx, f, raw)
		if err != nil {
			return nil, rebase(err, f.Name())
		}
		data[f.Name()] = v
	}
	return &Instance{schema: s, data: data}, nil
}

func (s *Schema) convertField(ctx context.Context, f Field, raw any) (any, error) {
	sp := f.spec()
	v, err := sp.resolve(raw, s.delim)
	if err != nil {
		return nil, err
	}
	if sp.transformer != nil {
		tv, err := sp.transformer(v)
		if err != nil {
			return nil, err
		}
		v = tv
	}
	return toValue(ctx, f, v)
}

// New builds an instance directly from values keyed by field name (or
// attribute name). Values are stored as given; missing fields take their
// default. Keys that match no field are ignored.
func (s *Schema) New(values map[string]any) *Instance {
	data := make(map[string]any, len(s.fields))
	for i, f := range s.fields {
		if v, ok := values[f.Name()]; ok {
			data[f.Name()] = v
			continue
		}
		if v, ok := values[s.attrs[i]]; ok {
			data[f.Name()] = v
			continue
		}
		data[f.Name()] = f.spec().defaultValue()
	}
	return &Instance{schema: s, data: data}
}
