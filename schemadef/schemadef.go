// Package schemadef loads declarative schema bundles and compiles them into
// skeleton schemas.
//
// A bundle is a YAML (or JSON) document:
//
//	schemas:
//	  - name: Track
//	    fields:
//	      - {attr: title, kind: string, transforms: [trim]}
//	      - {attr: seconds, kind: int, mapping: length__seconds, default: 0}
//	  - name: Album
//	    fields:
//	      - {attr: released, kind: date, format: "%Y-%m-%d"}
//	      - {attr: tracks, kind: list, member: {kind: object, schema: Track}}
//
// Schemas may reference each other in any order. Unknown kinds or
// transformers, missing references and reference cycles are reported as
// *skeleton.ConfigError.
package schemadef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/transform"
)

var (
	ErrUnknownKind     = errors.New("schemadef: unknown field kind")
	ErrMissingSchema   = errors.New("schemadef: schema not defined")
	ErrDuplicateSchema = errors.New("schemadef: schema defined twice")
	ErrCycle           = errors.New("schemadef: schema reference cycle")
	ErrMissingRef      = errors.New("schemadef: object field needs a schema reference")
)

// Document is the decoded form of a bundle.
type Document struct {
	Schemas []SchemaDef `yaml:"schemas" json:"schemas"`
}

// SchemaDef declares one schema.
type SchemaDef struct {
	Name      string     `yaml:"name" json:"name"`
	Delimiter string     `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Inherit   string     `yaml:"inherit,omitempty" json:"inherit,omitempty"`
	Fields    []FieldDef `yaml:"fields" json:"fields"`
}

// FieldDef declares one field. Attr is required for schema fields and
// ignored for list members.
type FieldDef struct {
	Attr       string    `yaml:"attr,omitempty" json:"attr,omitempty"`
	Kind       string    `yaml:"kind" json:"kind"`
	Name       string    `yaml:"name,omitempty" json:"name,omitempty"`
	Mapping    string    `yaml:"mapping,omitempty" json:"mapping,omitempty"`
	Default    any       `yaml:"default,omitempty" json:"default,omitempty"`
	Format     string    `yaml:"format,omitempty" json:"format,omitempty"`
	Transforms []string  `yaml:"transforms,omitempty" json:"transforms,omitempty"`
	Schema     string    `yaml:"schema,omitempty" json:"schema,omitempty"`
	Member     *FieldDef `yaml:"member,omitempty" json:"member,omitempty"`
}

// Bundle holds compiled schemas by name.
type Bundle struct {
	names   []string
	schemas map[string]*skeleton.Schema
}

// Schema returns the compiled schema called name.
func (b *Bundle) Schema(name string) (*skeleton.Schema, bool) {
	s, ok := b.schemas[name]
	return s, ok
}

// Names lists schema names in document order.
func (b *Bundle) Names() []string { return append([]string(nil), b.names...) }

// Load decodes and compiles a bundle. Unknown document keys are rejected.
func Load(data []byte) (*Bundle, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// LoadFile reads and loads the bundle at path.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Decode reads a bundle document without compiling it.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("schemadef: decode: %w", err)
	}
	return &doc, nil
}

// Compile builds every schema of doc, resolving references between them.
func Compile(doc *Document) (*Bundle, error) {
	c := &compiler{
		defs:  make(map[string]*SchemaDef, len(doc.Schemas)),
		state: map[string]int{},
		out:   &Bundle{schemas: map[string]*skeleton.Schema{}},
	}
	for i := range doc.Schemas {
		sd := &doc.Schemas[i]
		if _, dup := c.defs[sd.Name]; dup {
			return nil, &skeleton.ConfigError{Schema: sd.Name, Err: ErrDuplicateSchema}
		}
		c.defs[sd.Name] = sd
		c.out.names = append(c.out.names, sd.Name)
	}
	for _, name := range c.out.names {
		if _, err := c.schema(name); err != nil {
			return nil, err
		}
	}
	return c.out, nil
}

const (
	unvisited = iota
	visiting
	done
)

type compiler struct {
	defs  map[string]*SchemaDef
	state map[string]int
	out   *Bundle
}

func (c *compiler) schema(name string) (*skeleton.Schema, error) {
	switch c.state[name] {
	case done:
		return c.out.schemas[name], nil
	case visiting:
		return nil, &skeleton.ConfigError{Schema: name, Err: ErrCycle}
	}
	sd, ok := c.defs[name]
	if !ok {
		return nil, &skeleton.ConfigError{Schema: name, Err: ErrMissingSchema}
	}
	c.state[name] = visiting

	b := skeleton.Define(name)
	if sd.Delimiter != "" {
		b.Delimiter(sd.Delimiter)
	}
	if sd.Inherit != "" {
		parent, err := c.schema(sd.Inherit)
		if err != nil {
			return nil, err
		}
		b.Inherit(parent)
	}
	for _, fd := range sd.Fields {
		f, err := c.field(fd)
		if err != nil {
			return nil, wrap(name, fd.Attr, err)
		}
		b.Field(fd.Attr, f)
	}
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	c.state[name] = done
	c.out.schemas[name] = s
	return s, nil
}

// wrap attributes err to a field unless it already names a schema.
func wrap(schema, attr string, err error) error {
	var ce *skeleton.ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &skeleton.ConfigError{Schema: schema, Field: attr, Err: err}
}

func (c *compiler) field(fd FieldDef) (skeleton.Field, error) {
	var opts []skeleton.Option
	if fd.Name != "" {
		opts = append(opts, skeleton.WithName(fd.Name))
	}
	if fd.Mapping != "" {
		opts = append(opts, skeleton.WithMapping(fd.Mapping))
	}
	if fd.Default != nil {
		opts = append(opts, skeleton.WithDefault(fd.Default))
	}
	if len(fd.Transforms) > 0 {
		fn, err := transform.LookupChain(fd.Transforms)
		if err != nil {
			return nil, err
		}
		opts = append(opts, skeleton.WithTransformer(fn))
	}

	k, ok := skeleton.ParseKind(fd.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, fd.Kind)
	}
	switch k {
	case skeleton.KindString:
		return skeleton.String(opts...), nil
	case skeleton.KindInt:
		return skeleton.Int(opts...), nil
	case skeleton.KindNumeric:
		return skeleton.Numeric(opts...), nil
	case skeleton.KindBool:
		return skeleton.Bool(opts...), nil
	case skeleton.KindDecimal:
		return skeleton.Decimal(opts...), nil
	case skeleton.KindUUID:
		return skeleton.UUID(opts...), nil
	case skeleton.KindDate:
		return skeleton.Date(fd.Format, opts...), nil
	case skeleton.KindDatetime:
		return skeleton.Datetime(fd.Format, opts...), nil
	case skeleton.KindObject:
		if fd.Schema == "" {
			return nil, ErrMissingRef
		}
		s, err := c.schema(fd.Schema)
		if err != nil {
			return nil, err
		}
		return skeleton.Object(s, opts...), nil
	}
	// list
	if fd.Member == nil {
		return skeleton.List(nil, opts...), nil
	}
	m, err := c.field(*fd.Member)
	if err != nil {
		return nil, fmt.Errorf("member: %w", err)
	}
	return skeleton.List(m, opts...), nil
}
