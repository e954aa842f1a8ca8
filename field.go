package skeleton

import (
	"context"
	"fmt"

	"github.com/reoring/skeleton/internal/path"
)

// DefaultDelimiter separates segments of a path mapping ("artist__name").
const DefaultDelimiter = "__"

// MapFunc extracts a field's raw value from the whole raw record.
type MapFunc func(raw any) (any, error)

// Transformer preprocesses a resolved value before type conversion. Its
// errors are returned to the caller of Convert as is.
type Transformer func(v any) (any, error)

// Field describes one schema attribute. The set of implementations is closed:
// fields are created with String, Int, Numeric, Date, Datetime, Bool, Decimal,
// UUID, Object and List.
type Field interface {
	// Kind reports the field variant.
	Kind() Kind
	// Name is the key used in instance data and the fallback source key.
	Name() string
	// Mapping returns the path or key expression, "<func>" for callable
	// mappings and "" when none was configured.
	Mapping() string
	// Default returns the configured default and whether one was set.
	Default() (any, bool)

	spec() *fieldSpec
	convert(ctx context.Context, v any) (any, error)
	export(v any) any
	clone() Field
}

// Option configures a field at construction.
type Option func(*fieldSpec)

// WithName overrides the name otherwise taken from the registered attribute.
func WithName(name string) Option {
	return func(s *fieldSpec) { s.name = name }
}

// WithMapping sets how the raw value is located. m must be a non-empty path
// or key string, a MapFunc, a func(any) any or a func(any) (any, error); any
// other value is reported by Build as ErrInvalidMapping.
func WithMapping(m any) Option {
	return func(s *fieldSpec) {
		switch t := m.(type) {
		case string:
			if t == "" {
				s.fail(fmt.Errorf("%w: empty string", ErrInvalidMapping))
				return
			}
			s.mappingKey = t
			s.mappingFn = nil
		case MapFunc:
			s.setMappingFn(t)
		case func(any) (any, error):
			s.setMappingFn(t)
		case func(any) any:
			if t == nil {
				s.fail(fmt.Errorf("%w: nil function", ErrInvalidMapping))
				return
			}
			s.setMappingFn(func(raw any) (any, error) { return t(raw), nil })
		default:
			s.fail(fmt.Errorf("%w: got %T", ErrInvalidMapping, m))
		}
	}
}

// WithDefault sets the value used when resolution yields nothing.
func WithDefault(v any) Option {
	return func(s *fieldSpec) {
		s.def = v
		s.hasDefault = true
	}
}

// WithTransformer sets a preprocessing step applied to the resolved value.
func WithTransformer(fn Transformer) Option {
	return func(s *fieldSpec) { s.transformer = fn }
}

// fieldSpec holds configuration shared by every variant. It never holds
// per-instance data.
type fieldSpec struct {
	name        string
	mappingKey  string
	mappingFn   MapFunc
	def         any
	hasDefault  bool
	transformer Transformer
	err         error
}

func newSpec(opts []Option) fieldSpec {
	var s fieldSpec
	for _, o := range opts {
		if o != nil {
			o(&s)
		}
	}
	return s
}

func (s *fieldSpec) Name() string { return s.name }

func (s *fieldSpec) Mapping() string {
	if s.mappingFn != nil {
		return "<func>"
	}
	return s.mappingKey
}

func (s *fieldSpec) Default() (any, bool) { return cloneDefault(s.def), s.hasDefault }

func (s *fieldSpec) setMappingFn(fn MapFunc) {
	if fn == nil {
		s.fail(fmt.Errorf("%w: nil function", ErrInvalidMapping))
		return
	}
	s.mappingFn = fn
	s.mappingKey = ""
}

// fail keeps the first configuration error.
func (s *fieldSpec) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *fieldSpec) defaultValue() any {
	if !s.hasDefault {
		return nil
	}
	return cloneDefault(s.def)
}

// resolve locates the raw value for this field.
//
// Priority: callable mapping, path mapping, plain key (explicit mapping or the
// field name). A field with neither mapping nor name takes its default, or
// the whole raw record when no default is set.
func (s *fieldSpec) resolve(raw any, delim string) (any, error) {
	if s.mappingFn != nil {
		v, err := s.mappingFn(raw)
		if err != nil {
			return nil, &ResolveError{Field: s.name, Mapping: "<func>", Err: err, Message: err.Error()}
		}
		return v, nil
	}
	key := s.mappingKey
	if key == "" {
		key = s.name
	}
	if key == "" {
		if s.hasDefault {
			return s.defaultValue(), nil
		}
		return raw, nil
	}
	if path.IsPath(key, delim) {
		v, err := path.Parse(key, delim).Resolve(raw)
		if err != nil {
			return nil, s.resolveError(key, err)
		}
		return v, nil
	}
	v, found, ok := path.Key(raw, key)
	if !ok {
		return nil, &ResolveError{Field: s.name, Mapping: key, Segment: key, Err: ErrDeadEnd, Message: fmt.Sprintf("cannot look up %q in %s", key, typeName(raw))}
	}
	if !found {
		return s.defaultValue(), nil
	}
	return v, nil
}

func (s *fieldSpec) resolveError(key string, err error) error {
	pe, ok := err.(*path.Error)
	if !ok {
		return &ResolveError{Field: s.name, Mapping: key, Err: err, Message: err.Error()}
	}
	re := &ResolveError{Field: s.name, Mapping: key, Segment: pe.Segment, Message: pe.Message}
	switch pe.Reason {
	case path.ReasonMissing:
		re.Err = ErrKeyMissing
	case path.ReasonBadIndex:
		re.Err = ErrBadIndex
	default:
		re.Err = ErrDeadEnd
	}
	return re
}

// toValue runs the conversion step: nil passes through, failures are wrapped
// once into a ValidationError.
func toValue(ctx context.Context, f Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	out, err := f.convert(ctx, v)
	if err != nil {
		if structured(err) {
			return nil, err
		}
		return nil, newValidationError(f, v, err)
	}
	return out, nil
}

// cloneDefault hands out a fresh copy of mutable container defaults so that
// instances never share them.
func cloneDefault(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = vv
		}
		return out
	}
	return v
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
