package skeleton

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried by ValidationError (exported consts for IDE completion).
const (
	CodeInvalidType   = "invalid_type"
	CodeInvalidFormat = "invalid_format"
	CodeParseError    = "parse_error"
)

// Sentinel errors. Resolution and configuration errors wrap one of these so
// callers can branch with errors.Is.
var (
	// Resolution phase.
	ErrKeyMissing = errors.New("skeleton: required key missing")
	ErrDeadEnd    = errors.New("skeleton: path dead end")
	ErrBadIndex   = errors.New("skeleton: bad sequence index")

	// Definition phase.
	ErrInvalidMapping   = errors.New("skeleton: mapping must be a path string or a function")
	ErrInvalidFormatter = errors.New("skeleton: invalid date/time formatter")
	ErrNilSchema        = errors.New("skeleton: nil schema")
	ErrNilField         = errors.New("skeleton: nil field")
	ErrInvalidDelimiter = errors.New("skeleton: empty path delimiter")

	// Instance access.
	ErrUnknownField = errors.New("skeleton: unknown field")
)

// ValidationError reports that a resolved value could not be converted to the
// field's declared type. It is only produced by the conversion step.
type ValidationError struct {
	Path  string // JSON Pointer of the failing value (for example: /tracks/0/title).
	Field string
	Kind  Kind
	Code  string // One of the Code* constants.
	Value any    // Offending value as seen by the conversion step.
	Cause error
}

func (e *ValidationError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s (%s) cannot transform %v: %v", e.Field, e.Kind, e.Value, e.Cause)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// ResolveError reports that the shape of a raw record did not match a field's
// mapping: a required top-level key was missing, or traversal hit a value that
// cannot be descended into.
type ResolveError struct {
	Path    string
	Field   string
	Mapping string // mapping expression; "<func>" for callables
	Segment string // segment that failed, when known
	Err     error  // ErrKeyMissing, ErrDeadEnd, ErrBadIndex or a mapping function's error
	Message string
}

func (e *ResolveError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: resolve %q: %s", e.Field, e.Mapping, e.Message)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	return b.String()
}

func (e *ResolveError) Unwrap() error { return e.Err }

// ConfigError reports an invalid schema or field definition.
type ConfigError struct {
	Schema string
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Schema != "" && e.Field != "":
		return fmt.Sprintf("%s.%s: %v", e.Schema, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	case e.Schema != "":
		return fmt.Sprintf("%s: %v", e.Schema, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AsValidationError extracts a ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if err != nil && errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsResolveError extracts a ResolveError using errors.As internally.
func AsResolveError(err error) (*ResolveError, bool) {
	var re *ResolveError
	if err != nil && errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// codedError lets conversion routines pick the ValidationError code.
type codedError struct {
	code string
	err  error
}

func (e codedError) Error() string { return e.err.Error() }
func (e codedError) Unwrap() error { return e.err }

func invalidType(format string, args ...any) error {
	return codedError{code: CodeInvalidType, err: fmt.Errorf(format, args...)}
}

func invalidFormat(err error) error {
	return codedError{code: CodeInvalidFormat, err: err}
}

func newValidationError(f Field, v any, cause error) *ValidationError {
	code := CodeParseError
	var ce codedError
	if errors.As(cause, &ce) {
		code = ce.code
		cause = ce.err
	}
	return &ValidationError{Field: f.Name(), Kind: f.Kind(), Code: code, Value: v, Cause: cause}
}

// rebase prefixes the path of structured errors with seg as they propagate
// outward. Other errors are returned unchanged.
func rebase(err error, seg string) error {
	p := "/" + escapePointer(seg)
	switch e := err.(type) {
	case *ValidationError:
		e.Path = p + e.Path
	case *ResolveError:
		e.Path = p + e.Path
	}
	return err
}

// structured reports whether err already belongs to the taxonomy and must not
// be wrapped again.
func structured(err error) bool {
	switch err.(type) {
	case *ValidationError, *ResolveError:
		return true
	}
	return false
}

// escapePointer escapes '~' -> '~0' and '/' -> '~1' per RFC6901.
func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
