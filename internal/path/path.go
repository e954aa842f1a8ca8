package path

import (
	"reflect"
	"strconv"
	"strings"
)

// Path expressions locate a value inside a raw record by successive key and
// index lookups, e.g. "artists__0__name" with the "__" delimiter.

// Reason classifies a traversal failure.
type Reason int

const (
	ReasonMissing  Reason = iota // required top-level key absent
	ReasonDeadEnd                // value cannot be traversed further
	ReasonBadIndex               // segment is not a usable sequence index
)

func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonDeadEnd:
		return "dead_end"
	case ReasonBadIndex:
		return "bad_index"
	default:
		return "unknown"
	}
}

// Error reports where a traversal stopped.
type Error struct {
	Reason   Reason
	Segment  string // segment that could not be applied
	Position int    // zero-based segment position
	Message  string
}

func (e *Error) Error() string { return e.Message }

// Expr is a parsed path expression.
type Expr struct {
	Segments []string
}

// IsPath reports whether expr spans more than one segment.
func IsPath(expr, delim string) bool {
	return delim != "" && strings.Contains(expr, delim)
}

// Parse splits expr on delim. Empty segments are kept so that "a____b"
// fails at traversal instead of being silently collapsed.
func Parse(expr, delim string) Expr {
	if delim == "" {
		return Expr{Segments: []string{expr}}
	}
	return Expr{Segments: strings.Split(expr, delim)}
}

// String joins the segments with "__".
func (e Expr) String() string { return strings.Join(e.Segments, "__") }

// Resolve walks raw along the expression. The first segment must exist as a
// top-level key; later missing keys yield nil.
func (e Expr) Resolve(raw any) (any, error) {
	if len(e.Segments) == 0 {
		return raw, nil
	}
	first := e.Segments[0]
	v, found, ok := Key(raw, first)
	if !ok {
		return nil, &Error{Reason: ReasonDeadEnd, Segment: first, Message: "cannot look up " + strconv.Quote(first) + " in " + describe(raw)}
	}
	if !found {
		return nil, &Error{Reason: ReasonMissing, Segment: first, Message: "key " + strconv.Quote(first) + " not found"}
	}
	for i, seg := range e.Segments[1:] {
		pos := i + 1
		if isSequence(v) {
			idx, err := parseIndex(seg)
			if err != nil {
				return nil, &Error{Reason: ReasonBadIndex, Segment: seg, Position: pos, Message: "segment " + strconv.Quote(seg) + " is not a sequence index"}
			}
			rv := reflect.ValueOf(v)
			if idx >= rv.Len() {
				return nil, &Error{Reason: ReasonBadIndex, Segment: seg, Position: pos, Message: "index " + seg + " out of range (len " + strconv.Itoa(rv.Len()) + ")"}
			}
			v = rv.Index(idx).Interface()
			continue
		}
		next, _, ok := Key(v, seg)
		if !ok {
			return nil, &Error{Reason: ReasonDeadEnd, Segment: seg, Position: pos, Message: "dead end at " + strconv.Quote(seg) + ": cannot traverse " + describe(v)}
		}
		v = next
	}
	return v, nil
}

// Key looks up k in a keyed mapping. ok is false when m is not a mapping
// with string keys; found reports whether the key exists.
func Key(m any, k string) (v any, found bool, ok bool) {
	switch t := m.(type) {
	case map[string]any:
		v, found = t[k]
		return v, found, true
	case map[string]string:
		if s, has := t[k]; has {
			return s, true, true
		}
		return nil, false, true
	case nil:
		return nil, false, false
	}
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false, false
	}
	ev := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
	if !ev.IsValid() {
		return nil, false, true
	}
	return ev.Interface(), true, true
}

func isSequence(v any) bool {
	switch v.(type) {
	case []any:
		return true
	case nil, string, []byte:
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// parseIndex accepts only plain decimal digits.
func parseIndex(seg string) (int, error) {
	if seg == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(seg)
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
