package skeleton

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"github.com/shopspring/decimal"
)

// String returns a field converting values to their text representation.
func String(opts ...Option) Field { return &stringField{fieldSpec: newSpec(opts)} }

// Int returns a field parsing base-10 integers into int64.
func Int(opts ...Option) Field { return &intField{fieldSpec: newSpec(opts)} }

// Numeric returns a field parsing floating-point numbers into float64.
func Numeric(opts ...Option) Field { return &numericField{fieldSpec: newSpec(opts)} }

// Float is an alias of Numeric.
func Float(opts ...Option) Field { return Numeric(opts...) }

// Bool returns a field parsing booleans ("true", "0", 1, ...).
func Bool(opts ...Option) Field { return &boolField{fieldSpec: newSpec(opts)} }

// Decimal returns a field parsing arbitrary-precision decimals.
func Decimal(opts ...Option) Field { return &decimalField{fieldSpec: newSpec(opts)} }

// UUID returns a field parsing RFC 4122 UUIDs.
func UUID(opts ...Option) Field { return &uuidField{fieldSpec: newSpec(opts)} }

// Date returns a field parsing values with formatter and truncating the
// result to calendar-date precision. formatter is a strftime pattern such as
// "%Y-%m-%d"; a pattern without '%' is taken as a Go reference layout.
func Date(formatter string, opts ...Option) Field {
	f := &dateField{timeFormat: newTimeFormat(formatter), fieldSpec: newSpec(opts)}
	if f.timeFormat.err != nil {
		f.fail(f.timeFormat.err)
	}
	return f
}

// Datetime returns a field parsing values with formatter, preserving the time
// of day. See Date for the accepted formatter syntax.
func Datetime(formatter string, opts ...Option) Field {
	f := &datetimeField{timeFormat: newTimeFormat(formatter), fieldSpec: newSpec(opts)}
	if f.timeFormat.err != nil {
		f.fail(f.timeFormat.err)
	}
	return f
}

// ---- string ----

type stringField struct{ fieldSpec }

func (f *stringField) Kind() Kind       { return KindString }
func (f *stringField) spec() *fieldSpec { return &f.fieldSpec }
func (f *stringField) clone() Field     { c := *f; return &c }
func (f *stringField) export(v any) any { return exportAny(v) }
func (f *stringField) convert(_ context.Context, v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	return fmt.Sprint(v), nil
}

// ---- int ----

type intField struct{ fieldSpec }

func (f *intField) Kind() Kind       { return KindInt }
func (f *intField) spec() *fieldSpec { return &f.fieldSpec }
func (f *intField) clone() Field     { c := *f; return &c }
func (f *intField) export(v any) any { return exportAny(v) }
func (f *intField) convert(_ context.Context, v any) (any, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return uintToInt64(uint64(t))
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return uintToInt64(t)
	case float32:
		return floatToInt64(float64(t))
	case float64:
		return floatToInt64(t)
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if n, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return n, nil
		}
		fv, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return 0, err
		}
		return floatToInt64(fv)
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
	}
	return 0, invalidType("expected integer or numeric string, got %T", v)
}

func uintToInt64(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("value %d overflows int64", u)
	}
	return int64(u), nil
}

// floatToInt64 truncates toward zero.
func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cannot convert %v to integer", f)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("value %v overflows int64", f)
	}
	return int64(f), nil
}

// ---- numeric ----

type numericField struct{ fieldSpec }

func (f *numericField) Kind() Kind       { return KindNumeric }
func (f *numericField) spec() *fieldSpec { return &f.fieldSpec }
func (f *numericField) clone() Field     { c := *f; return &c }
func (f *numericField) export(v any) any { return exportAny(v) }
func (f *numericField) convert(_ context.Context, v any) (any, error) {
	n, err := toFloat64(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := toInt64(t)
		if err != nil {
			// uint64 beyond int64 still fits a float
			if u, ok := t.(uint64); ok {
				return float64(u), nil
			}
			return 0, err
		}
		return float64(n), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return strconv.ParseFloat(string(t), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	}
	return 0, invalidType("expected number or numeric string, got %T", v)
}

// ---- bool ----

type boolField struct{ fieldSpec }

func (f *boolField) Kind() Kind       { return KindBool }
func (f *boolField) spec() *fieldSpec { return &f.fieldSpec }
func (f *boolField) clone() Field     { c := *f; return &c }
func (f *boolField) export(v any) any { return exportAny(v) }
func (f *boolField) convert(_ context.Context, v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}
		return b, nil
	case json.Number:
		fv, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return nil, err
		}
		return fv != 0, nil
	}
	if fv, err := toFloat64(v); err == nil {
		return fv != 0, nil
	}
	return nil, invalidType("expected boolean, got %T", v)
}

// ---- decimal ----

type decimalField struct{ fieldSpec }

func (f *decimalField) Kind() Kind       { return KindDecimal }
func (f *decimalField) spec() *fieldSpec { return &f.fieldSpec }
func (f *decimalField) clone() Field     { c := *f; return &c }
func (f *decimalField) export(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return exportAny(v)
}
func (f *decimalField) convert(_ context.Context, v any) (any, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case string:
		return parseDecimal(strings.TrimSpace(t))
	case json.Number:
		return parseDecimal(string(t))
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	}
	if n, err := toInt64(v); err == nil {
		return decimal.NewFromInt(n), nil
	}
	return nil, invalidType("expected decimal number or string, got %T", v)
}

func parseDecimal(s string) (any, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ---- uuid ----

type uuidField struct{ fieldSpec }

func (f *uuidField) Kind() Kind       { return KindUUID }
func (f *uuidField) spec() *fieldSpec { return &f.fieldSpec }
func (f *uuidField) clone() Field     { c := *f; return &c }
func (f *uuidField) export(v any) any {
	if u, ok := v.(uuid.UUID); ok {
		return u.String()
	}
	return exportAny(v)
}
func (f *uuidField) convert(_ context.Context, v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		u, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil {
			return nil, invalidFormat(err)
		}
		return u, nil
	case []byte:
		var (
			u   uuid.UUID
			err error
		)
		if len(t) == 16 {
			u, err = uuid.FromBytes(t)
		} else {
			u, err = uuid.ParseBytes(t)
		}
		if err != nil {
			return nil, invalidFormat(err)
		}
		return u, nil
	}
	return nil, invalidType("expected UUID string, got %T", v)
}

// ---- date / datetime ----

// timeFormat keeps the configured pattern and its Go layout.
type timeFormat struct {
	formatter string
	layout    string
	err       error

	// separators counts digit-separator-digit runs in a layout without a
	// fractional second element; -1 when the layout has one.
	separators int
}

func newTimeFormat(formatter string) timeFormat {
	tf := timeFormat{formatter: formatter}
	switch {
	case formatter == "":
		tf.err = fmt.Errorf("%w: empty pattern", ErrInvalidFormatter)
	case strings.ContainsRune(formatter, '%'):
		layout, err := strftime.Layout(formatter)
		if err != nil {
			tf.err = fmt.Errorf("%w: %q: %v", ErrInvalidFormatter, formatter, err)
			return tf
		}
		tf.layout = layout
	default:
		tf.layout = formatter
	}
	tf.separators = -1
	if !hasFraction(tf.layout) {
		tf.separators = separatorRuns(tf.layout)
	}
	return tf
}

// Formatter returns the pattern given at construction.
func (tf timeFormat) Formatter() string { return tf.formatter }

// Layout returns the Go reference layout used for parsing.
func (tf timeFormat) Layout() string { return tf.layout }

func (tf timeFormat) parse(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse(tf.layout, t)
		// time.Parse accepts fractional seconds the layout does not ask for.
		if err != nil || (tf.separators >= 0 && separatorRuns(t) > tf.separators) {
			return time.Time{}, invalidFormat(fmt.Errorf("does not match format %q", tf.formatter))
		}
		return ts, nil
	case []byte:
		return tf.parse(string(t))
	}
	return time.Time{}, invalidType("expected string matching %q, got %T", tf.formatter, v)
}

// hasFraction reports whether layout carries a fractional second element
// (".000", ",999" and the like, not followed by another digit).
func hasFraction(layout string) bool {
	for i := 0; i+1 < len(layout); i++ {
		if layout[i] != '.' && layout[i] != ',' {
			continue
		}
		ch := layout[i+1]
		if ch != '0' && ch != '9' {
			continue
		}
		j := i + 1
		for j < len(layout) && layout[j] == ch {
			j++
		}
		if j == len(layout) || !isDigit(layout[j]) {
			return true
		}
	}
	return false
}

// separatorRuns counts '.' or ',' characters placed between two digits.
func separatorRuns(s string) int {
	n := 0
	for i := 1; i+1 < len(s); i++ {
		if (s[i] == '.' || s[i] == ',') && isDigit(s[i-1]) && isDigit(s[i+1]) {
			n++
		}
	}
	return n
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func (tf timeFormat) export(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(tf.layout)
	}
	return exportAny(v)
}

type dateField struct {
	timeFormat
	fieldSpec
}

func (f *dateField) Kind() Kind       { return KindDate }
func (f *dateField) spec() *fieldSpec { return &f.fieldSpec }
func (f *dateField) clone() Field     { c := *f; return &c }
func (f *dateField) export(v any) any { return f.timeFormat.export(v) }
func (f *dateField) convert(_ context.Context, v any) (any, error) {
	t, err := f.parse(v)
	if err != nil {
		return nil, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}

type datetimeField struct {
	timeFormat
	fieldSpec
}

func (f *datetimeField) Kind() Kind       { return KindDatetime }
func (f *datetimeField) spec() *fieldSpec { return &f.fieldSpec }
func (f *datetimeField) clone() Field     { c := *f; return &c }
func (f *datetimeField) export(v any) any { return f.timeFormat.export(v) }
func (f *datetimeField) convert(_ context.Context, v any) (any, error) {
	t, err := f.parse(v)
	if err != nil {
		return nil, err
	}
	return t, nil
}
