package skeleton

import "strings"

// Kind enumerates the closed set of field variants.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindNumeric
	KindDate
	KindDatetime
	KindBool
	KindDecimal
	KindUUID
	KindObject
	KindList
)

var kindNames = [...]string{
	KindString:   "StringField",
	KindInt:      "IntField",
	KindNumeric:  "NumericField",
	KindDate:     "DateField",
	KindDatetime: "DatetimeField",
	KindBool:     "BoolField",
	KindDecimal:  "DecimalField",
	KindUUID:     "UUIDField",
	KindObject:   "ObjectField",
	KindList:     "ListField",
}

// String returns the field kind label used in error messages.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Field"
}

// Composite reports whether fields of this kind wrap other fields or schemas.
func (k Kind) Composite() bool { return k == KindObject || k == KindList }

// ParseKind maps a short kind name ("string", "int", "float", "date", ...) to
// a Kind. Matching is case-insensitive and also accepts the labels returned by
// Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "stringfield":
		return KindString, true
	case "int", "integer", "intfield":
		return KindInt, true
	case "numeric", "float", "number", "numericfield", "floatfield":
		return KindNumeric, true
	case "date", "datefield":
		return KindDate, true
	case "datetime", "datetimefield":
		return KindDatetime, true
	case "bool", "boolean", "boolfield":
		return KindBool, true
	case "decimal", "decimalfield":
		return KindDecimal, true
	case "uuid", "uuidfield":
		return KindUUID, true
	case "object", "objectfield":
		return KindObject, true
	case "list", "array", "listfield":
		return KindList, true
	}
	return 0, false
}
