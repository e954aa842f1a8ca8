// Package dsl derives skeleton schemas from tagged Go structs and binds
// converted instances back into struct values.
//
// Field keys
//   - skeleton:"name=..." wins, then the json tag name, then the Go field name
//     in snake_case ("ReleaseDate" -> "release_date"). "-" skips the field.
//
// Tag options (comma separated, in the skeleton tag)
//   - mapping=artist__name: source mapping (key or "__" path).
//   - format=%Y-%m-%d: formatter for time.Time fields.
//   - date: convert a time.Time field with calendar-date precision.
//   - default=...: default used when the source key is absent; converted like
//     any resolved value.
//   - transform=trim|lower: named transformers from package transform.
//
// Go types map to field kinds as follows: string -> String, signed and
// unsigned integers -> Int, floats -> Numeric, bool -> Bool, time.Time ->
// Datetime (or Date), decimal.Decimal -> Decimal, uuid.UUID -> UUID, struct
// and *struct -> Object, slices -> List of the element kind. Schemas are
// derived once per type and cached. Self-referencing types are rejected.
//
// Example
//
//	type Artist struct {
//	    Name   string    `skeleton:"mapping=artist__name"`
//	    Formed time.Time `skeleton:"date,format=%Y-%m-%d"`
//	}
//
//	a, err := dsl.Convert[Artist](ctx, raw)
package dsl
