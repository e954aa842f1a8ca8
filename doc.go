// Package skeleton converts raw, loosely structured records (nested
// map[string]any / []any values as produced by JSON or YAML decoders) into
// typed, validated instances described by a schema.
//
// A schema is an ordered table of fields. Each field knows where its raw value
// lives (a key, a "__"-delimited path such as "artists__0__name", or a
// function over the whole record), an optional default and transformer, and
// how to convert the value to its declared type:
//
//	artist := skeleton.Define("Artist").
//		Field("name", skeleton.String(skeleton.WithMapping("artist__name"))).
//		Field("formed", skeleton.Date("%Y-%m-%d")).
//		MustBuild()
//
//	in, err := artist.Convert(ctx, raw)
//	name := in.String("name")
//	out := in.ToPrimitive()
//
// Error model:
//   - *ValidationError: a resolved value could not be converted to the
//     field's type (field name, kind, value, cause, JSON Pointer path).
//   - *ResolveError: the record's shape does not match a mapping (missing
//     top-level key, dead-end traversal, bad index).
//   - *ConfigError: an invalid definition, reported by Builder.Build.
//
// The first failure aborts conversion of the whole record.
//
// Subpackages: dsl derives schemas from tagged structs and binds instances
// into them, codec decodes and encodes raw records, schemadef loads
// declarative schema bundles, transform provides reusable transformers and
// jsonschema projects schemas to JSON Schema.
package skeleton
