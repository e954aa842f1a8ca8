// Package jsonschema projects skeleton schemas to JSON Schema documents that
// describe the output of Instance.ToPrimitive.
package jsonschema

import (
	json "github.com/goccy/go-json"

	"github.com/reoring/skeleton"
)

// Draft is the dialect written to the root "$schema" keyword.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Comment     string `json:"$comment,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}

// FromSchema describes the primitive form of instances of s.
func FromSchema(s *skeleton.Schema) *Schema {
	out := object(s)
	out.Schema = Draft
	return out
}

// Marshal renders the projection of s as indented JSON.
func Marshal(s *skeleton.Schema) ([]byte, error) {
	return json.MarshalIndent(FromSchema(s), "", "  ")
}

func object(s *skeleton.Schema) *Schema {
	out := &Schema{
		Title:                s.Name(),
		Type:                 "object",
		Properties:           make(map[string]*Schema, s.Len()),
		AdditionalProperties: false,
	}
	for _, f := range s.Fields() {
		out.Properties[f.Name()] = property(f)
	}
	return out
}

type timeField interface {
	Formatter() string
	Layout() string
}

func property(f skeleton.Field) *Schema {
	var p *Schema
	switch f.Kind() {
	case skeleton.KindString:
		p = &Schema{Type: "string"}
	case skeleton.KindInt:
		p = &Schema{Type: "integer"}
	case skeleton.KindNumeric:
		p = &Schema{Type: "number"}
	case skeleton.KindBool:
		p = &Schema{Type: "boolean"}
	case skeleton.KindDecimal:
		p = &Schema{Type: "string", Format: "decimal"}
	case skeleton.KindUUID:
		p = &Schema{Type: "string", Format: "uuid"}
	case skeleton.KindDate, skeleton.KindDatetime:
		p = timeProperty(f)
	case skeleton.KindObject:
		if of, ok := f.(interface{ Schema() *skeleton.Schema }); ok {
			p = object(of.Schema())
		} else {
			p = &Schema{Type: "object"}
		}
	case skeleton.KindList:
		p = &Schema{Type: "array"}
		if lf, ok := f.(interface{ Member() skeleton.Field }); ok && lf.Member() != nil {
			p.Items = property(lf.Member())
		}
		return p
	}
	if d, ok := f.Default(); ok && primitive(d) {
		p.Default = d
	}
	return p
}

func timeProperty(f skeleton.Field) *Schema {
	p := &Schema{Type: "string"}
	tf, ok := f.(timeField)
	if !ok {
		return p
	}
	switch {
	case f.Kind() == skeleton.KindDate && tf.Layout() == "2006-01-02":
		p.Format = "date"
	case f.Kind() == skeleton.KindDatetime && (tf.Layout() == "2006-01-02T15:04:05Z07:00" || tf.Layout() == "2006-01-02T15:04:05.999999999Z07:00"):
		p.Format = "date-time"
	default:
		p.Comment = "format " + tf.Formatter()
	}
	return p
}

func primitive(v any) bool {
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
