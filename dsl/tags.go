package dsl

import (
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"
)

const tagName = "skeleton"

// fieldTag is the parsed form of a skeleton struct tag.
type fieldTag struct {
	name       string
	mapping    string
	format     string
	def        string
	hasDefault bool
	date       bool
	transforms []string
}

func parseTag(sf reflect.StructField) fieldTag {
	var ft fieldTag
	raw, ok := sf.Tag.Lookup(tagName)
	if !ok {
		return ft
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		k, v, _ := strings.Cut(p, "=")
		switch k {
		case "name":
			ft.name = v
		case "mapping":
			ft.mapping = v
		case "format":
			ft.format = v
		case "default":
			ft.def, ft.hasDefault = v, true
		case "date":
			ft.date = true
		case "transform":
			for _, t := range strings.Split(v, "|") {
				if t = strings.TrimSpace(t); t != "" {
					ft.transforms = append(ft.transforms, t)
				}
			}
		case "-":
			ft.name = "-"
		}
	}
	return ft
}

// ResolveStructKey returns the attribute name of a struct field.
// Priority: skeleton:"name=..." > json tag name > snake_case field name; "-"
// disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if ft := parseTag(sf); ft.name != "" {
		return ft.name
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return inflect.Underscore(sf.Name)
}
