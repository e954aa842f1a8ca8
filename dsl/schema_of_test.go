package dsl_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/dsl"
)

type Base struct {
	Ref string
}

type withEmbedded struct {
	Base
	ReleaseDate string
	hidden      string
}

type recursive struct {
	Name     string
	Children []recursive
}

type unsupported struct {
	Meta map[string]string
}

type badTransform struct {
	Name string `skeleton:"transform=reverse"`
}

func TestSchemaOf_Layout(t *testing.T) {
	s, err := dsl.SchemaOf[withEmbedded]()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if diff := cmp.Diff([]string{"ref", "release_date"}, s.Attrs()); diff != "" {
		t.Fatalf("attrs (-want +got):\n%s", diff)
	}
	if s.Name() != "withEmbedded" {
		t.Fatalf("unexpected name %q", s.Name())
	}
	again, _ := dsl.SchemaOf[*withEmbedded]()
	if again != s {
		t.Fatalf("schemas must be cached per type")
	}
}

func TestSchemaOf_Kinds(t *testing.T) {
	s := dsl.MustSchemaOf[albumBind]()
	want := map[string]skeleton.Kind{
		"id":       skeleton.KindUUID,
		"title":    skeleton.KindString,
		"price":    skeleton.KindDecimal,
		"rating":   skeleton.KindNumeric,
		"artist":   skeleton.KindObject,
		"tracks":   skeleton.KindList,
		"tags":     skeleton.KindList,
		"released": skeleton.KindDatetime,
	}
	for attr, k := range want {
		f, ok := s.Field(attr)
		if !ok || f.Kind() != k {
			t.Fatalf("%s: want %s, got %v", attr, k, f)
		}
	}
	artist, _ := s.Field("artist")
	if nested, _ := artist.(interface{ Schema() *skeleton.Schema }); nested == nil || nested.Schema().Len() != 3 {
		t.Fatalf("nested schema not derived")
	}
}

func TestSchemaOf_Errors(t *testing.T) {
	if _, err := dsl.SchemaOf[recursive](); !errors.Is(err, dsl.ErrRecursiveType) {
		t.Fatalf("want ErrRecursiveType, got %v", err)
	}
	if _, err := dsl.SchemaOf[unsupported](); !errors.Is(err, dsl.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
	if _, err := dsl.SchemaOf[int](); !errors.Is(err, dsl.ErrNotStruct) {
		t.Fatalf("want ErrNotStruct, got %v", err)
	}
	_, err := dsl.SchemaOf[badTransform]()
	var ce *skeleton.ConfigError
	if !errors.As(err, &ce) || ce.Field != "name" {
		t.Fatalf("want ConfigError for name, got %v", err)
	}
}
