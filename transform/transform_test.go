package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/transform"
)

func TestStringTransformers(t *testing.T) {
	cases := []struct {
		name string
		fn   skeleton.Transformer
		in   any
		want any
	}{
		{"trim", transform.Trim(), "  x y ", "x y"},
		{"lower", transform.Lower(), "MiXeD", "mixed"},
		{"upper", transform.Upper(), "MiXeD", "MIXED"},
		{"title", transform.Title(), "coltrane motion", "Coltrane Motion"},
		{"empty", transform.EmptyToNull(), "   ", nil},
		{"nonempty", transform.EmptyToNull(), "a", "a"},
		{"split", transform.Split(","), "a, b ,c", []any{"a", "b", "c"}},
		{"split empty", transform.Split(","), "", []any{}},
		{"non-string", transform.Upper(), 12, 12},
		{"nil", transform.Trim(), nil, nil},
	}
	for _, tc := range cases {
		got, err := tc.fn(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestChain(t *testing.T) {
	fn := transform.Chain(transform.Trim(), transform.EmptyToNull(), transform.Upper())
	if got, _ := fn("  a "); got != "A" {
		t.Fatalf("unexpected %v", got)
	}
	if got, _ := fn("   "); got != nil {
		t.Fatalf("want nil, got %v", got)
	}
}

func TestLookup(t *testing.T) {
	fn, err := transform.LookupChain([]string{"trim", "split:;"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got, _ := fn(" a;b ")
	if diff := cmp.Diff([]any{"a", "b"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if _, err := transform.Lookup("reverse"); !errors.Is(err, transform.ErrUnknown) {
		t.Fatalf("want ErrUnknown, got %v", err)
	}
	if _, err := transform.Lookup("trim:x"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestRegister(t *testing.T) {
	transform.Register("prefix", func(arg string) (skeleton.Transformer, error) {
		return func(v any) (any, error) { return arg + v.(string), nil }, nil
	})
	fn, err := transform.Lookup("prefix:#")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got, _ := fn("1"); got != "#1" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestWithSchema(t *testing.T) {
	s := skeleton.Define("Album").
		Field("tags", skeleton.List(skeleton.String(), skeleton.WithTransformer(transform.Split(",")))).
		Field("title", skeleton.String(skeleton.WithTransformer(transform.Chain(transform.Trim(), transform.Title())))).
		MustBuild()
	in, err := s.Convert(context.Background(), map[string]any{"tags": "indie, pop", "title": " rest easy "})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if diff := cmp.Diff([]any{"indie", "pop"}, in.List("tags")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if got := in.String("title"); got != "Rest Easy" {
		t.Fatalf("unexpected title %q", got)
	}
}
