package dsl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/dsl"
)

type artistBind struct {
	Name   string    `skeleton:"mapping=artist__name,transform=trim"`
	Formed time.Time `skeleton:"date,format=%Y-%m-%d"`
	Genre  string    `json:"genre_name" skeleton:"default=unknown"`
	Secret string    `json:"-"`
}

type trackBind struct {
	Title   string
	Seconds int32
}

type albumBind struct {
	ID       uuid.UUID `json:"id"`
	Title    string
	Price    decimal.Decimal
	Rating   *float64
	Artist   artistBind
	Tracks   []trackBind
	Tags     []string
	Released time.Time `skeleton:"format=%Y-%m-%d %H:%M:%S"`
}

func TestConvert_Basic_KeyResolution(t *testing.T) {
	raw := map[string]any{
		"artist": map[string]any{"name": " Coltrane Motion "},
		"formed": "2005-01-01",
	}
	a, err := dsl.Convert[artistBind](context.Background(), raw)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := artistBind{Name: "Coltrane Motion", Formed: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), Genre: "unknown"}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestConvert_Nested(t *testing.T) {
	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	raw := map[string]any{
		"id":       id,
		"title":    "Rest Easy",
		"price":    "9.99",
		"rating":   "4.5",
		"artist":   map[string]any{"artist": map[string]any{"name": "Coltrane Motion"}, "formed": "2005-01-01", "genre_name": "indie"},
		"tracks":   []any{map[string]any{"title": "Songs", "seconds": "181"}, map[string]any{"title": "Broken", "seconds": 200}},
		"tags":     []any{"indie", "pop"},
		"released": "2007-03-06 00:00:00",
	}
	a, err := dsl.Convert[albumBind](context.Background(), raw)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	rating := 4.5
	want := albumBind{
		ID:       uuid.MustParse(id),
		Title:    "Rest Easy",
		Price:    decimal.RequireFromString("9.99"),
		Rating:   &rating,
		Artist:   artistBind{Name: "Coltrane Motion", Formed: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), Genre: "indie"},
		Tracks:   []trackBind{{Title: "Songs", Seconds: 181}, {Title: "Broken", Seconds: 200}},
		Tags:     []string{"indie", "pop"},
		Released: time.Date(2007, 3, 6, 0, 0, 0, 0, time.UTC),
	}
	opt := cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })
	if diff := cmp.Diff(want, a, opt); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestConvert_ValidationErrorPath(t *testing.T) {
	raw := map[string]any{
		"artist": map[string]any{"artist": map[string]any{"name": "x"}, "formed": "2005-01-01"},
		"tracks": []any{map[string]any{"title": "Songs", "seconds": "long"}},
	}
	_, err := dsl.Convert[albumBind](context.Background(), raw)
	ve, ok := skeleton.AsValidationError(err)
	if !ok || ve.Path != "/tracks/0/seconds" {
		t.Fatalf("want ValidationError at /tracks/0/seconds, got %v", err)
	}
}

func TestBind_Overflow(t *testing.T) {
	s := dsl.MustSchemaOf[trackBind]()
	in, err := s.Convert(context.Background(), map[string]any{"title": "x", "seconds": "9999999999"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	_, err = dsl.Bind[trackBind](in)
	var be *dsl.BindError
	if !errors.As(err, &be) || be.Path != "/seconds" {
		t.Fatalf("want BindError at /seconds, got %v", err)
	}
}

func TestBind_NilInstance(t *testing.T) {
	v, err := dsl.Bind[trackBind](nil)
	if err != nil || v != (trackBind{}) {
		t.Fatalf("want zero value, got %+v %v", v, err)
	}
}

func TestFrom_ExportsStruct(t *testing.T) {
	in, err := dsl.From(trackBind{Title: "Songs", Seconds: 181})
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	want := map[string]any{"title": "Songs", "seconds": int32(181)}
	if diff := cmp.Diff(want, in.ToPrimitive()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	back, err := dsl.Bind[trackBind](in)
	if err != nil || back.Seconds != 181 {
		t.Fatalf("bind back: %+v %v", back, err)
	}
}
