package codec_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/codec"
)

func TestByNameAndForPath(t *testing.T) {
	for in, want := range map[string]string{"json": "json", "YAML": "yaml", "yml": "yaml", "msgpack": "msgpack", "mpk": "msgpack"} {
		c, err := codec.ByName(in)
		if err != nil || c.Name() != want {
			t.Fatalf("%s: want %s, got %v %v", in, want, c, err)
		}
	}
	c, err := codec.ForPath("records/album.yml")
	if err != nil || c.Name() != "yaml" {
		t.Fatalf("ForPath: %v %v", c, err)
	}
	if _, err := codec.ForPath("album"); !errors.Is(err, codec.ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
	if _, err := codec.ByName("toml"); !errors.Is(err, codec.ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
}

func TestJSON_DecodeUsesNumbers(t *testing.T) {
	v, err := codec.DecodeBytes(codec.JSON(), []byte(`{"plays": 9007199254740993, "tags": ["a"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(map[string]any)
	if n, ok := m["plays"].(json.Number); !ok || n.String() != "9007199254740993" {
		t.Fatalf("want json.Number, got %T %v", m["plays"], m["plays"])
	}

	s := skeleton.Define("Stats").Field("plays", skeleton.Int()).MustBuild()
	in, err := s.Convert(context.Background(), v)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := in.Int("plays"); got != 9007199254740993 {
		t.Fatalf("precision lost: %d", got)
	}
}

func TestJSON_RejectsTrailingData(t *testing.T) {
	if _, err := codec.DecodeBytes(codec.JSON(), []byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := codec.DecodeBytes(codec.JSON(), []byte(`{"a":`)); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestYAML_NormalizesKeys(t *testing.T) {
	v, err := codec.DecodeBytes(codec.YAML(), []byte("artist:\n  name: Coltrane Motion\ncounts:\n  1: one\n  2: two\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"artist": map[string]any{"name": "Coltrane Motion"},
		"counts": map[string]any{"1": "one", "2": "two"},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestYAML_DecodeAll(t *testing.T) {
	docs, err := codec.DecodeAll(strings.NewReader("name: a\n---\nname: b\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	rec := map[string]any{
		"title":  "Rest Easy",
		"artist": map[string]any{"name": "Coltrane Motion"},
		"tracks": []any{"Songs", "Broken"},
		"ok":     true,
	}
	for _, c := range []codec.Codec{codec.JSON(), codec.YAML(), codec.Msgpack()} {
		var buf bytes.Buffer
		if err := c.Encode(&buf, rec); err != nil {
			t.Fatalf("%s encode: %v", c.Name(), err)
		}
		got, err := c.Decode(&buf)
		if err != nil {
			t.Fatalf("%s decode: %v", c.Name(), err)
		}
		if diff := cmp.Diff(rec, got); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", c.Name(), diff)
		}
	}
}

func TestMsgpack_Integers(t *testing.T) {
	b, err := codec.EncodeBytes(codec.Msgpack(), map[string]any{"n": int64(3), "f": 1.5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := codec.DecodeBytes(codec.Msgpack(), b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"n": int64(3), "f": 1.5}, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
