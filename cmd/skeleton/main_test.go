package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/codec"
	"github.com/reoring/skeleton/schemadef"
)

const defs = `
schemas:
  - name: Track
    fields:
      - {attr: title, kind: string}
      - {attr: seconds, kind: int, default: 0}
`

func load(t *testing.T) *schemadef.Bundle {
	t.Helper()
	b, err := schemadef.Load([]byte(defs))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return b
}

func TestConvert_ListOfRecords(t *testing.T) {
	s, _ := load(t).Schema("Track")
	var out bytes.Buffer
	in := strings.NewReader("- {title: Songs, seconds: '181'}\n- {title: Broken}\n")
	if err := convert(context.Background(), s, codec.YAML(), codec.JSON(), in, &out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	// JSON is read back through YAML to get plain ints
	got, err := codec.DecodeBytes(codec.YAML(), out.Bytes())
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := []any{
		map[string]any{"title": "Songs", "seconds": 181},
		map[string]any{"title": "Broken", "seconds": 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestConvert_ReportsRecordIndex(t *testing.T) {
	s, _ := load(t).Schema("Track")
	in := strings.NewReader(`[{"title":"a","seconds":1},{"title":"b","seconds":"x"}]`)
	err := convert(context.Background(), s, codec.JSON(), codec.JSON(), in, &bytes.Buffer{})
	if err == nil || !strings.HasPrefix(err.Error(), "record 1: ") {
		t.Fatalf("want record index in error, got %v", err)
	}
	if _, ok := skeleton.AsValidationError(err); !ok {
		t.Fatalf("want wrapped ValidationError, got %v", err)
	}
}

func TestPickCodec(t *testing.T) {
	for _, tc := range []struct{ format, file, want string }{
		{"", "-", "json"},
		{"", "out.yaml", "yaml"},
		{"msgpack", "out.yaml", "msgpack"},
		{"", "noext", "json"},
	} {
		c, err := pickCodec(tc.format, tc.file)
		if err != nil || c.Name() != tc.want {
			t.Fatalf("%+v: got %v %v", tc, c, err)
		}
	}
}

func TestInspect(t *testing.T) {
	var out bytes.Buffer
	if err := inspect(load(t), "", false, &out); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	want := "Track (2 fields, delimiter \"__\")\n" +
		"  title            StringField\n" +
		"  seconds          IntField       default=0\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if err := inspect(load(t), "Album", false, &out); err == nil {
		t.Fatalf("expected error for unknown schema")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "out.json")
	if err := writeFile(out, func(w io.Writer) error {
		_, err := io.WriteString(w, "{}\n")
		return err
	}); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil || string(b) != "{}\n" {
		t.Fatalf("unexpected output %q (%v)", b, err)
	}

	failed := errors.New("encode failed")
	if err := writeFile(out, func(io.Writer) error { return failed }); !errors.Is(err, failed) {
		t.Fatalf("want writer error, got %v", err)
	}

	// a regular file where a directory is expected
	if err := writeFile(filepath.Join(out, "x.json"), func(io.Writer) error { return nil }); err == nil {
		t.Fatalf("expected error creating output under a file")
	}
}
