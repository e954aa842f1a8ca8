package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/skeleton"
	"github.com/reoring/skeleton/codec"
	"github.com/reoring/skeleton/jsonschema"
	"github.com/reoring/skeleton/schemadef"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "convert":
		convertCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "skeleton CLI\n\nUsage:\n  skeleton convert -defs defs.yaml -schema Album [-in rec.json] [-from json|yaml|msgpack] [-to json|yaml|msgpack] [-o out]\n  skeleton inspect -defs defs.yaml [-schema Album] [-jsonschema]\n\nNotes:\n  - -in and -o default to stdin and stdout; formats default to the file extension, then json.\n  - A top-level list in the input converts every element.")
}

type convertOptions struct {
	defs   string
	schema string
	in     string
	from   string
	to     string
	out    string
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var o convertOptions
	fs.StringVar(&o.defs, "defs", "", "schema bundle (YAML or JSON)")
	fs.StringVar(&o.schema, "schema", "", "schema name within the bundle")
	fs.StringVar(&o.in, "in", "-", "input record file, - for stdin")
	fs.StringVar(&o.from, "from", "", "input format: "+strings.Join(codec.Names(), ", "))
	fs.StringVar(&o.to, "to", "", "output format (defaults to -o extension, then json)")
	fs.StringVar(&o.out, "o", "-", "output file, - for stdout")
	_ = fs.Parse(args)
	if o.defs == "" || o.schema == "" {
		fs.Usage()
		os.Exit(2)
	}

	bundle, err := schemadef.LoadFile(o.defs)
	if err != nil {
		fatalf("loading definitions: %v", err)
	}
	s, ok := bundle.Schema(o.schema)
	if !ok {
		fatalf("schema %q not found in %s (have: %s)", o.schema, o.defs, strings.Join(bundle.Names(), ", "))
	}
	dec, err := pickCodec(o.from, o.in)
	if err != nil {
		fatalf("input format: %v", err)
	}
	enc, err := pickCodec(o.to, o.out)
	if err != nil {
		fatalf("output format: %v", err)
	}

	r := io.Reader(os.Stdin)
	if o.in != "-" {
		f, err := os.Open(o.in)
		if err != nil {
			fatalf("opening input: %v", err)
		}
		defer f.Close()
		r = f
	}
	run := func(w io.Writer) error { return convert(context.Background(), s, dec, enc, r, w) }
	if o.out == "-" {
		if err := run(os.Stdout); err != nil {
			fatalf("%v", err)
		}
		return
	}
	if err := writeFile(o.out, run); err != nil {
		fatalf("%v", err)
	}
}

// writeFile creates path (and its directory), hands it to fn and closes it.
// A failed close is reported like any other write error.
func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

// pickCodec prefers the explicit format, then the file extension, then JSON.
func pickCodec(format, file string) (codec.Codec, error) {
	if format != "" {
		return codec.ByName(format)
	}
	if file != "" && file != "-" && filepath.Ext(file) != "" {
		return codec.ForPath(file)
	}
	return codec.JSON(), nil
}

// convert decodes one raw value and writes the exported result. A list
// converts element-wise; the first failing element aborts with its index.
func convert(ctx context.Context, s *skeleton.Schema, dec, enc codec.Codec, r io.Reader, w io.Writer) error {
	raw, err := dec.Decode(r)
	if err != nil {
		return err
	}
	if items, ok := raw.([]any); ok {
		out := make([]any, 0, len(items))
		for i, it := range items {
			in, err := s.Convert(ctx, it)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			out = append(out, in.ToPrimitive())
		}
		return enc.Encode(w, out)
	}
	in, err := s.Convert(ctx, raw)
	if err != nil {
		return err
	}
	return enc.Encode(w, in.ToPrimitive())
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var defs, name string
	var asJSONSchema bool
	fs.StringVar(&defs, "defs", "", "schema bundle (YAML or JSON)")
	fs.StringVar(&name, "schema", "", "only show this schema")
	fs.BoolVar(&asJSONSchema, "jsonschema", false, "print JSON Schema instead of the field table")
	_ = fs.Parse(args)
	if defs == "" {
		fs.Usage()
		os.Exit(2)
	}
	bundle, err := schemadef.LoadFile(defs)
	if err != nil {
		fatalf("loading definitions: %v", err)
	}
	if err := inspect(bundle, name, asJSONSchema, os.Stdout); err != nil {
		fatalf("%v", err)
	}
}

func inspect(b *schemadef.Bundle, only string, asJSONSchema bool, w io.Writer) error {
	names := b.Names()
	if only != "" {
		if _, ok := b.Schema(only); !ok {
			return fmt.Errorf("schema %q not found", only)
		}
		names = []string{only}
	}
	for _, n := range names {
		s, _ := b.Schema(n)
		if asJSONSchema {
			out, err := jsonschema.Marshal(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n", out)
			continue
		}
		describe(w, s)
	}
	return nil
}

func describe(w io.Writer, s *skeleton.Schema) {
	fmt.Fprintf(w, "%s (%d fields, delimiter %q)\n", s.Name(), s.Len(), s.Delimiter())
	for _, attr := range s.Attrs() {
		f, _ := s.Field(attr)
		line := fmt.Sprintf("  %-16s %-14s", attr, f.Kind())
		if f.Name() != attr {
			line += " name=" + f.Name()
		}
		if m := f.Mapping(); m != "" {
			line += " mapping=" + m
		}
		if d, ok := f.Default(); ok {
			line += fmt.Sprintf(" default=%v", d)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
