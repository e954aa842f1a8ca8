// Package codec reads raw records from and writes exported records to JSON,
// YAML and MessagePack.
//
// Decoded records use the shapes the conversion engine understands:
// map[string]any for objects, []any for sequences and scalars as produced by
// the underlying decoder (JSON numbers arrive as json.Number).
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownFormat is returned by ByName and ForPath.
var ErrUnknownFormat = errors.New("codec: unknown format")

// Codec decodes one raw record from a reader and encodes one value to a
// writer.
type Codec interface {
	Name() string
	Decode(r io.Reader) (any, error)
	Encode(w io.Writer, v any) error
}

var byName = map[string]func() Codec{
	"json":    JSON,
	"yaml":    YAML,
	"yml":     YAML,
	"msgpack": Msgpack,
	"mpk":     Msgpack,
}

// ByName returns the codec registered under name (json, yaml, yml, msgpack,
// mpk), case-insensitively.
func ByName(name string) (Codec, error) {
	if f, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// ForPath picks a codec from the file extension of p.
func ForPath(p string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(p), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, p)
	}
	return ByName(ext)
}

// Names lists the accepted format names.
func Names() []string {
	out := make([]string, 0, len(byName))
	for k := range byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DecodeBytes is a convenience wrapper around c.Decode.
func DecodeBytes(c Codec, b []byte) (any, error) { return c.Decode(bytes.NewReader(b)) }

// EncodeBytes is a convenience wrapper around c.Encode.
func EncodeBytes(c Codec, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalize rewrites decoder output into string-keyed maps recursively.
// Non-string keys are rendered with fmt.Sprint.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = normalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalize(t[i])
		}
		return arr
	default:
		return v
	}
}
