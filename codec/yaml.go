package codec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAML returns the YAML codec. Only the first document of a stream is read;
// use DecodeAll for multi-document input.
func YAML() Codec { return yamlCodec{} }

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("codec yaml: decode: empty document")
		}
		return nil, fmt.Errorf("codec yaml: decode: %w", err)
	}
	return normalize(v), nil
}

func (yamlCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("codec yaml: encode: %w", err)
	}
	return enc.Close()
}

// DecodeAll reads every document of a YAML stream.
func DecodeAll(r io.Reader) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var out []any
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("codec yaml: document %d: %w", len(out), err)
		}
		out = append(out, normalize(v))
	}
}
