package codec

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// JSON returns the JSON codec backed by goccy/go-json. Numbers decode as
// json.Number so integer precision survives until field conversion.
func JSON() Codec { return jsonCodec{} }

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec json: decode: %w", err)
	}
	// reject trailing data after the first value
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, fmt.Errorf("codec json: decode: %w", err)
	}
	return v, nil
}

func (jsonCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("codec json: encode: %w", err)
	}
	return nil
}
