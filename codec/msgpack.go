package codec

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack returns the MessagePack codec. Integers decode as int64 or uint64
// and floats as float64.
func Msgpack() Codec { return msgpackCodec{} }

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }

func (msgpackCodec) Decode(r io.Reader) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("codec msgpack: decode: %w", err)
	}
	return normalize(v), nil
}

func (msgpackCodec) Encode(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("codec msgpack: encode: %w", err)
	}
	return nil
}
