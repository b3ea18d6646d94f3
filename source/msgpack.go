package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrMapKey is returned for a MessagePack map whose key is not a string.
var ErrMapKey = errors.New("source: map key is not a string")

// MsgpackBytes decodes a single MessagePack value into the tree shape
// JSONBytes produces. Integers become int64 or uint64, floats float64 and
// binary values strings.
func MsgpackBytes(b []byte) (any, error) {
	return MsgpackReader(bytes.NewReader(b))
}

// MsgpackReader is MsgpackBytes over an io.Reader.
func MsgpackReader(r io.Reader) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	if _, err := dec.DecodeInterfaceLoose(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return msgpackTree(v, "", 0)
}

func msgpackTree(v any, ptr string, depth int) (any, error) {
	if depth > DefaultMaxNesting {
		return nil, fmt.Errorf("%w at %s", ErrTooDeep, ptr)
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			c, err := msgpackTree(vv, ptr+"/"+k, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w at %s: %v", ErrMapKey, ptr, k)
			}
			c, err := msgpackTree(vv, ptr+"/"+ks, depth+1)
			if err != nil {
				return nil, err
			}
			out[ks] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			c, err := msgpackTree(vv, fmt.Sprintf("%s/%d", ptr, i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case []byte:
		return string(t), nil
	}
	return v, nil
}
