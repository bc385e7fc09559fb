package fsevent

import (
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v2"
)

func decodeHexId(s string) (Id, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidData)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Id(b), nil
}

// binaryValueTag is the YAML tag for binary scalars. Integer widths, which a
// plain YAML number cannot carry, are kept by wrapping the value in
// uint32Wrapper/uint64Wrapper (see valueToInterface).
const (
	binaryValueTag = "!!binary"
)

func valueToInterface(v Value) (interface{}, error) {
	switch v.Kind {
	case ValueString:
		return v.Str, nil
	case ValueBinary:
		// yaml.v2 marshals []byte using the !!binary tag (base64) and
		// round-trips it back to []byte on decode, so this is lossless.
		return v.Binary, nil
	case ValueUint32:
		return uint32Wrapper{V: v.U32}, nil
	case ValueUint64:
		return uint64Wrapper{V: v.U64}, nil
	case ValueSequence:
		out := make([]interface{}, len(v.Seq))
		for i, e := range v.Seq {
			iv, err := valueToInterface(e)
			if err != nil {
				return nil, err
			}
			out[i] = iv
		}
		return out, nil
	case ValueMap:
		var ms yaml.MapSlice
		for _, k := range v.Map.Keys() {
			sub, _ := v.Map.Get(k)
			iv, err := valueToInterface(sub)
			if err != nil {
				return nil, err
			}
			ms = append(ms, yaml.MapItem{Key: k, Value: iv})
		}
		return ms, nil
	default:
		return nil, fmt.Errorf("%w: unknown value kind %v", ErrInvalidData, v.Kind)
	}
}

// uint32Wrapper/uint64Wrapper tag a bare integer with its intended width so
// interfaceToValue can tell a u32 request apart from a u64 one after a
// YAML round-trip (plain YAML integers don't carry a Go width).
type uint32Wrapper struct {
	V uint32 `yaml:"u32"`
}

type uint64Wrapper struct {
	V uint64 `yaml:"u64"`
}

func interfaceToValue(v interface{}) (Value, error) {
	switch t := v.(type) {
	case string:
		return NewString(t), nil
	case []byte:
		return NewBinary(t), nil
	case int:
		return NewUint64(uint64(t)), nil
	case int64:
		return NewUint64(uint64(t)), nil
	case uint64:
		return NewUint64(t), nil
	case uint32Wrapper:
		return NewUint32(t.V), nil
	case uint64Wrapper:
		return NewUint64(t.V), nil
	case []interface{}:
		seq := make([]Value, len(t))
		for i, e := range t {
			sv, err := interfaceToValue(e)
			if err != nil {
				return Value{}, err
			}
			seq[i] = sv
		}
		return Value{Kind: ValueSequence, Seq: seq}, nil
	case yaml.MapSlice:
		if u32, ok := mapSliceAsUint32(t); ok {
			return NewUint32(u32), nil
		}
		if u64, ok := mapSliceAsUint64(t); ok {
			return NewUint64(u64), nil
		}
		m := NewXattrs()
		for _, item := range t {
			key, ok := item.Key.(string)
			if !ok {
				return Value{}, fmt.Errorf("%w: non-string map key", ErrInvalidData)
			}
			sv, err := interfaceToValue(item.Value)
			if err != nil {
				return Value{}, err
			}
			m.Set(key, sv)
		}
		return NewMap(m), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported yaml scalar %T", ErrInvalidData, v)
	}
}

func mapSliceAsUint32(ms yaml.MapSlice) (uint32, bool) {
	if len(ms) != 1 {
		return 0, false
	}
	if key, ok := ms[0].Key.(string); !ok || key != "u32" {
		return 0, false
	}
	switch n := ms[0].Value.(type) {
	case int:
		return uint32(n), true
	case int64:
		return uint32(n), true
	}
	return 0, false
}

func mapSliceAsUint64(ms yaml.MapSlice) (uint64, bool) {
	if len(ms) != 1 {
		return 0, false
	}
	if key, ok := ms[0].Key.(string); !ok || key != "u64" {
		return 0, false
	}
	switch n := ms[0].Value.(type) {
	case int:
		return uint64(n), true
	case int64:
		return uint64(n), true
	}
	return 0, false
}
