package fsevent

// ValueKind identifies which field of a Value is populated.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBinary
	ValueUint32
	ValueUint64
	ValueSequence
	ValueMap
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueBinary:
		return "binary"
	case ValueUint32:
		return "uint32"
	case ValueUint64:
		return "uint64"
	case ValueSequence:
		return "sequence"
	case ValueMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the xattr value sum type described in spec.md §3: a string, a
// length-prefixed binary blob, an unsigned 32 or 64 bit integer, a sequence
// of Value, or a string-keyed map of Value. Exactly one field is valid,
// selected by Kind.
type Value struct {
	Kind ValueKind

	Str    string
	Binary []byte
	U32    uint32
	U64    uint64
	Seq    []Value
	Map    *Xattrs
}

// NewString builds a string-kind Value.
func NewString(s string) Value { return Value{Kind: ValueString, Str: s} }

// NewBinary builds a binary-kind Value; the byte length is the value's
// explicit length per spec.md §3.
func NewBinary(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: ValueBinary, Binary: cp}
}

// NewUint32 builds a uint32-kind Value.
func NewUint32(v uint32) Value { return Value{Kind: ValueUint32, U32: v} }

// NewUint64 builds a uint64-kind Value.
func NewUint64(v uint64) Value { return Value{Kind: ValueUint64, U64: v} }

// NewSequence builds a sequence-kind Value.
func NewSequence(values ...Value) Value {
	cp := make([]Value, len(values))
	for i, v := range values {
		cp[i] = v.Clone()
	}
	return Value{Kind: ValueSequence, Seq: cp}
}

// NewMap builds a map-kind Value backed by an Xattrs map.
func NewMap(m *Xattrs) Value {
	return Value{Kind: ValueMap, Map: m.Clone()}
}

// Clone deep-copies a Value so it can cross a batch boundary independently
// of whatever arena or borrowed buffer produced it.
func (v Value) Clone() Value {
	switch v.Kind {
	case ValueBinary:
		return NewBinary(v.Binary)
	case ValueSequence:
		out := make([]Value, len(v.Seq))
		for i, e := range v.Seq {
			out[i] = e.Clone()
		}
		return Value{Kind: ValueSequence, Seq: out}
	case ValueMap:
		return Value{Kind: ValueMap, Map: v.Map.Clone()}
	default:
		return v
	}
}

// Equal reports whether two Values represent the same data, recursing into
// sequences and maps. Used by round-trip tests (spec.md §8).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueString:
		return v.Str == o.Str
	case ValueBinary:
		if len(v.Binary) != len(o.Binary) {
			return false
		}
		for i := range v.Binary {
			if v.Binary[i] != o.Binary[i] {
				return false
			}
		}
		return true
	case ValueUint32:
		return v.U32 == o.U32
	case ValueUint64:
		return v.U64 == o.U64
	case ValueSequence:
		if len(v.Seq) != len(o.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(o.Seq[i]) {
				return false
			}
		}
		return true
	case ValueMap:
		return v.Map.Equal(o.Map)
	}
	return false
}
