package fsevent

// EnrichKey is the well-known xattr key carrying an unresolved enrichment
// request (spec.md §3).
const EnrichKey = "rbh-fsevents"

// Xattrs is a string-keyed map of Value with deterministic iteration order,
// tracked via a parallel key slice so two runs over the same event produce
// byte-identical serialization (the stdout sink writes one YAML document per
// event; rclone's own config/list output takes the same care to stay
// deterministic, see fs/config/configmap in the teacher).
type Xattrs struct {
	keys   []string
	values map[string]Value
}

// NewXattrs returns an empty Xattrs map.
func NewXattrs() *Xattrs {
	return &Xattrs{values: make(map[string]Value)}
}

// Len returns the number of keys currently stored.
func (x *Xattrs) Len() int {
	if x == nil {
		return 0
	}
	return len(x.keys)
}

// Get looks up a key.
func (x *Xattrs) Get(key string) (Value, bool) {
	if x == nil {
		return Value{}, false
	}
	v, ok := x.values[key]
	return v, ok
}

// Has reports whether key is present.
func (x *Xattrs) Has(key string) bool {
	_, ok := x.Get(key)
	return ok
}

// Set inserts or overwrites key, preserving the original insertion position
// on overwrite.
func (x *Xattrs) Set(key string, v Value) {
	if _, exists := x.values[key]; !exists {
		x.keys = append(x.keys, key)
	}
	x.values[key] = v
}

// Delete removes key, if present.
func (x *Xattrs) Delete(key string) {
	if _, ok := x.values[key]; !ok {
		return
	}
	delete(x.values, key)
	for i, k := range x.keys {
		if k == key {
			x.keys = append(x.keys[:i], x.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (x *Xattrs) Keys() []string {
	if x == nil {
		return nil
	}
	return x.keys
}

// Clone deep-copies the map.
func (x *Xattrs) Clone() *Xattrs {
	if x == nil {
		return nil
	}
	out := &Xattrs{
		keys:   append([]string(nil), x.keys...),
		values: make(map[string]Value, len(x.values)),
	}
	for k, v := range x.values {
		out.values[k] = v.Clone()
	}
	return out
}

// Equal reports whether two maps hold the same keys and values, ignoring
// insertion order (but not value ordering within a sequence).
func (x *Xattrs) Equal(o *Xattrs) bool {
	if x.Len() != o.Len() {
		return false
	}
	for _, k := range x.Keys() {
		v, ok := x.Get(k)
		if !ok {
			return false
		}
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
