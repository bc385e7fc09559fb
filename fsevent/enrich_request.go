package fsevent

// EnrichRequest is the decoded form of the special rbh-fsevents xattr value
// (spec.md §3): a mapping with recognized sub-keys statx, symlink, path,
// lustre, and xattrs.
type EnrichRequest struct {
	Statx       StatxMask
	WantStatx   bool
	WantSymlink bool
	WantPath    bool
	WantLustre  bool
	// XattrKinds lists the kind tags requested via the "xattrs" sub-key,
	// e.g. ["lustre"].
	XattrKinds []string
}

// Sub-keys of the rbh-fsevents map value (spec.md §3).
const (
	enrichSubkeyStatx   = "statx"
	enrichSubkeySymlink = "symlink"
	enrichSubkeyPath    = "path"
	enrichSubkeyLustre  = "lustre"
	enrichSubkeyXattrs  = "xattrs"
)

// IsEmpty reports whether the request asks for nothing at all.
func (r EnrichRequest) IsEmpty() bool {
	return !r.WantStatx && !r.WantSymlink && !r.WantPath && !r.WantLustre && len(r.XattrKinds) == 0
}

// WantsLustreXattrs reports whether lustre attribute resolution was
// requested either directly (the "lustre" sub-key) or via the "xattrs"
// sequence containing "lustre" (spec.md §3).
func (r EnrichRequest) WantsLustreXattrs() bool {
	if r.WantLustre {
		return true
	}
	for _, k := range r.XattrKinds {
		if k == "lustre" {
			return true
		}
	}
	return false
}

// ToValue encodes the request back into the Value shape that would be
// stored under EnrichKey, used by sources when constructing an event and by
// tests asserting round-trip shape.
func (r EnrichRequest) ToValue() Value {
	m := NewXattrs()
	if r.WantStatx {
		m.Set(enrichSubkeyStatx, NewUint64(uint64(r.Statx)))
	}
	if r.WantSymlink {
		m.Set(enrichSubkeySymlink, NewUint32(0))
	}
	if r.WantPath {
		m.Set(enrichSubkeyPath, NewUint32(0))
	}
	if r.WantLustre {
		m.Set(enrichSubkeyLustre, NewUint32(0))
	}
	if len(r.XattrKinds) > 0 {
		seq := make([]Value, len(r.XattrKinds))
		for i, k := range r.XattrKinds {
			seq[i] = NewString(k)
		}
		m.Set(enrichSubkeyXattrs, NewSequence(seq...))
	}
	return NewMap(m)
}

// ParseEnrichRequest decodes a Value (expected to be map-kind) into an
// EnrichRequest. An unknown sub-key is ignored (spec.md §8 boundary
// behavior: "Enrichment request with unknown key: event passes through
// unchanged; partial filter rejects it" — ignoring unknown keys here, not
// erroring, is what lets that behavior happen: the request survives
// unresolved and the partial filter catches it downstream).
func ParseEnrichRequest(v Value) (EnrichRequest, error) {
	var req EnrichRequest
	if v.Kind != ValueMap || v.Map == nil {
		return req, ErrInvalidData
	}
	for _, key := range v.Map.Keys() {
		sub, _ := v.Map.Get(key)
		switch key {
		case enrichSubkeyStatx:
			if sub.Kind != ValueUint64 && sub.Kind != ValueUint32 {
				return req, ErrInvalidData
			}
			req.WantStatx = true
			if sub.Kind == ValueUint64 {
				req.Statx = StatxMask(sub.U64)
			} else {
				req.Statx = StatxMask(sub.U32)
			}
		case enrichSubkeySymlink:
			req.WantSymlink = true
		case enrichSubkeyPath:
			req.WantPath = true
		case enrichSubkeyLustre:
			req.WantLustre = true
		case enrichSubkeyXattrs:
			if sub.Kind != ValueSequence {
				return req, ErrInvalidData
			}
			for _, e := range sub.Seq {
				if e.Kind != ValueString {
					return req, ErrInvalidData
				}
				req.XattrKinds = append(req.XattrKinds, e.Str)
			}
		}
	}
	return req, nil
}
