package enrich

// arena is a per-instance bump allocator for resolved attribute values
// (strings, byte slices) produced during a single enrichment pass. It is
// reset once per batch by the caller re-creating or calling ResetArena on
// the enricher between batches, matching spec.md §4.3's "per-thread stack
// allocator... outlives a single next() but is reset between batches by
// the caller destroying the enricher" and spec.md §9's guidance to
// reimplement sstack as "an arena/bump allocator owned by the component;
// reset at documented points."
//
// Since the pipeline is single-threaded (spec.md §5), one arena per
// enricher instance is sufficient; the source language's per-thread arena
// was incidental to its implementation, not a contractual requirement
// (spec.md §9).
type arena struct {
	chunks [][]byte
}

const arenaChunkSize = 4096

func newArena() *arena {
	return &arena{}
}

// alloc returns n fresh bytes carved out of the arena, growing it as
// needed. The returned slice is zeroed.
func (a *arena) alloc(n int) []byte {
	size := n
	if size < arenaChunkSize {
		size = arenaChunkSize
	}
	chunk := make([]byte, n, size)
	a.chunks = append(a.chunks, chunk)
	return chunk
}

// string copies s into arena-owned storage and returns the copy.
func (a *arena) string(s string) string {
	buf := a.alloc(len(s))
	copy(buf, s)
	return string(buf)
}

// bytes copies b into arena-owned storage and returns the copy.
func (a *arena) bytes(b []byte) []byte {
	buf := a.alloc(len(b))
	copy(buf, b)
	return buf
}

// reset discards every allocation made since the last reset. No pointer
// into the arena may outlive this call (spec.md §9).
func (a *arena) reset() {
	a.chunks = a.chunks[:0]
}
