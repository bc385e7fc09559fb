// Package dedup implements the deduplicator/batcher of spec.md §4.2: it
// pulls fsevents from a source, clones them into a fixed-size ring buffer,
// and emits them as a sequence of batches — each batch itself an iterator.
//
// Grounded on original_source/src/deduplicator.c (fsevent_clone, the
// single-surviving revision's pull-clone-return shape), generalized to the
// ring-buffered, batch-cut-on-overflow design spec.md §4.2 describes as the
// most complete of its four historical revisions (see DESIGN.md's Open
// Question decisions).
package dedup

import (
	"golang.org/x/sys/unix"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// pointerSize stands in for the C "sizeof(pointer)" spec.md §4.2 sizes the
// ring against: each ring slot holds one *fsevent.Event.
const pointerSize = 8

// alignUp rounds n up to the next multiple of align.
func alignUp(n, align int) int {
	if align <= 0 {
		return n
	}
	return (n + align - 1) / align * align
}

// ringCapacity returns the number of event slots a ring should hold for the
// given requested count, rounding the underlying byte size up to the next
// page-aligned multiple as spec.md §6 mandates ("page size from the host,
// probed at startup").
func ringCapacity(count int) int {
	if count <= 0 {
		count = 1
	}
	pageSize := unix.Getpagesize()
	bytes := alignUp(count*pointerSize, pageSize)
	return bytes / pointerSize
}

// ring is the bounded, pointer-stable FIFO spec.md §4.2 describes: push,
// then drain into the batch iterator handed out.
type ring struct {
	slots []*fsevent.Event
	len   int
}

// newRing allocates a ring with exactly capacity slots. Callers that want
// spec.md §4.2's page-aligned sizing pass a capacity already computed by
// ringCapacity (see Deduplicator.New); this constructor does not re-round.
func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring{slots: make([]*fsevent.Event, capacity)}
}

// push appends ev to the ring. It reports false without modifying the ring
// if doing so would overflow capacity — the signal the deduplicator uses to
// cut the batch (spec.md §4.2: "When push would overflow, the deduplicator
// cuts the batch... without consuming the triggering event").
func (r *ring) push(ev *fsevent.Event) bool {
	if r.len >= len(r.slots) {
		return false
	}
	r.slots[r.len] = ev
	r.len++
	return true
}

// drain returns the ring's contents in push order and resets the ring.
// Ownership of the slice passes to the caller (the batch being built).
func (r *ring) drain() []*fsevent.Event {
	out := r.slots[:r.len]
	r.slots = nil
	r.len = 0
	return out
}
