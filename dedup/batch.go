package dedup

import (
	"context"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// Batch is the lazy iterator spec.md §4.2 hands out per cut: a contiguous
// sequence of cloned events held in push order. Next frees the previously
// yielded clone's owned children (here: drops the Go reference so the
// garbage collector can reclaim it) rather than the slot itself, matching
// the clone ownership model of original_source/src/deduplicator.c's
// fsevent_clone.
type Batch struct {
	events []*fsevent.Event
	cursor int
}

func newBatch(events []*fsevent.Event) *Batch {
	return &Batch{events: events}
}

// Len reports how many events remain unconsumed in the batch.
func (b *Batch) Len() int {
	return len(b.events) - b.cursor
}

// Next returns the next event in push order, or fsevent.ErrEndOfData when
// the batch is exhausted.
func (b *Batch) Next(ctx context.Context) (*fsevent.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.cursor >= len(b.events) {
		return nil, fsevent.ErrEndOfData
	}
	if b.cursor > 0 {
		b.events[b.cursor-1] = nil // release the previously yielded clone
	}
	ev := b.events[b.cursor]
	b.cursor++
	return ev, nil
}

// Close frees all remaining events in the batch (spec.md §4.2:
// "Destruction of a partially-consumed batch iterator MUST free all
// remaining cloned events").
func (b *Batch) Close() error {
	for i := b.cursor; i < len(b.events); i++ {
		b.events[i] = nil
	}
	b.events = nil
	b.cursor = 0
	return nil
}

var _ fsevent.Iterator = (*Batch)(nil)
