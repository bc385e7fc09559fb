package dedup

import (
	"context"
	"errors"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// Deduplicator pulls fsevents from a source, clones them into a
// fixed-size ring buffer and emits them as a sequence of Batches
// (spec.md §4.2). A new batch is cut when the ring would overflow or
// when the source is exhausted.
type Deduplicator struct {
	source   fsevent.Iterator
	capacity int
	prev     *fsevent.Event // stashed triggering event, pushed first in the next batch
	done     bool
	stats    Stats
}

// New builds a Deduplicator pulling from source, sizing its ring buffer to
// the next page-aligned multiple of sizeof(pointer)*count (spec.md §4.2/§6).
func New(source fsevent.Iterator, count int) *Deduplicator {
	return newWithCapacity(source, ringCapacity(count))
}

// newWithCapacity builds a Deduplicator with an exact slot capacity,
// bypassing the host page-size rounding New applies. Used by tests that
// need to exercise batch-cut behavior deterministically (spec.md §4.2's
// "ring sized for 2 events" scenario) without depending on the host's page
// size.
func newWithCapacity(source fsevent.Iterator, capacity int) *Deduplicator {
	return &Deduplicator{source: source, capacity: capacity}
}

// Stats reports the deduplicator's running counters.
func (d *Deduplicator) Stats() Stats {
	return d.stats
}

// Next pulls and clones events from the source until the ring would
// overflow or the source is exhausted, returning the result as one Batch.
// Returns fsevent.ErrEndOfData once the source is exhausted and nothing
// remains to flush.
func (d *Deduplicator) Next(ctx context.Context) (*Batch, error) {
	if d.done && d.prev == nil {
		return nil, fsevent.ErrEndOfData
	}

	r := newRing(d.capacity)

	if d.prev != nil {
		r.push(d.prev)
		d.prev = nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := d.source.Next(ctx)
		if err != nil {
			if errors.Is(err, fsevent.ErrEndOfData) {
				d.done = true
				break
			}
			return nil, err
		}

		clone := ev.Clone()
		d.stats.EventsCloned++

		if !r.push(clone) {
			// Ring would overflow: cut the batch here, stash the
			// triggering event for the next call (spec.md §4.2).
			d.prev = clone
			d.stats.BatchesCut++
			break
		}
	}

	events := r.drain()
	if len(events) == 0 {
		return nil, fsevent.ErrEndOfData
	}
	if len(events) > d.stats.HighWaterMark {
		d.stats.HighWaterMark = len(events)
	}
	return newBatch(events), nil
}

// Close releases the deduplicator's underlying source.
func (d *Deduplicator) Close() error {
	d.prev = nil
	return d.source.Close()
}
