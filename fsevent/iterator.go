package fsevent

import "context"

// Iterator is the pull contract shared by every stage of the pipeline
// (spec.md §2, §9): a lazy, finite sequence of events. Next returns
// ErrEndOfData (wrapped) when the sequence is exhausted. The event
// returned by Next is only guaranteed valid until the following call to
// Next or Close — "borrowed" in spec.md's terms — unless the implementation
// documents otherwise (the deduplicator's batch iterator hands out events
// it deep-cloned into its own ring buffer, which are valid until that
// specific event is freed, see dedup.Batch).
//
// Implementations form a closed set (Source, dedup.Batch, the enricher
// wrappers, dedup.NoPartial) per spec.md §9's preference for a closed
// tagged/interface hierarchy over open-ended polymorphism.
type Iterator interface {
	Next(ctx context.Context) (*Event, error)
	Close() error
}
