package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// Backend is the rbh:<backend>:<name> metadata-index sink of spec.md
// §4.5. It accumulates one batch's worth of events, then hands them to an
// Uploader in a single call, keeping the wire protocol to the index itself
// out of this package's scope (spec.md §1).
type Backend struct {
	name     string
	uploader Uploader
}

// NewBackend builds a Backend sink identified by name (the <name> segment
// of the rbh:<backend>:<name> destination), uploading through uploader.
func NewBackend(name string, uploader Uploader) *Backend {
	return &Backend{name: name, uploader: uploader}
}

// Process drains batch, then submits every event it yielded in one call.
func (b *Backend) Process(ctx context.Context, batch fsevent.Iterator) error {
	var events []*fsevent.Event
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := batch.Next(ctx)
		if err != nil {
			if errors.Is(err, fsevent.ErrEndOfData) {
				break
			}
			return fmt.Errorf("reading batch: %w", err)
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil
	}
	if err := b.uploader.Submit(ctx, events); err != nil {
		return fmt.Errorf("submitting batch to backend %q: %w", b.name, err)
	}
	return nil
}

// Close is a no-op; Backend owns no resource of its own beyond the
// Uploader, which is the caller's to close if it needs closing.
func (b *Backend) Close() error {
	return nil
}

var _ Sink = (*Backend)(nil)
