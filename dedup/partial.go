package dedup

import (
	"context"
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// NoPartial wraps an fsevent.Iterator and rejects any event still carrying
// an unresolved rbh-fsevents enrichment request after enrichment (spec.md
// §4.4, named after the original iter_no_partial).
type NoPartial struct {
	in fsevent.Iterator
}

// WrapNoPartial builds the partial filter around in.
func WrapNoPartial(in fsevent.Iterator) *NoPartial {
	return &NoPartial{in: in}
}

// Next returns the next event iff it no longer carries an rbh-fsevents key;
// otherwise it fails with fsevent.ErrInvalidData (spec.md §4.4: "must not
// reach the sink").
func (f *NoPartial) Next(ctx context.Context) (*fsevent.Event, error) {
	ev, err := f.in.Next(ctx)
	if err != nil {
		return nil, err
	}
	if ev.HasEnrichRequest() {
		return nil, fmt.Errorf("%w: event %s still carries an unresolved enrichment request", fsevent.ErrInvalidData, ev.Id.Hex())
	}
	return ev, nil
}

// Close releases the wrapped iterator.
func (f *NoPartial) Close() error {
	return f.in.Close()
}

var _ fsevent.Iterator = (*NoPartial)(nil)
