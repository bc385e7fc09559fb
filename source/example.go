package source

import (
	"context"

	"github.com/google/uuid"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// Example is a synthetic, in-memory source that generates a deterministic
// fsevent stream without any live filesystem or changelog, for the
// driver's self-test mode and as a test double elsewhere (in the spirit of
// rclone's fstest mock filesystems).
//
// Grounded on original_source/src/sources/example.c: that file is a
// skeleton for implementers to fill in (every event-producing line is a
// TODO), showing the shape of an UPSERT event carrying an rbh-fsevents
// enrichment request built from named statx fields. Example fills in that
// skeleton with a fixed three-event script: a bare UPSERT requesting full
// statx resolution, an UPSERT that additionally requests symlink
// resolution, and a LINK. Ids are minted with a random v4 UUID (16 bytes,
// repurposed as an opaque id — not a FID) so Example never collides with a
// real Lustre id space.
type Example struct {
	noAcknowledge

	events []*fsevent.Event
	pos    int
}

// NewExample builds the fixed example event stream.
func NewExample() *Example {
	upsertID := fsevent.Id(mustUUID())
	symlinkID := fsevent.Id(mustUUID())
	parentID := fsevent.Id(mustUUID())

	upsert := fsevent.NewUpsert(upsertID, nil)
	upsert.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{
		WantStatx: true,
		Statx:     fsevent.StatxBasicStats,
	}.ToValue())

	symlink := fsevent.NewUpsert(symlinkID, nil)
	symlink.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{
		WantStatx:   true,
		Statx:       fsevent.StatxBasicStats,
		WantSymlink: true,
	}.ToValue())

	link := fsevent.NewLink(symlinkID, parentID, "example-link")

	return &Example{events: []*fsevent.Event{upsert, symlink, link}}
}

func mustUUID() []byte {
	id := uuid.New()
	return id[:]
}

// Next returns the next event in the fixed script.
func (e *Example) Next(ctx context.Context) (*fsevent.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.pos >= len(e.events) {
		return nil, fsevent.ErrEndOfData
	}
	ev := e.events[e.pos]
	e.pos++
	return ev, nil
}

// Close is a no-op; Example owns no external resources.
func (e *Example) Close() error {
	return nil
}
