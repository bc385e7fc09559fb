package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// sliceSource is a minimal fsevent.Iterator test double over a fixed slice
// of events, in the spirit of rclone's fstest mock sources.
type sliceSource struct {
	events []*fsevent.Event
	pos    int
	closed bool
}

func newSliceSource(events ...*fsevent.Event) *sliceSource {
	return &sliceSource{events: events}
}

func (s *sliceSource) Next(ctx context.Context) (*fsevent.Event, error) {
	if s.pos >= len(s.events) {
		return nil, fsevent.ErrEndOfData
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func upsert(id byte) *fsevent.Event {
	return fsevent.NewUpsert(fsevent.Id{id}, nil)
}

func drainBatch(t *testing.T, b *Batch) []*fsevent.Event {
	t.Helper()
	var out []*fsevent.Event
	for {
		ev, err := b.Next(context.Background())
		if err == fsevent.ErrEndOfData {
			break
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
	return out
}

func TestDeduplicatorEmptySource(t *testing.T) {
	d := newWithCapacity(newSliceSource(), 2)
	_, err := d.Next(context.Background())
	assert.ErrorIs(t, err, fsevent.ErrEndOfData)
}

func TestDeduplicatorRingCut(t *testing.T) {
	src := newSliceSource(upsert(1), upsert(2), upsert(3))
	d := newWithCapacity(src, 2)

	batch1, err := d.Next(context.Background())
	require.NoError(t, err)
	events1 := drainBatch(t, batch1)
	assert.Len(t, events1, 2)
	assert.Equal(t, fsevent.Id{1}, events1[0].Id)
	assert.Equal(t, fsevent.Id{2}, events1[1].Id)

	batch2, err := d.Next(context.Background())
	require.NoError(t, err)
	events2 := drainBatch(t, batch2)
	assert.Len(t, events2, 1)
	assert.Equal(t, fsevent.Id{3}, events2[0].Id)

	_, err = d.Next(context.Background())
	assert.ErrorIs(t, err, fsevent.ErrEndOfData)

	assert.Equal(t, 1, d.Stats().BatchesCut)
	assert.Equal(t, 3, d.Stats().EventsCloned)
	assert.Equal(t, 2, d.Stats().HighWaterMark)
}

func TestDeduplicatorBatchSizeOne(t *testing.T) {
	src := newSliceSource(upsert(1), upsert(2))
	d := newWithCapacity(src, 1)

	for _, want := range []byte{1, 2} {
		batch, err := d.Next(context.Background())
		require.NoError(t, err)
		events := drainBatch(t, batch)
		require.Len(t, events, 1)
		assert.Equal(t, fsevent.Id{want}, events[0].Id)
	}

	_, err := d.Next(context.Background())
	assert.ErrorIs(t, err, fsevent.ErrEndOfData)
}

func TestDeduplicatorClonesEvents(t *testing.T) {
	original := upsert(1)
	src := newSliceSource(original)
	d := newWithCapacity(src, 2)

	batch, err := d.Next(context.Background())
	require.NoError(t, err)
	events := drainBatch(t, batch)
	require.Len(t, events, 1)

	original.Name = "mutated"
	assert.NotEqual(t, original.Name, events[0].Name)
}
