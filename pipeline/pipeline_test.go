package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cea-hpc/rbh-fsevents/dedup"
	"github.com/cea-hpc/rbh-fsevents/fsevent"
	"github.com/cea-hpc/rbh-fsevents/source"
)

type fakeSource struct {
	events       []*fsevent.Event
	pos          int
	acknowledged []uint64
	ackErr       error
}

func (f *fakeSource) Next(ctx context.Context) (*fsevent.Event, error) {
	if f.pos >= len(f.events) {
		return nil, fsevent.ErrEndOfData
	}
	ev := f.events[f.pos]
	f.pos++
	return ev, nil
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) Acknowledge(index uint64) error {
	f.acknowledged = append(f.acknowledged, index)
	return f.ackErr
}

var _ source.Source = (*fakeSource)(nil)

type recordingSink struct {
	batches [][]*fsevent.Event
}

func (r *recordingSink) Process(ctx context.Context, batch fsevent.Iterator) error {
	var events []*fsevent.Event
	for {
		ev, err := batch.Next(ctx)
		if err != nil {
			if errors.Is(err, fsevent.ErrEndOfData) {
				break
			}
			return err
		}
		events = append(events, ev)
	}
	r.batches = append(r.batches, events)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func upsert(b byte) *fsevent.Event {
	return fsevent.NewUpsert(fsevent.Id{b}, nil)
}

func TestRunDrainsAllBatchesAndAcknowledges(t *testing.T) {
	src := &fakeSource{events: []*fsevent.Event{upsert(1), upsert(2), upsert(3)}}
	dd := dedup.New(src, 8)
	dst := &recordingSink{}

	err := Run(context.Background(), src, dd, nil, dst)
	require.NoError(t, err)
	require.Len(t, dst.batches, 1)
	assert.Len(t, dst.batches[0], 3)
	assert.Equal(t, []uint64{3}, src.acknowledged)
}

func TestRunToleratesUnsupportedAcknowledge(t *testing.T) {
	src := &fakeSource{events: []*fsevent.Event{upsert(1)}, ackErr: source.ErrUnsupported}
	dd := dedup.New(src, 8)
	dst := &recordingSink{}

	err := Run(context.Background(), src, dd, nil, dst)
	require.NoError(t, err)
	assert.Len(t, dst.batches, 1)
}

func TestRunEmptySource(t *testing.T) {
	src := &fakeSource{}
	dd := dedup.New(src, 8)
	dst := &recordingSink{}

	err := Run(context.Background(), src, dd, nil, dst)
	require.NoError(t, err)
	assert.Empty(t, dst.batches)
}

func TestRunPropagatesSinkError(t *testing.T) {
	src := &fakeSource{events: []*fsevent.Event{upsert(1)}}
	dd := dedup.New(src, 8)
	dst := &failingSink{}

	err := Run(context.Background(), src, dd, nil, dst)
	assert.Error(t, err)
}

type failingSink struct{}

func (f *failingSink) Process(ctx context.Context, batch fsevent.Iterator) error {
	return assert.AnError
}

func (f *failingSink) Close() error { return nil }
