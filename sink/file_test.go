package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

type sliceIterator struct {
	events []*fsevent.Event
	pos    int
}

func (s *sliceIterator) Next(ctx context.Context) (*fsevent.Event, error) {
	if s.pos >= len(s.events) {
		return nil, fsevent.ErrEndOfData
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *sliceIterator) Close() error { return nil }

func TestFileSinkWritesOneDocumentPerEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.yaml")

	f, err := NewFile(path)
	require.NoError(t, err)

	batch := &sliceIterator{events: []*fsevent.Event{
		fsevent.NewUpsert(fsevent.Id{1, 2, 3}, nil),
		fsevent.NewDelete(fsevent.Id{4, 5, 6}),
	}}

	require.NoError(t, f.Process(context.Background(), batch))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "type: UPSERT")
	require.Contains(t, string(data), "type: DELETE")
}
