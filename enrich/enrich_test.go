package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// fakeResolver is an in-package test double for the resolver interface,
// letting Enricher's dispatch logic be exercised without a live mount.
type fakeResolver struct {
	resolveFn func(ctx context.Context, req fsevent.EnrichRequest, original, out *fsevent.Event, a *arena) (int, error)
	closed    bool
}

func (f *fakeResolver) resolve(ctx context.Context, req fsevent.EnrichRequest, original, out *fsevent.Event, a *arena) (int, error) {
	return f.resolveFn(ctx, req, original, out, a)
}

func (f *fakeResolver) close() error {
	f.closed = true
	return nil
}

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

func TestEnricherPassesThroughEventsWithoutRequest(t *testing.T) {
	resolver := &fakeResolver{resolveFn: func(context.Context, fsevent.EnrichRequest, *fsevent.Event, *fsevent.Event, *arena) (int, error) {
		t.Fatal("resolve should not be called for an event with no enrichment request")
		return 0, nil
	}}
	plain := fsevent.NewUpsert(fsevent.Id{1}, nil)
	e := wrap(&sliceIterator{events: []*fsevent.Event{plain}}, POSIX, resolver)

	out, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Same(t, plain, out)
}

func TestEnricherClonesAndDeletesEnrichKeyBeforeResolving(t *testing.T) {
	var seenOriginal, seenOut *fsevent.Event
	resolver := &fakeResolver{resolveFn: func(ctx context.Context, req fsevent.EnrichRequest, original, out *fsevent.Event, a *arena) (int, error) {
		seenOriginal, seenOut = original, out
		assert.True(t, req.WantStatx)
		out.Xattrs.Set("statx", fsevent.NewUint32(0))
		return 1, nil
	}}

	in := fsevent.NewUpsert(fsevent.Id{2}, nil)
	in.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{WantStatx: true, Statx: fsevent.StatxBasicStats}.ToValue())

	e := wrap(&sliceIterator{events: []*fsevent.Event{in}}, POSIX, resolver)

	out, err := e.Next(context.Background())
	require.NoError(t, err)

	assert.Same(t, in, seenOriginal, "resolve must see the original, untouched event")
	assert.NotSame(t, in, out, "resolved output must be a clone, not the original event")
	assert.Same(t, out, seenOut)
	assert.False(t, out.Xattrs.Has(fsevent.EnrichKey), "resolved output must have the enrichment request removed")
	assert.True(t, in.Xattrs.Has(fsevent.EnrichKey), "the original event must be untouched")
}

func TestEnricherPropagatesResolveError(t *testing.T) {
	wantErr := errors.New("resolution exploded")
	resolver := &fakeResolver{resolveFn: func(context.Context, fsevent.EnrichRequest, *fsevent.Event, *fsevent.Event, *arena) (int, error) {
		return 0, wantErr
	}}

	in := fsevent.NewUpsert(fsevent.Id{3}, nil)
	in.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{WantStatx: true}.ToValue())
	e := wrap(&sliceIterator{events: []*fsevent.Event{in}}, POSIX, resolver)

	_, err := e.Next(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestEnricherRejectsMalformedEnrichRequest(t *testing.T) {
	resolver := &fakeResolver{resolveFn: func(context.Context, fsevent.EnrichRequest, *fsevent.Event, *fsevent.Event, *arena) (int, error) {
		t.Fatal("resolve should not be called for a malformed request")
		return 0, nil
	}}

	in := fsevent.NewUpsert(fsevent.Id{4}, nil)
	in.Xattrs.Set(fsevent.EnrichKey, fsevent.NewString("not a map"))
	e := wrap(&sliceIterator{events: []*fsevent.Event{in}}, POSIX, resolver)

	_, err := e.Next(context.Background())
	assert.ErrorIs(t, err, fsevent.ErrInvalidData)
}

func TestEnricherCloseReleasesResolver(t *testing.T) {
	resolver := &fakeResolver{}
	e := wrap(&sliceIterator{}, POSIX, resolver)

	require.NoError(t, e.Close())
	assert.True(t, resolver.closed)
}

func TestEnricherWrapSwapsInputIterator(t *testing.T) {
	resolver := &fakeResolver{}
	e := wrap(&sliceIterator{}, POSIX, resolver)

	plain := fsevent.NewUpsert(fsevent.Id{5}, nil)
	e.Wrap(&sliceIterator{events: []*fsevent.Event{plain}})

	out, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Same(t, plain, out)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("posix")
	require.NoError(t, err)
	assert.Equal(t, POSIX, k)

	k, err = ParseKind("lustre")
	require.NoError(t, err)
	assert.Equal(t, Lustre, k)

	_, err = ParseKind("nfs")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "posix", POSIX.String())
	assert.Equal(t, "lustre", Lustre.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestProbeKindFallsBackToPOSIXForOrdinaryDirectory(t *testing.T) {
	k, err := ProbeKind(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, POSIX, k)
}

func TestArenaAllocAndReset(t *testing.T) {
	a := newArena()

	s := a.string("hello")
	b := a.bytes([]byte{1, 2, 3})
	assert.Equal(t, "hello", s)
	assert.Equal(t, []byte{1, 2, 3}, b)

	a.reset()
	assert.Empty(t, a.chunks)

	s2 := a.string("world")
	assert.Equal(t, "world", s2)
}

func TestJoinFidPathCanonicalization(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		file   string
		want   string
	}{
		{"root parent", "/", "foo", "/foo"},
		{"empty parent treated as root", "", "foo", "/foo"},
		{"nested parent", "a/b", "foo", "/a/b/foo"},
		{"nested parent with leading slash", "/a/b", "foo", "//a/b/foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinFidPath(tt.parent, tt.file))
		})
	}
}
