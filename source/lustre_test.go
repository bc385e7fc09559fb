package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

type fakeChangelogReader struct {
	records []*changelogRecord
	pos     int
	cleared uint64
}

func (f *fakeChangelogReader) NextRecord() (*changelogRecord, error) {
	if f.pos >= len(f.records) {
		return nil, fsevent.ErrEndOfData
	}
	rec := f.records[f.pos]
	f.pos++
	return rec, nil
}

func (f *fakeChangelogReader) Clear(index uint64) error {
	f.cleared = index
	return nil
}

func (f *fakeChangelogReader) Close() error { return nil }

func newTestFID(oid uint32) fsevent.FID {
	return fsevent.FID{Seq: 1, Oid: oid, Ver: 0}
}

func TestLustreCreateEmitsLinkThenXattr(t *testing.T) {
	reader := &fakeChangelogReader{records: []*changelogRecord{
		{Type: clCreate, TFID: newTestFID(1), PFID: newTestFID(2), Name: "foo", UID: 10, GID: 20},
	}}
	l := &Lustre{reader: reader}

	link, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fsevent.Link, link.Type)
	assert.Equal(t, "foo", link.Name)
	assert.True(t, link.Xattrs.Has(fsevent.EnrichKey))
	require.NotNil(t, link.Statx)
	assert.Equal(t, uint32(10), link.Statx.UID)
	assert.Equal(t, uint32(20), link.Statx.GID)

	xattr, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fsevent.Xattr, xattr.Type)
	assert.Equal(t, link.Id, xattr.Id)
	v, ok := xattr.Xattrs.Get("fid")
	require.True(t, ok)
	assert.Equal(t, fsevent.ValueBinary, v.Kind)
}

func TestLustreMkdirRequestsBasicStats(t *testing.T) {
	reader := &fakeChangelogReader{records: []*changelogRecord{
		{Type: clMkdir, TFID: newTestFID(5)},
	}}
	l := &Lustre{reader: reader}

	ev, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fsevent.Upsert, ev.Type)
	v, ok := ev.Xattrs.Get(fsevent.EnrichKey)
	require.True(t, ok)
	req, err := fsevent.ParseEnrichRequest(v)
	require.NoError(t, err)
	assert.True(t, req.WantStatx)
	assert.Equal(t, fsevent.StatxBasicStats, req.Statx)
}

func TestLustreCloseRequestsAtime(t *testing.T) {
	reader := &fakeChangelogReader{records: []*changelogRecord{
		{Type: clClose, TFID: newTestFID(7)},
	}}
	l := &Lustre{reader: reader}

	ev, err := l.Next(context.Background())
	require.NoError(t, err)
	v, ok := ev.Xattrs.Get(fsevent.EnrichKey)
	require.True(t, ok)
	req, err := fsevent.ParseEnrichRequest(v)
	require.NoError(t, err)
	assert.Equal(t, fsevent.StatxAtime, req.Statx)
}

func TestLustreReservedTypeMarksUnhandled(t *testing.T) {
	reader := &fakeChangelogReader{records: []*changelogRecord{
		{Type: clRename, TFID: newTestFID(9)},
	}}
	l := &Lustre{reader: reader}

	ev, err := l.Next(context.Background())
	require.NoError(t, err)
	v, ok := ev.Xattrs.Get("rbh-fsevents-unhandled")
	require.True(t, ok)
	assert.Equal(t, "RENAME", v.Str)
}

func TestLustreMarkIsSkipped(t *testing.T) {
	reader := &fakeChangelogReader{records: []*changelogRecord{
		{Type: clMark},
		{Type: clMkdir, TFID: newTestFID(3)},
	}}
	l := &Lustre{reader: reader}

	ev, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fsevent.Upsert, ev.Type)
}

func TestLustreAcknowledgeClearsReader(t *testing.T) {
	reader := &fakeChangelogReader{}
	l := &Lustre{reader: reader}

	require.NoError(t, l.Acknowledge(42))
	assert.Equal(t, uint64(42), reader.cleared)
}

func TestLustreEndOfData(t *testing.T) {
	l := &Lustre{reader: &fakeChangelogReader{}}

	_, err := l.Next(context.Background())
	assert.ErrorIs(t, err, fsevent.ErrEndOfData)
}
