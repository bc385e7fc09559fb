package fsevent_test

import (
	"testing"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireRoundTrip(t *testing.T) {
	id := fsevent.FIDToID(fsevent.FID{Seq: 7, Oid: 2})
	parent := fsevent.FIDToID(fsevent.FID{Seq: 7, Oid: 1})

	e := fsevent.NewLink(id, parent, "f")
	e.Statx = &fsevent.Statx{Mask: fsevent.StatxUIDGID, UID: 1000, GID: 1000}
	e.Xattrs.Set("fid", fsevent.NewBinary(parent))
	e.Xattrs.Set("count", fsevent.NewUint32(3))
	e.Xattrs.Set("big", fsevent.NewUint64(1<<40))
	sub := fsevent.NewXattrs()
	sub.Set("nested", fsevent.NewString("v"))
	e.Xattrs.Set("m", fsevent.NewMap(sub))
	e.Xattrs.Set("seq", fsevent.NewSequence(fsevent.NewString("a"), fsevent.NewString("b")))

	w, err := e.ToWire()
	require.NoError(t, err)

	got, err := fsevent.FromWire(w)
	require.NoError(t, err)

	assert.Equal(t, e.Type, got.Type)
	assert.True(t, e.Id.Equal(got.Id))
	assert.True(t, e.ParentId.Equal(got.ParentId))
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.Statx.UID, got.Statx.UID)
	assert.Equal(t, e.Statx.GID, got.Statx.GID)
	assert.True(t, e.Xattrs.Equal(got.Xattrs))
}

func TestWireUnknownTypeRejected(t *testing.T) {
	w := &fsevent.Wire{Type: "NOT_A_TYPE", Id: "aa"}
	_, err := fsevent.FromWire(w)
	require.Error(t, err)
}
