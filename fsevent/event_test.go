package fsevent_test

import (
	"errors"
	"testing"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIDRoundTrip(t *testing.T) {
	fids := []fsevent.FID{
		{Seq: 0x200000007, Oid: 1, Ver: 0},
		{Seq: 0x200000007, Oid: 2, Ver: 0},
		{Seq: 0, Oid: 0, Ver: 0},
		{Seq: ^uint64(0), Oid: ^uint32(0), Ver: ^uint32(0)},
	}
	for _, fid := range fids {
		id := fsevent.FIDToID(fid)
		got, err := fsevent.IDToFID(id)
		require.NoError(t, err)
		assert.Equal(t, fid, got)
	}
}

func TestEventValidate(t *testing.T) {
	t.Run("empty id rejected", func(t *testing.T) {
		e := fsevent.NewUpsert(nil, nil)
		err := e.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, fsevent.ErrInvalidData))
	})

	t.Run("link requires name", func(t *testing.T) {
		id := fsevent.FIDToID(fsevent.FID{Seq: 1, Oid: 1})
		e := fsevent.NewLink(id, id, "")
		err := e.Validate()
		require.Error(t, err)
	})

	t.Run("valid upsert", func(t *testing.T) {
		id := fsevent.FIDToID(fsevent.FID{Seq: 1, Oid: 1})
		e := fsevent.NewUpsert(id, nil)
		require.NoError(t, e.Validate())
	})
}

func TestEventCloneIndependence(t *testing.T) {
	id := fsevent.FIDToID(fsevent.FID{Seq: 7, Oid: 2})
	parent := fsevent.FIDToID(fsevent.FID{Seq: 7, Oid: 1})
	e := fsevent.NewLink(id, parent, "f")
	e.Xattrs.Set("k", fsevent.NewString("v"))
	e.Statx = &fsevent.Statx{Mask: fsevent.StatxUIDGID, UID: 1000, GID: 1000}

	clone := e.Clone()
	require.Equal(t, e.Id, clone.Id)
	assert.True(t, e.Id.Equal(clone.Id))

	// mutate the original; the clone must not see it.
	e.Id[0] ^= 0xff
	e.Statx.UID = 42
	e.Xattrs.Set("k", fsevent.NewString("mutated"))

	assert.False(t, e.Id.Equal(clone.Id))
	assert.Equal(t, uint32(1000), clone.Statx.UID)
	v, ok := clone.Xattrs.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v.Str)
}

func TestEnrichRequestRoundTrip(t *testing.T) {
	req := fsevent.EnrichRequest{
		WantStatx:  true,
		Statx:      fsevent.StatxAtimeSec | fsevent.StatxAtimeNsec,
		WantPath:   true,
		XattrKinds: []string{"lustre"},
	}
	v := req.ToValue()
	got, err := fsevent.ParseEnrichRequest(v)
	require.NoError(t, err)
	assert.Equal(t, req.WantStatx, got.WantStatx)
	assert.Equal(t, req.Statx, got.Statx)
	assert.Equal(t, req.WantPath, got.WantPath)
	assert.Equal(t, req.XattrKinds, got.XattrKinds)
	assert.True(t, got.WantsLustreXattrs())
}

func TestHasEnrichRequest(t *testing.T) {
	id := fsevent.FIDToID(fsevent.FID{Seq: 1, Oid: 1})
	e := fsevent.NewUpsert(id, nil)
	assert.False(t, e.HasEnrichRequest())

	req := fsevent.EnrichRequest{WantStatx: true, Statx: fsevent.StatxBasicStats}
	e.Xattrs.Set(fsevent.EnrichKey, req.ToValue())
	assert.True(t, e.HasEnrichRequest())
}
