package source

import (
	"context"
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// ErrLustreUnsupported is returned when the Lustre changelog source is
// built on a platform without a changelog device reader (non-Linux).
var ErrLustreUnsupported = fmt.Errorf("lustre changelog source not available on this platform")

// Changelog record types this translator recognizes, mirroring Lustre's
// changelog_rec_type enum (lustre/include/lustre/lustreapi.h) in the order
// original_source/src/sources/lustre.c switches on cr_type.
const (
	clCreate = iota
	clMkdir
	clHardlink
	clSoftlink
	clMknod
	clUnlink
	clRmdir
	clRename
	clExt
	clOpen
	clClose
	clLayout
	clTrunc
	clSetattr
	clSetxattr
	clHsm
	clMtime
	clAtime
	clCtime
	clMigrate
	clFlrw
	clResync
	clGetxattr
	clDnOpen
	clMark
)

// changelogRecord is the decoded shape of one raw Lustre changelog record,
// populated by the platform-specific reader (lustre_linux.go/
// lustre_other.go) from the kernel's binary struct changelog_rec.
type changelogRecord struct {
	Type  int
	TFID  fsevent.FID // "target" fid: the object the record is about
	PFID  fsevent.FID // parent fid, valid for name-bearing records
	Name  string
	UID   uint32
	GID   uint32
	Time  int64 // cr_time, seconds since epoch
}

// lustreReader abstracts the changelog device: NextRecord blocks for the
// next raw record, Clear acknowledges consumption up to index (spec.md
// §4.1's source_acknowledge contract), Close releases the reader.
type lustreReader interface {
	NextRecord() (*changelogRecord, error)
	Clear(index uint64) error
	Close() error
}

// Lustre is the MDT changelog source of spec.md §4.1.2. A single raw record
// can yield up to two fsevents (CREATE's LINK + XATTR pair); process_step
// tracks which one is next, and prev stashes the in-progress record across
// Next calls exactly as original_source/src/sources/lustre.c's single-event
// design is generalized here to the two-step CREATE translation spec.md
// §9 selects as "the most complete design."
type Lustre struct {
	reader      lustreReader
	prev        *changelogRecord
	processStep int
	index       uint64
}

// NewLustre opens the changelog reader for mdtname (spec.md §4.1.2: jobid +
// extra flags {uidgid, nid, omode, xattr}, starting at record 0).
func NewLustre(mdtname string) (*Lustre, error) {
	r, err := openChangelog(mdtname)
	if err != nil {
		return nil, err
	}
	return &Lustre{reader: r}, nil
}

// Next translates raw changelog records into fsevents per spec.md §4.1.2's
// mapping table, looping internally past MARK and unknown types.
func (l *Lustre) Next(ctx context.Context) (*fsevent.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if l.prev != nil && l.processStep == 1 {
			ev := createXattrEvent(l.prev)
			l.prev = nil
			l.processStep = 0
			l.index++
			return ev, nil
		}

		rec, err := l.reader.NextRecord()
		if err != nil {
			return nil, err
		}

		switch rec.Type {
		case clCreate:
			l.prev = rec
			l.processStep = 1
			l.index++
			return createLinkEvent(rec), nil
		case clMkdir:
			ev := fsevent.NewUpsert(fsevent.FIDToID(rec.TFID), nil)
			ev.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{
				WantStatx: true,
				Statx:     fsevent.StatxBasicStats,
			}.ToValue())
			l.index++
			return ev, nil
		case clClose:
			ev := fsevent.NewUpsert(fsevent.FIDToID(rec.TFID), nil)
			ev.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{
				WantStatx: true,
				Statx:     fsevent.StatxAtime,
			}.ToValue())
			l.index++
			return ev, nil
		case clHardlink, clSoftlink, clMknod, clUnlink, clRmdir, clRename,
			clExt, clOpen, clLayout, clTrunc, clSetattr, clSetxattr, clHsm,
			clMtime, clAtime, clCtime, clMigrate, clFlrw, clResync,
			clGetxattr, clDnOpen:
			// Reserved types (spec.md §4.1/§9): emit a marker event rather
			// than silently dropping the record.
			ev := fsevent.NewUpsert(fsevent.FIDToID(rec.TFID), nil)
			ev.Xattrs.Set("rbh-fsevents-unhandled", fsevent.NewString(changelogTypeName(rec.Type)))
			l.index++
			return ev, nil
		default: // clMark and anything unrecognized
			continue
		}
	}
}

// createLinkEvent builds the step-0 LINK event of a CREATE record.
func createLinkEvent(rec *changelogRecord) *fsevent.Event {
	ev := fsevent.NewLink(fsevent.FIDToID(rec.TFID), fsevent.FIDToID(rec.PFID), rec.Name)
	ev.Statx = &fsevent.Statx{Mask: fsevent.StatxUIDGID, UID: rec.UID, GID: rec.GID}
	ev.Xattrs.Set(fsevent.EnrichKey, fsevent.EnrichRequest{WantPath: true}.ToValue())
	return ev
}

// createXattrEvent builds the step-1 XATTR{fid} event of a CREATE record.
func createXattrEvent(rec *changelogRecord) *fsevent.Event {
	ev := fsevent.NewXattr(fsevent.FIDToID(rec.TFID), fsevent.NewXattrs())
	ev.Xattrs.Set("fid", fsevent.NewBinary(rec.TFID.Bytes()))
	return ev
}

func changelogTypeName(t int) string {
	names := [...]string{
		"CREATE", "MKDIR", "HARDLINK", "SOFTLINK", "MKNOD", "UNLINK",
		"RMDIR", "RENAME", "EXT", "OPEN", "CLOSE", "LAYOUT", "TRUNC",
		"SETATTR", "SETXATTR", "HSM", "MTIME", "ATIME", "CTIME", "MIGRATE",
		"FLRW", "RESYNC", "GETXATTR", "DN_OPEN", "MARK",
	}
	if t < 0 || t >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

// Close releases the changelog reader.
func (l *Lustre) Close() error {
	return l.reader.Close()
}

// Acknowledge confirms consumption through the index-th yielded event by
// clearing the changelog up to the corresponding record.
func (l *Lustre) Acknowledge(index uint64) error {
	return l.reader.Clear(index)
}

var _ Source = (*Lustre)(nil)
