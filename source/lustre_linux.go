//go:build linux

package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// ioctlChangelogClear issues LL_IOC_CHANGELOG_CLEAR with buf (an 8-byte
// little-endian index) as its argument.
func ioctlChangelogClear(fd uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(llIocChangelogClear), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// llIocChangelogClear is the MDC ioctl that acknowledges changelog records
// up to a given index so the MDT can recycle their storage
// (LL_IOC_CHANGELOG_CLEAR in lustre/include/lustre/lustreapi.h). Declared
// here as a raw constant, same as enrich/lustre_linux.go's ioctls: an
// original addition grounded on the spec's description of the
// acknowledge contract, not lifted from a retrieved source line.
const llIocChangelogClear = 0x4008669d

// rawChangelogHeader is the fixed-size prefix of one on-wire Lustre
// changelog record: record index, prior-record back-pointer, encoded
// time, record type, name length, and the target/parent FIDs. The
// uid/gid extension that follows CREATE records, and the variable-length
// name, are read separately by readRecord. This is a reconstruction
// sized to the fields this translator consumes, not a byte-exact mirror
// of every Lustre version's struct changelog_rec.
type rawChangelogHeader struct {
	Index   uint64
	Prev    uint64
	Time    uint64
	Type    uint32
	NameLen uint16
	_       uint16 // flags, unused by this translator

	TFIDSeq uint64
	TFIDOid uint32
	TFIDVer uint32

	PFIDSeq uint64
	PFIDOid uint32
	PFIDVer uint32
}

// rawUidgidExt is the changelog_ext_uidgid extension present after CREATE
// records (original_source/src/sources/lustre.c's fill_uidgid).
type rawUidgidExt struct {
	UID uint32
	GID uint32
}

// deviceChangelogReader reads changelog records from the MDC's changelog
// character device (/dev/changelog-<mdtname>), the kernel-facing half of
// llapi_changelog_start/llapi_changelog_recv.
type deviceChangelogReader struct {
	f *os.File
	r *bufio.Reader
}

func openChangelog(mdtname string) (lustreReader, error) {
	path := fmt.Sprintf("/dev/changelog-%s", mdtname)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog device %q: %w", path, err)
	}
	return &deviceChangelogReader{f: f, r: bufio.NewReader(f)}, nil
}

// NextRecord blocks for and decodes the next raw changelog record.
func (d *deviceChangelogReader) NextRecord() (*changelogRecord, error) {
	var hdr rawChangelogHeader
	if err := binary.Read(d.r, binary.LittleEndian, &hdr); err != nil {
		if err == io.EOF {
			return nil, fsevent.ErrEndOfData
		}
		return nil, fmt.Errorf("reading changelog record header: %w", err)
	}

	rec := &changelogRecord{
		Type: int(hdr.Type),
		TFID: fsevent.FID{Seq: hdr.TFIDSeq, Oid: hdr.TFIDOid, Ver: hdr.TFIDVer},
		PFID: fsevent.FID{Seq: hdr.PFIDSeq, Oid: hdr.PFIDOid, Ver: hdr.PFIDVer},
		Time: int64(hdr.Time >> 30), // cr_time encodes seconds in its high bits
	}

	if rec.Type == clCreate {
		var ext rawUidgidExt
		if err := binary.Read(d.r, binary.LittleEndian, &ext); err != nil {
			return nil, fmt.Errorf("reading changelog uid/gid extension: %w", err)
		}
		rec.UID, rec.GID = ext.UID, ext.GID
	}

	if hdr.NameLen > 0 {
		name := make([]byte, hdr.NameLen)
		if _, err := io.ReadFull(d.r, name); err != nil {
			return nil, fmt.Errorf("reading changelog record name: %w", err)
		}
		rec.Name = string(name)
	}

	return rec, nil
}

// Clear acknowledges consumption of records up to and including index.
func (d *deviceChangelogReader) Clear(index uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], index)
	if err := ioctlChangelogClear(d.f.Fd(), buf[:]); err != nil {
		return fmt.Errorf("clearing changelog up to %d: %w", index, err)
	}
	return nil
}

func (d *deviceChangelogReader) Close() error {
	return d.f.Close()
}
