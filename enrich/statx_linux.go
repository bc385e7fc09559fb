//go:build linux

package enrich

import (
	"golang.org/x/sys/unix"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// resolveStatx performs the forced-sync statx of spec.md §4.3: "perform a
// forced-sync statx on the open fd with flags {force_sync, empty_path,
// no_automount, symlink_nofollow} requesting at least the bits in mask."
//
// Grounded directly on backend/local/metadata_linux.go's
// readMetadataFromFileStatx (mask bit names, Rdev_major/Rdev_minor
// handling, StatxTimestamp -> sec/nsec), and its linux/other build-tag
// split (metadata_linux.go vs metadata_other.go).
func resolveStatx(fd int, mask fsevent.StatxMask) (*fsevent.Statx, error) {
	var raw unix.Statx_t
	flags := unix.AT_STATX_FORCE_SYNC | unix.AT_EMPTY_PATH | unix.AT_NO_AUTOMOUNT | unix.AT_SYMLINK_NOFOLLOW
	err := unix.Statx(fd, "", flags, int(toLinuxStatxMask(mask)), &raw)
	if err != nil {
		return nil, err
	}
	return fromLinuxStatx(&raw), nil
}

func toLinuxStatxMask(m fsevent.StatxMask) uint32 {
	var out uint32
	if m.Has(fsevent.StatxType) {
		out |= unix.STATX_TYPE
	}
	if m.Has(fsevent.StatxMode) {
		out |= unix.STATX_MODE
	}
	if m.Has(fsevent.StatxNlink) {
		out |= unix.STATX_NLINK
	}
	if m.Has(fsevent.StatxUID) {
		out |= unix.STATX_UID
	}
	if m.Has(fsevent.StatxGID) {
		out |= unix.STATX_GID
	}
	if m.Has(fsevent.StatxAtime) {
		out |= unix.STATX_ATIME
	}
	if m.Has(fsevent.StatxMtime) {
		out |= unix.STATX_MTIME
	}
	if m.Has(fsevent.StatxCtime) {
		out |= unix.STATX_CTIME
	}
	if m.Has(fsevent.StatxBtime) {
		out |= unix.STATX_BTIME
	}
	if m.Has(fsevent.StatxIno) {
		out |= unix.STATX_INO
	}
	if m.Has(fsevent.StatxSize) {
		out |= unix.STATX_SIZE
	}
	if m.Has(fsevent.StatxBlocks) {
		out |= unix.STATX_BLOCKS
	}
	return out
}

func fromLinuxStatx(raw *unix.Statx_t) *fsevent.Statx {
	s := &fsevent.Statx{
		Mask:    fromLinuxStatxMask(raw.Mask),
		Mode:    raw.Mode,
		Nlink:   raw.Nlink,
		UID:     raw.Uid,
		GID:     raw.Gid,
		Ino:     raw.Ino,
		Size:    raw.Size,
		Blocks:  raw.Blocks,
		Blksize: raw.Blksize,
		Atime:   fsevent.Timespec{Sec: raw.Atime.Sec, Nsec: raw.Atime.Nsec},
		Btime:   fsevent.Timespec{Sec: raw.Btime.Sec, Nsec: raw.Btime.Nsec},
		Ctime:   fsevent.Timespec{Sec: raw.Ctime.Sec, Nsec: raw.Ctime.Nsec},
		Mtime:   fsevent.Timespec{Sec: raw.Mtime.Sec, Nsec: raw.Mtime.Nsec},
		Rdev:    fsevent.DevT{Major: raw.Rdev_major, Minor: raw.Rdev_minor},
		Dev:     fsevent.DevT{Major: raw.Dev_major, Minor: raw.Dev_minor},
	}
	return s
}

func fromLinuxStatxMask(mask uint32) fsevent.StatxMask {
	var out fsevent.StatxMask
	add := func(linuxBit uint32, bit fsevent.StatxMask) {
		if mask&linuxBit != 0 {
			out |= bit
		}
	}
	add(unix.STATX_TYPE, fsevent.StatxType)
	add(unix.STATX_MODE, fsevent.StatxMode)
	add(unix.STATX_NLINK, fsevent.StatxNlink)
	add(unix.STATX_UID, fsevent.StatxUID)
	add(unix.STATX_GID, fsevent.StatxGID)
	add(unix.STATX_ATIME, fsevent.StatxAtime)
	add(unix.STATX_MTIME, fsevent.StatxMtime)
	add(unix.STATX_CTIME, fsevent.StatxCtime)
	add(unix.STATX_BTIME, fsevent.StatxBtime)
	add(unix.STATX_INO, fsevent.StatxIno)
	add(unix.STATX_SIZE, fsevent.StatxSize)
	add(unix.STATX_BLOCKS, fsevent.StatxBlocks)
	return out
}
