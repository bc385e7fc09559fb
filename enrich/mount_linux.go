//go:build linux

package enrich

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// openByHandle reopens id as a Linux file handle against the mount fd,
// retrying on ELOOP exactly like openByIDPath.
func openByHandle(m *mount, id fsevent.Id) (int, error) {
	handle, err := decodeFileHandle(id)
	if err != nil {
		return -1, fmt.Errorf("decoding id as file handle: %w", err)
	}
	fd, err := unix.OpenByHandleAt(m.fd, handle, unix.O_RDONLY)
	if err == nil {
		return fd, nil
	}
	if !isELOOP(err) {
		return -1, fmt.Errorf("opening by handle: %w", err)
	}
	fd, err = unix.OpenByHandleAt(m.fd, handle, unix.O_PATH|unix.O_NOFOLLOW)
	if err != nil {
		return -1, fmt.Errorf("opening by handle as O_PATH after ELOOP: %w", err)
	}
	return fd, nil
}

// decodeFileHandle reinterprets an opaque id as a unix.FileHandle: the
// first 4 bytes are the handle type (little-endian int32), the rest the
// opaque handle bytes, matching the layout unix.NameToHandleAt produces.
func decodeFileHandle(id fsevent.Id) (unix.FileHandle, error) {
	if len(id) < 4 {
		return unix.FileHandle{}, fmt.Errorf("%w: id too short for a file handle", fsevent.ErrInvalidData)
	}
	handleType := int32(id[0]) | int32(id[1])<<8 | int32(id[2])<<16 | int32(id[3])<<24
	return unix.NewFileHandle(handleType, id[4:]), nil
}
