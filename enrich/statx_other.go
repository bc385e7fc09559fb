//go:build !linux

package enrich

import (
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// ErrStatxUnsupported marks a platform without the Linux statx(2) syscall
// this enricher relies on, matching rclone's own linux/other split for
// metadata extraction (backend/local/metadata_linux.go vs
// backend/local/metadata_other.go).
var ErrStatxUnsupported = fmt.Errorf("statx resolution requires linux")

func resolveStatx(fd int, mask fsevent.StatxMask) (*fsevent.Statx, error) {
	return nil, ErrStatxUnsupported
}
