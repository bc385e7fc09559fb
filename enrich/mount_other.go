//go:build !linux

package enrich

import (
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// ErrOpenByIDUnsupported marks a platform without name_to_handle_at(2)/
// open_by_handle_at(2), the Linux-only primitive POSIX open-by-id relies on.
var ErrOpenByIDUnsupported = fmt.Errorf("open-by-id requires linux")

func openByHandle(m *mount, id fsevent.Id) (int, error) {
	return -1, ErrOpenByIDUnsupported
}
