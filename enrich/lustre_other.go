//go:build !linux

package enrich

import (
	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

func resolveFidPath(m *mount, parentID fsevent.Id, name string, a *arena) (string, error) {
	return "", ErrLustreUnsupported
}

func resolveLustreAttrs(fd int, a *arena) (*fsevent.Xattrs, error) {
	return nil, ErrLustreUnsupported
}
