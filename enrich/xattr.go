package enrich

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/xattr"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// xattrKindPrefixes maps a requested "xattrs" kind tag (spec.md §3's
// xattrs sub-key) to the on-disk extended attribute namespace it resolves,
// the closest POSIX equivalent of the original enricher's per-kind
// xattr lists (original_source/src/enrichers/internals.h).
var xattrKindPrefixes = map[string]string{
	"lustre": "lustre.",
	"user":   "user.",
}

// xattrIsNotSupported reports whether err indicates the underlying
// filesystem has no xattr support at all, as opposed to the requested
// attribute simply being absent.
//
// Grounded on backend/local/xattr.go's xattrIsNotSupported: xattrs not
// supported surfaces as ENOTSUP, ENOATTR or (on some platforms) EINVAL.
func xattrIsNotSupported(err error) bool {
	xerr, ok := err.(*xattr.Error)
	if !ok {
		return false
	}
	return xerr.Err == syscall.EINVAL || xerr.Err == syscall.ENOTSUP || xerr.Err == xattr.ENOATTR
}

// resolveXattrs lists and reads every extended attribute on fd whose name
// falls under one of the requested kinds, folding each into a Value keyed
// by its full attribute name (spec.md §4.3's xattrs resolution, grounded on
// backend/local/xattr.go's getXattr: List then Get per key, tolerating "not
// supported" as an empty result rather than an error).
func resolveXattrs(fd int, kinds []string, a *arena) (*fsevent.Xattrs, error) {
	f := os.NewFile(uintptr(fd), "")
	defer f.Close()

	names, err := xattr.FList(f)
	if err != nil {
		if xattrIsNotSupported(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read xattr: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	out := fsevent.NewXattrs()
	for _, name := range names {
		kind, ok := matchXattrKind(name, kinds)
		if !ok {
			continue
		}
		v, err := xattr.FGet(f, name)
		if err != nil {
			if xattrIsNotSupported(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read xattr key %q: %w", name, err)
		}
		out.Set(kind+":"+name, fsevent.NewBinary(a.bytes(v)))
	}
	return out, nil
}

// matchXattrKind reports whether name falls under one of the requested
// kinds' namespace prefix, returning that kind.
func matchXattrKind(name string, kinds []string) (string, bool) {
	for _, kind := range kinds {
		prefix, ok := xattrKindPrefixes[kind]
		if !ok {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			return kind, true
		}
	}
	return "", false
}
