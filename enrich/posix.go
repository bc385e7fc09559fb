package enrich

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// posixResolver implements the POSIX resolution operations of spec.md
// §4.3: open-by-id, statx resolution, symlink resolution.
type posixResolver struct {
	mount *mount
}

// New builds a POSIX enricher rooted at the given mountpoint (spec.md §6's
// -e MOUNTPOINT).
func New(mountpoint string) (*Enricher, error) {
	m, err := openMount(mountpoint)
	if err != nil {
		return nil, err
	}
	return wrap(nil, POSIX, &posixResolver{mount: m}), nil
}

// Wrap attaches in as the enricher's input iterator. Kept separate from New
// so the same resolver (and its open mount fd) can be reused across
// batches without reopening the mount, matching spec.md §5's "must be kept
// open for the enricher's lifetime."
func (e *Enricher) Wrap(in fsevent.Iterator) *Enricher {
	e.in = in
	return e
}

func (r *posixResolver) close() error {
	return r.mount.Close()
}

func (r *posixResolver) resolve(ctx context.Context, req fsevent.EnrichRequest, original, out *fsevent.Event, a *arena) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	if req.IsEmpty() {
		return 0, nil
	}

	fd, err := openByID(r.mount, original.Id, false)
	if err != nil {
		return 0, fmt.Errorf("open-by-id: %w", err)
	}
	defer unix.Close(fd)

	return r.resolveOpen(fd, req, out, a)
}

// resolveOpen performs statx/symlink resolution against an already-open fd,
// shared by the POSIX and Lustre resolvers (Lustre delegates the common
// parts to posixResolve, per spec.md §4.3's dispatch description).
func (r *posixResolver) resolveOpen(fd int, req fsevent.EnrichRequest, out *fsevent.Event, a *arena) (int, error) {
	n := 0

	if req.WantStatx {
		statx, err := resolveStatx(fd, req.Statx)
		if err != nil {
			return n, fmt.Errorf("statx resolution: %w", err)
		}
		out.Statx = statx
		n++
	}

	if req.WantSymlink {
		target, err := resolveSymlink(fd, a)
		if err != nil {
			return n, fmt.Errorf("symlink resolution: %w", err)
		}
		out.SetSymlinkTarget(target)
		n++
	}

	if len(req.XattrKinds) > 0 {
		resolved, err := resolveXattrs(fd, req.XattrKinds, a)
		if err != nil {
			return n, fmt.Errorf("xattrs resolution: %w", err)
		}
		if resolved != nil {
			for _, key := range resolved.Keys() {
				v, _ := resolved.Get(key)
				out.Xattrs.Set(key, v)
				n++
			}
		}
	}

	return n, nil
}

// resolveSymlink reads the symlink target from the open fd (spec.md §4.3).
func resolveSymlink(fd int, a *arena) (string, error) {
	buf := make([]byte, unix.PathMax)
	n, err := unix.Readlinkat(fd, "", buf)
	if err != nil {
		return "", err
	}
	return a.string(string(buf[:n])), nil
}
