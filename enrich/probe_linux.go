//go:build linux

package enrich

import "golang.org/x/sys/unix"

// llSuperMagic is Lustre's client filesystem magic number
// (LL_SUPER_MAGIC in lustre/include/uapi/linux/lustre/lustre_user.h),
// returned in statfs(2)'s f_type field for any mounted Lustre client.
const llSuperMagic = 0x0BD00BD0

// ProbeKind derives the default enricher Kind for mountpoint by reading
// its filesystem magic number via statfs(2) (SPEC_FULL.md §6): Lustre's
// magic selects Lustre, anything else selects POSIX.
func ProbeKind(mountpoint string) (Kind, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mountpoint, &st); err != nil {
		return 0, err
	}
	if int64(st.Type) == llSuperMagic {
		return Lustre, nil
	}
	return POSIX, nil
}
