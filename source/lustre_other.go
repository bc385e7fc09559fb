//go:build !linux

package source

func openChangelog(mdtname string) (lustreReader, error) {
	return nil, ErrLustreUnsupported
}
