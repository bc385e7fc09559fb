// Package source implements the fsevent sources of spec.md §4.1: a local
// record file, standard input, a Lustre MDT changelog, and (an
// original addition) a synthetic self-test generator.
package source

import (
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// ErrUnsupported is returned by Acknowledge on sources that do not support
// upstream confirmation (spec.md §4.1).
var ErrUnsupported = fmt.Errorf("operation not supported by this source")

// Source extends fsevent.Iterator with optional acknowledgement, matching
// original_source/include/source.h's source_acknowledge wrapper (ENOTSUP
// when the source's vtable entry is nil, modeled here as ErrUnsupported).
type Source interface {
	fsevent.Iterator

	// Acknowledge confirms consumption through the index-th yielded event.
	// Sources that don't support it return ErrUnsupported.
	Acknowledge(index uint64) error
}

// noAcknowledge is embedded by sources with no upstream confirmation
// protocol (the file, stdin, and example sources).
type noAcknowledge struct{}

func (noAcknowledge) Acknowledge(index uint64) error {
	return ErrUnsupported
}
