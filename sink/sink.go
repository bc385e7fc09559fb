// Package sink implements the two destination variants of spec.md §4.5:
// a YAML record file/stdout sink and a metadata-index backend sink, behind
// the shared Sink contract the driver (package pipeline) depends on.
//
// Grounded on original_source/src/sinks/file.c (the sink side of the
// same `---`-separated YAML framing source/record.go decodes) and on
// spec.md §1's explicit "concrete metadata-index wire protocol... out of
// scope," which is why sink.Backend is modeled against an Uploader
// interface instead of a named third-party client.
package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// ErrUsage marks a destination argument that does not parse, surfaced as
// the CLI's usage-error exit code (spec.md §6 EX_USAGE).
var ErrUsage = fmt.Errorf("usage error")

// Sink is the destination contract of spec.md §4.5: Process drains batch
// and durably records (or forwards) every event it yields; Close releases
// any held resource. Implementations form the same closed set as Source
// and Enricher (spec.md §9).
type Sink interface {
	Process(ctx context.Context, batch fsevent.Iterator) error
	Close() error
}

// Kind distinguishes the two destination shapes a DESTINATION argument can
// name.
type Kind int

const (
	// KindFile is the stdout/file YAML record sink ("-" or a path).
	KindFile Kind = iota
	// KindBackend is the rbh:<backend>:<name> metadata-index sink.
	KindBackend
)

// ParseDestination parses the CLI's DESTINATION argument (spec.md §6):
// "-" or a path selects KindFile, and "rbh:<backend>:<name>" selects
// KindBackend. The rbh: triple is rewritten to "rbh://backend/name" before
// handing it to net/url.Parse, since Go's URL parser has no notion of a
// third colon-delimited segment — adapted from rclone's own colon-delimited
// remote-string convention (fs/newfs_test.go's ":mockfs:/tmp" addressing)
// to this spec's differing grammar.
func ParseDestination(s string) (Kind, *url.URL, error) {
	if s == "" {
		return 0, nil, fmt.Errorf("%w: empty destination", ErrUsage)
	}
	if s == "-" || !strings.HasPrefix(s, "rbh:") {
		return KindFile, nil, nil
	}

	rest := strings.TrimPrefix(s, "rbh:")
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, nil, fmt.Errorf("%w: malformed backend destination %q, want rbh:<backend>:<name>", ErrUsage, s)
	}

	u, err := url.Parse(fmt.Sprintf("rbh://%s/%s", parts[0], parts[1]))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return KindBackend, u, nil
}
