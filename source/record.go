package source

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// recordReader decodes the `---`-separated YAML document stream shared by
// source.File and source.Stdin (SPEC_FULL.md §4.1.1). YAML decoding itself
// is the opaque collaborator spec.md §1 calls out ("YAML serialization of
// records... treated as an opaque reader producing fsevents"); recordReader
// is the thin adapter around it.
type recordReader struct {
	noAcknowledge

	closer io.Closer
	dec    *yaml.Decoder
}

func newRecordReader(r io.Reader, closer io.Closer) *recordReader {
	return &recordReader{closer: closer, dec: yaml.NewDecoder(bufio.NewReader(r))}
}

// Next decodes the next YAML document into an fsevent.Event.
func (rr *recordReader) Next(ctx context.Context) (*fsevent.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var w fsevent.Wire
	if err := rr.dec.Decode(&w); err != nil {
		if err == io.EOF {
			return nil, fsevent.ErrEndOfData
		}
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	ev, err := fsevent.FromWire(&w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fsevent.ErrInvalidData, err)
	}
	return ev, nil
}

// Close releases the underlying reader, if any.
func (rr *recordReader) Close() error {
	if rr.closer == nil {
		return nil
	}
	return rr.closer.Close()
}
