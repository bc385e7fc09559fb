package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// File is the stdout/file sink of spec.md §4.5: every event becomes one
// `---`-separated YAML document, the inverse framing of source.File's
// recordReader. Grounded on original_source/src/sinks/file.c's
// sink_from_file (the writer counterpart to source/file.go's reader).
type File struct {
	w   io.Writer
	enc *yaml.Encoder
	c   io.Closer
}

// NewFile opens path (truncating/creating it) and builds a File sink
// writing to it.
func NewFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening sink file %q: %w", path, err)
	}
	return &File{w: f, enc: yaml.NewEncoder(f), c: f}, nil
}

// NewStdout builds a File sink writing to os.Stdout ("-" in spec.md §6).
func NewStdout() *File {
	return &File{w: os.Stdout, enc: yaml.NewEncoder(os.Stdout)}
}

// Process writes every event in batch as a YAML document until batch is
// exhausted.
func (f *File) Process(ctx context.Context, batch fsevent.Iterator) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := batch.Next(ctx)
		if err != nil {
			if errors.Is(err, fsevent.ErrEndOfData) {
				return nil
			}
			return fmt.Errorf("reading batch: %w", err)
		}

		w, err := ev.ToWire()
		if err != nil {
			return fmt.Errorf("encoding event %s: %w", ev.Id.Hex(), err)
		}
		if err := f.enc.Encode(w); err != nil {
			return fmt.Errorf("writing event %s: %w", ev.Id.Hex(), err)
		}
	}
}

// Close flushes the YAML encoder and closes the underlying file, if any.
func (f *File) Close() error {
	if err := f.enc.Close(); err != nil {
		return fmt.Errorf("closing yaml encoder: %w", err)
	}
	if f.c == nil {
		return nil
	}
	return f.c.Close()
}

var _ Sink = (*File)(nil)
