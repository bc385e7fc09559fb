package source

import "os"

// Stdin is the standard-input record source of spec.md §4.1, using the same
// `---`-separated YAML framing as File. Grounded on
// original_source/src/readers/stdin.c's fsevents_from_file (another
// "parse yaml documents" TODO stub completed here).
type Stdin struct {
	*recordReader
}

// NewStdin builds a Stdin source reading os.Stdin.
func NewStdin() *Stdin {
	return &Stdin{recordReader: newRecordReader(os.Stdin, nil)}
}
