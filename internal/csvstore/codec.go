package csvstore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// newReader returns a csv reader that requires every row to have the same
// number of fields as the first one (the header).
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	return cr
}

// readErr classifies an error returned by csv.Reader.Read.
func readErr(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %s line %d: %w", types.ErrMalformed, path, pe.Line, pe.Err)
	}
	return fmt.Errorf("%w: reading %s: %w", types.ErrIO, path, err)
}

// readHeader returns the first row of the file at path.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := newReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s has no header", types.ErrMalformed, path)
	}
	if err != nil {
		return nil, readErr(path, err)
	}
	return header, nil
}

// encodeRow returns rec as one csv line, newline included.
func encodeRow(rec []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rec); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
