// Package index writes the optional m3u index file for a sync target:
// one path per line, UTF-8, playlist order, listing every item locally
// satisfied by the end of the run.
package index

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// PathFor returns the index file location for a sync directory: a .m3u
// named after the directory, placed next to it.
func PathFor(location string) string {
	return filepath.Join(filepath.Dir(location), filepath.Base(location)+".m3u")
}

// Writer appends entries to an index file as reconciliation proceeds.
type Writer struct {
	path string
	file *os.File
	buf  *bufio.Writer
}

// Create removes any previous index for location and opens a fresh one.
// A missing previous index is not an error.
func Create(location string) (*Writer, error) {
	path := PathFor(location)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove old index %q: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create index %q: %w", path, err)
	}
	return &Writer{path: path, file: file, buf: bufio.NewWriter(file)}, nil
}

// Path returns the index file location.
func (w *Writer) Path() string {
	return w.path
}

// Add appends one entry path, newline-terminated.
func (w *Writer) Add(entryPath string) error {
	if _, err := fmt.Fprintln(w.buf, entryPath); err != nil {
		return fmt.Errorf("write index entry: %w", err)
	}
	return nil
}

// Close flushes buffered entries and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("flush index %q: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close index %q: %w", w.path, err)
	}
	return nil
}
