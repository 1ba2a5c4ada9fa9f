package sstable

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/widetable"
)

const segmentFilePattern = "segment-%s.db"

// SegmentFileGlob matches segment files inside a data directory.
const SegmentFileGlob = "segment-*.db"

// Writer produces one write-once segment file. Rows must arrive in strictly
// increasing decorated key order; the finished file is immutable.
type Writer struct {
	path    string
	file    *os.File
	bw      *bufio.Writer
	lastKey *widetable.DecoratedKey
	rows    int
}

// NewWriter creates a fresh segment file in dir, named by a generated id.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, errors.New("segment directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create segment directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf(segmentFilePattern, uuid.NewString()))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to create segment file: %w", err)
	}

	return &Writer{path: path, file: file, bw: bufio.NewWriter(file)}, nil
}

// Path is the segment file being written.
func (w *Writer) Path() string { return w.path }

// Append writes one row record. Keys out of decorated order are rejected;
// the merge path depends on segment order.
func (w *Writer) Append(key widetable.DecoratedKey, f *widetable.Family) error {
	if w.lastKey != nil && w.lastKey.Compare(key) >= 0 {
		return fmt.Errorf("row %q appended out of order", key.Key)
	}
	line, err := encodeRow(key, f)
	if err != nil {
		return fmt.Errorf("failed to encode row %q: %w", key.Key, err)
	}
	if _, err := w.bw.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write row %q: %w", key.Key, err)
	}
	k := key
	w.lastKey = &k
	w.rows++
	return nil
}

// Close flushes and syncs the segment. The file is complete afterward.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to flush segment: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to sync segment: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close segment: %w", err)
	}

	log.Debug().Str("segment", filepath.Base(w.path)).Int("rows", w.rows).Msg("segment sealed")
	return nil
}

// Abort discards the partially written segment.
func (w *Writer) Abort() error {
	_ = w.file.Close()
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove aborted segment: %w", err)
	}
	return nil
}
