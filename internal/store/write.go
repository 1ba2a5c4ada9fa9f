package store

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/memtable"
	"github.com/widetable/widetable-db/internal/sstable"
)

// Mutations hold the read lock while they touch the memtable. Flush swaps
// the memtable out under the write lock, so the read lock pins the current
// one for the duration of the mutation and nothing lands on a retired
// memtable.

// Put writes one top-level column.
func (s *Store) Put(key string, column, value []byte, ts int64) error {
	s.mu.RLock()
	s.mem.Put(key, column, value, ts)
	s.mu.RUnlock()
	s.invalidate(key)
	return s.maybeFlush()
}

// PutGroupColumn writes one column nested under a group.
func (s *Store) PutGroupColumn(key string, group, column, value []byte, ts int64) error {
	s.mu.RLock()
	s.mem.PutGroupColumn(key, group, column, value, ts)
	s.mu.RUnlock()
	s.invalidate(key)
	return s.maybeFlush()
}

// DeleteColumn tombstones one top-level column.
func (s *Store) DeleteColumn(key string, column []byte, ts, localDeletionTime int64) error {
	s.mu.RLock()
	s.mem.DeleteColumn(key, column, ts, localDeletionTime)
	s.mu.RUnlock()
	s.invalidate(key)
	return s.maybeFlush()
}

// DeleteGroupColumn tombstones one column inside a group.
func (s *Store) DeleteGroupColumn(key string, group, column []byte, ts, localDeletionTime int64) error {
	s.mu.RLock()
	s.mem.DeleteGroupColumn(key, group, column, ts, localDeletionTime)
	s.mu.RUnlock()
	s.invalidate(key)
	return s.maybeFlush()
}

// DeleteGroup tombstones a whole group.
func (s *Store) DeleteGroup(key string, group []byte, ts, localDeletionTime int64) error {
	s.mu.RLock()
	s.mem.DeleteGroup(key, group, ts, localDeletionTime)
	s.mu.RUnlock()
	s.invalidate(key)
	return s.maybeFlush()
}

// DeleteRow tombstones the whole row.
func (s *Store) DeleteRow(key string, ts, localDeletionTime int64) error {
	s.mu.RLock()
	s.mem.DeleteRow(key, ts, localDeletionTime)
	s.mu.RUnlock()
	s.invalidate(key)
	return s.maybeFlush()
}

func (s *Store) invalidate(key string) {
	if s.rowCache != nil {
		s.rowCache.Remove(key)
	}
}

func (s *Store) maybeFlush() error {
	if s.flushThreshold <= 0 {
		return nil
	}
	s.mu.RLock()
	size := s.mem.ApproximateSize()
	s.mu.RUnlock()
	if size < s.flushThreshold {
		return nil
	}
	return s.Flush()
}

// Flush writes the memtable out as a new immutable segment and swaps in an
// empty one. Writers are held off until the swap is done.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem.IsEmpty() {
		return nil
	}

	w, err := sstable.NewWriter(s.dir)
	if err != nil {
		return err
	}
	for _, key := range s.mem.SortedKeys() {
		row := s.mem.Snapshot(key)
		if row == nil {
			continue
		}
		if err := w.Append(key, row); err != nil {
			_ = w.Abort()
			return fmt.Errorf("failed to write row %q: %w", key.Key, err)
		}
	}
	if err := w.Close(); err != nil {
		_ = w.Abort()
		return err
	}

	r, err := sstable.Open(&sstable.Config{Path: w.Path(), FamilyName: s.family, Comparator: s.cmp})
	if err != nil {
		return fmt.Errorf("failed to reopen flushed segment: %w", err)
	}

	fresh, err := memtable.New(&memtable.Config{FamilyName: s.family, Comparator: s.cmp})
	if err != nil {
		return err
	}
	s.mem = fresh
	s.readers = append(s.readers, r)

	log.Info().Str("family", s.family).Str("segment", w.Path()).Msg("memtable flushed")
	return nil
}

func removeSegment(path string) error {
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("segment", path).Msg("failed to remove segment")
		return err
	}
	return nil
}
