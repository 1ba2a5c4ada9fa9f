// Package store owns one column family: its memtable, its immutable segment
// readers and the row cache, and runs the read-time reconciliation pipeline
// across them.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/memtable"
	"github.com/widetable/widetable-db/internal/sstable"
	"github.com/widetable/widetable-db/internal/widetable"
)

// Store is the per-family storage engine.
type Store struct {
	mu      sync.RWMutex
	family  string
	cmp     widetable.Comparator
	dir     string
	mem     *memtable.Memtable
	readers []*sstable.Reader

	rowCache *lru.Cache[string, *widetable.Family]

	flushThreshold int64
}

type Config struct {
	FamilyName string
	// Dir is where segment files live.
	Dir        string
	Comparator widetable.Comparator
	// RowCacheSize is the number of whole rows kept in memory; 0 disables
	// the cache.
	RowCacheSize int
	// FlushThresholdBytes flushes the memtable once its approximate size
	// passes this; 0 means flush only on demand.
	FlushThresholdBytes int64
}

func (c *Config) validate() error {
	var errGrp []error
	if c.FamilyName == "" {
		errGrp = append(errGrp, errors.New("family name is required"))
	}
	if c.Dir == "" {
		errGrp = append(errGrp, errors.New("segment directory is required"))
	}
	if c.RowCacheSize < 0 {
		errGrp = append(errGrp, errors.New("row cache size cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a store for one column family.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cmp := cfg.Comparator
	if cmp == nil {
		cmp = widetable.BytesComparator
	}

	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	mem, err := memtable.New(&memtable.Config{FamilyName: cfg.FamilyName, Comparator: cmp})
	if err != nil {
		return nil, err
	}

	s := &Store{
		family:         cfg.FamilyName,
		cmp:            cmp,
		dir:            cfg.Dir,
		mem:            mem,
		flushThreshold: cfg.FlushThresholdBytes,
	}
	if cfg.RowCacheSize > 0 {
		cache, err := lru.New[string, *widetable.Family](cfg.RowCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create row cache: %w", err)
		}
		s.rowCache = cache
	}
	return s, nil
}

// Start opens every existing segment in the data directory.
func (s *Store) Start() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, sstable.SegmentFileGlob))
	if err != nil {
		return fmt.Errorf("failed to list segments: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		r, err := sstable.Open(&sstable.Config{Path: p, FamilyName: s.family, Comparator: s.cmp})
		if err != nil {
			return fmt.Errorf("failed to open segment %s: %w", p, err)
		}
		s.readers = append(s.readers, r)
	}

	log.Info().Str("family", s.family).Int("segments", len(s.readers)).Msg("store started")
	return nil
}

// Stop flushes whatever the memtable still holds.
func (s *Store) Stop() error {
	return s.Flush()
}

func (s *Store) Name() string {
	return "Store " + s.family
}

// FamilyName is the column family this store serves.
func (s *Store) FamilyName() string { return s.family }

// Comparator is the name order used by every container in this family.
func (s *Store) Comparator() widetable.Comparator { return s.cmp }

// Directory is where this store keeps its segment files.
func (s *Store) Directory() string { return s.dir }

// Readers returns the current immutable segment set.
func (s *Store) Readers() []*sstable.Reader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*sstable.Reader(nil), s.readers...)
}

// ReplaceReaders swaps a set of compacted segments for their replacement and
// removes the old files. A nil replacement just drops the old set.
func (s *Store) ReplaceReaders(old []*sstable.Reader, replacement *sstable.Reader) error {
	drop := make(map[*sstable.Reader]struct{}, len(old))
	for _, r := range old {
		drop[r] = struct{}{}
	}

	s.mu.Lock()
	kept := s.readers[:0]
	for _, r := range s.readers {
		if _, ok := drop[r]; !ok {
			kept = append(kept, r)
		}
	}
	if replacement != nil {
		kept = append(kept, replacement)
	}
	s.readers = kept
	if s.rowCache != nil {
		s.rowCache.Purge()
	}
	s.mu.Unlock()

	var errGrp []error
	for _, r := range old {
		if err := removeSegment(r.Path()); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	log.Info().Str("family", s.family).Int("removed", len(old)).Msg("segments replaced")
	return errors.Join(errGrp...)
}
