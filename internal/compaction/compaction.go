// Package compaction rewrites sets of immutable segments into one, folding
// duplicate versions of each row and purging tombstones that are past the
// grace horizon and provably invisible everywhere else.
package compaction

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/sstable"
	"github.com/widetable/widetable-db/internal/widetable"
)

// Store is the slice of the storage engine compaction needs.
type Store interface {
	FamilyName() string
	Comparator() widetable.Comparator
	Directory() string
	Readers() []*sstable.Reader
	ReplaceReaders(old []*sstable.Reader, replacement *sstable.Reader) error
}

// Compactor periodically merges a store's segments.
type Compactor struct {
	store    Store
	gcGrace  int64
	interval time.Duration
	minSeg   int

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

type Config struct {
	Store Store
	// GCGraceSeconds is how long tombstones must be kept before a purge may
	// consider them.
	GCGraceSeconds int64
	// Interval between background compaction checks; 0 disables the loop.
	Interval time.Duration
	// MinSegments is how many segments must exist before the background loop
	// compacts.
	MinSegments int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store is required"))
	}
	if c.GCGraceSeconds < 0 {
		errGrp = append(errGrp, errors.New("gc grace cannot be negative"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Compactor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	minSeg := cfg.MinSegments
	if minSeg < 2 {
		minSeg = 2
	}
	return &Compactor{
		store:    cfg.Store,
		gcGrace:  cfg.GCGraceSeconds,
		interval: cfg.Interval,
		minSeg:   minSeg,
	}, nil
}

// MaxGCBefore is the newest horizon a compaction may purge against given the
// configured grace period.
func MaxGCBefore(gcGraceSeconds int64) int64 {
	return time.Now().Unix() - gcGraceSeconds
}

// Start launches the background loop when an interval is configured.
func (c *Compactor) Start() error {
	if c.interval <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
	return nil
}

func (c *Compactor) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}
	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
	return nil
}

func (c *Compactor) Name() string {
	return "Compactor " + c.store.FamilyName()
}

func (c *Compactor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			readers := c.store.Readers()
			if len(readers) < c.minSeg {
				continue
			}
			if err := c.Compact(readers, MaxGCBefore(c.gcGrace)); err != nil {
				log.Error().Err(err).Str("family", c.store.FamilyName()).Msg("compaction failed")
			}
		}
	}
}

// Compact merges the selected segments into one and atomically swaps them in
// the store. A row is purged against gcBefore only when every segment that
// could hold an older version of it is part of the selection; otherwise its
// tombstones are carried forward untouched.
func (c *Compactor) Compact(selected []*sstable.Reader, gcBefore int64) error {
	if len(selected) == 0 {
		return nil
	}

	inSelection := make(map[*sstable.Reader]struct{}, len(selected))
	for _, r := range selected {
		inSelection[r] = struct{}{}
	}
	var unselected []*sstable.Reader
	for _, r := range c.store.Readers() {
		if _, ok := inSelection[r]; !ok {
			unselected = append(unselected, r)
		}
	}

	w, err := sstable.NewWriter(c.store.Directory())
	if err != nil {
		return err
	}

	rows := 0
	for _, key := range unionKeys(selected) {
		horizon := gcBefore
		for _, r := range unselected {
			if r.HasKey(key) {
				horizon = widetable.NoDeletion
				break
			}
		}

		row, err := c.collateRow(key, selected, horizon)
		if err != nil {
			_ = w.Abort()
			return err
		}
		if row == nil {
			continue
		}
		if err := w.Append(key, row); err != nil {
			_ = w.Abort()
			return fmt.Errorf("failed to write compacted row %q: %w", key.Key, err)
		}
		rows++
	}

	if rows == 0 {
		_ = w.Abort()
		log.Info().Str("family", c.store.FamilyName()).Int("segments", len(selected)).Msg("compaction emptied selection")
		return c.store.ReplaceReaders(selected, nil)
	}

	if err := w.Close(); err != nil {
		return err
	}
	out, err := sstable.Open(&sstable.Config{
		Path:       w.Path(),
		FamilyName: c.store.FamilyName(),
		Comparator: c.store.Comparator(),
	})
	if err != nil {
		return fmt.Errorf("failed to reopen compacted segment: %w", err)
	}

	log.Info().
		Str("family", c.store.FamilyName()).
		Int("segments", len(selected)).
		Int("rows", rows).
		Msg("compaction finished")
	return c.store.ReplaceReaders(selected, out)
}

// collateRow reconciles one row across the selected segments only.
func (c *Compactor) collateRow(key widetable.DecoratedKey, selected []*sstable.Reader, gcBefore int64) (*widetable.Family, error) {
	q, err := filter.NewIdentityQuery(key, filter.NewPath(c.store.FamilyName()))
	if err != nil {
		return nil, err
	}

	target := widetable.NewFamily(c.store.FamilyName(), c.store.Comparator())
	var sources []filter.Iterator
	found := false
	for _, r := range selected {
		it, err := r.OpenIterator(q)
		if err != nil {
			for _, src := range sources {
				_ = src.Close()
			}
			return nil, err
		}
		row := it.ColumnFamily()
		if row == nil {
			_ = it.Close()
			continue
		}
		found = true
		target.AbsorbDeletion(row)
		sources = append(sources, it)
	}
	if !found {
		return nil, nil
	}

	collated := filter.Collate(q.EntryComparator(c.store.Comparator()), sources...)
	if err := q.CollectCollated(target, collated, gcBefore); err != nil {
		return nil, err
	}
	if target.Len() == 0 && target.LocalDeletionTime() <= gcBefore {
		return nil, nil
	}
	return target, nil
}

// unionKeys is the deduplicated union of row keys over the selection, in
// decorated order.
func unionKeys(selected []*sstable.Reader) []widetable.DecoratedKey {
	var keys []widetable.DecoratedKey
	for _, r := range selected {
		keys = append(keys, r.Keys()...)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	out := keys[:0]
	for i, k := range keys {
		if i == 0 || keys[i-1].Compare(k) != 0 {
			out = append(out, k)
		}
	}
	return out
}
