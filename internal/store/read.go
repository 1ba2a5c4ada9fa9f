package store

import (
	"fmt"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/sstable"
	"github.com/widetable/widetable-db/internal/widetable"
)

// GetFamily runs a query against the memtable and every segment, reconciling
// duplicates and dropping entries the query's deletion horizon makes
// irrelevant. A nil result means the row is absent: nothing survived and no
// still-relevant row tombstone remains.
func (s *Store) GetFamily(q *filter.Query, gcBefore int64) (*widetable.Family, error) {
	if s.rowCache == nil {
		out, err := s.collate(q, gcBefore)
		return resolve(out, gcBefore), err
	}

	row, err := s.cachedRow(q.Key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	out, err := s.filterCached(q, row, gcBefore)
	return resolve(out, gcBefore), err
}

// cachedRow returns the whole reconciled row, reading through the cache on a
// miss. Cached rows keep their tombstones so later reads can apply their own
// horizon.
func (s *Store) cachedRow(key widetable.DecoratedKey) (*widetable.Family, error) {
	if row, ok := s.rowCache.Get(key.Key); ok {
		return row, nil
	}

	q, err := filter.NewIdentityQuery(key, filter.NewPath(s.family))
	if err != nil {
		return nil, err
	}
	row, err := s.collate(q, widetable.NoDeletion)
	if err != nil {
		return nil, err
	}
	if row != nil {
		s.rowCache.Add(key.Key, row)
	}
	return row, nil
}

// filterCached re-runs a query over one already reconciled row. The cached
// row is shared between requests and is never mutated here.
func (s *Store) filterCached(q *filter.Query, row *widetable.Family, gcBefore int64) (*widetable.Family, error) {
	target := widetable.NewFamily(s.family, s.cmp)
	target.AbsorbDeletion(row)
	collated := filter.Collate(q.EntryComparator(s.cmp), q.IterateFamily(row))
	if err := q.CollectCollated(target, collated, gcBefore); err != nil {
		return nil, err
	}
	return target, nil
}

// collate merges the query's view of every live source. The returned family
// still carries the row tombstone; resolve decides whether the row counts as
// absent.
func (s *Store) collate(q *filter.Query, gcBefore int64) (*widetable.Family, error) {
	s.mu.RLock()
	mem := s.mem
	readers := append([]*sstable.Reader(nil), s.readers...)
	s.mu.RUnlock()

	target := widetable.NewFamily(s.family, s.cmp)
	var sources []filter.Iterator
	found := false

	if snap := mem.Snapshot(q.Key); snap != nil {
		found = true
		target.AbsorbDeletion(snap)
		sources = append(sources, q.IterateFamily(snap))
	}

	for _, r := range readers {
		it, err := r.OpenIterator(q)
		if err != nil {
			closeSources(sources)
			return nil, fmt.Errorf("failed to open segment for %q: %w", q.Key.Key, err)
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
		closeSources(sources)
		return nil, nil
	}

	collated := filter.Collate(q.EntryComparator(s.cmp), sources...)
	if err := q.CollectCollated(target, collated, gcBefore); err != nil {
		return nil, err
	}
	return target, nil
}

func closeSources(sources []filter.Iterator) {
	for _, src := range sources {
		_ = src.Close()
	}
}

// resolve applies the absent rule: a family with no entries whose row
// tombstone is at or past the horizon never existed as far as the caller is
// concerned.
func resolve(f *widetable.Family, gcBefore int64) *widetable.Family {
	if f == nil {
		return nil
	}
	if f.Len() == 0 && f.LocalDeletionTime() <= gcBefore {
		return nil
	}
	return f
}
