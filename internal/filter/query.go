package filter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/widetable/widetable-db/internal/widetable"
)

// Filter is one of the three request shapes: slice, names, identity. Each
// knows how to pull a matching ordered sequence out of one source snapshot
// and how to drain a merged sequence into a result container.
type Filter interface {
	// EntryComparator is the order entries travel through the merge in.
	EntryComparator(base widetable.Comparator) widetable.Comparator
	// IterateEntries returns a lazy single-pass sequence of matching entries
	// from one snapshot, in merge order.
	IterateEntries(f *widetable.Family) Iterator
	// FilterGroup applies the filter's purge step to a group's children
	// under gcBefore and an effective container deletion timestamp.
	FilterGroup(g *widetable.Group, gcBefore, deletedAt int64) *widetable.Group
	// CollectReduced drains reduced entries into target, enforcing the
	// filter's stop condition.
	CollectReduced(target *widetable.Family, reduced Iterator, gcBefore int64)
}

// Query is one read request: a row key, a path fixing the request
// granularity, and a filter. When the path names a group, the row level is
// walked with an implicit names filter over the group and the caller's
// filter applies inside the group.
type Query struct {
	Key  widetable.DecoratedKey
	Path Path

	filter      Filter
	groupFilter Filter
}

func newQuery(key widetable.DecoratedKey, path Path, f Filter) (*Query, error) {
	if err := path.validate(); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	q := &Query{Key: key, Path: path, filter: f}
	if len(path.Group) > 0 {
		q.groupFilter = NewNames(path.Group)
	}
	return q, nil
}

// NewSliceQuery builds a query returning the entries in [start, finish],
// walked backward when reversed, capped at count live entries.
func NewSliceQuery(key widetable.DecoratedKey, path Path, start, finish []byte, reversed bool, count int) (*Query, error) {
	if count < 1 {
		return nil, fmt.Errorf("slice count must be positive, got %d", count)
	}
	if len(path.Column) > 0 {
		return nil, errors.New("column paths take a column query, not a slice")
	}
	return newQuery(key, path, NewSlice(start, finish, reversed, count))
}

// NewNamesQuery builds a query returning the entries matching the given
// names.
func NewNamesQuery(key widetable.DecoratedKey, path Path, names ...[]byte) (*Query, error) {
	if len(names) == 0 {
		return nil, errors.New("names query requires at least one name")
	}
	for _, n := range names {
		if len(n) == 0 {
			return nil, errors.New("names query rejects empty names")
		}
	}
	if len(path.Column) > 0 {
		return nil, errors.New("column paths take a column query, not a names set")
	}
	return newQuery(key, path, NewNames(names...))
}

// NewColumnQuery builds a query returning the single column the path names.
func NewColumnQuery(key widetable.DecoratedKey, path Path) (*Query, error) {
	if len(path.Column) == 0 {
		return nil, errors.New("column query requires a column path")
	}
	return newQuery(key, path, NewNames(path.Column))
}

// NewIdentityQuery builds a query returning every entry in the row. This is
// dangerous on large rows; avoid it outside compaction and tests.
func NewIdentityQuery(key widetable.DecoratedKey, path Path) (*Query, error) {
	return newQuery(key, path, NewIdentity())
}

// outer is the filter applied at the row level.
func (q *Query) outer() Filter {
	if q.groupFilter != nil {
		return q.groupFilter
	}
	return q.filter
}

// EntryComparator is the merge order for this query's sources.
func (q *Query) EntryComparator(base widetable.Comparator) widetable.Comparator {
	return q.outer().EntryComparator(base)
}

// IterateFamily opens the per-source sequence over a snapshot container.
func (q *Query) IterateFamily(f *widetable.Family) Iterator {
	if f == nil {
		return EmptyIterator()
	}
	return q.outer().IterateEntries(f)
}

// CollectCollated reduces the collated multi-source sequence run by run and
// drains the survivors into target. The collated iterator is closed on every
// exit path, so abandoning it early never leaks source resources.
func (q *Query) CollectCollated(target *widetable.Family, collated Iterator, gcBefore int64) (err error) {
	defer func() {
		if cerr := collated.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	reduced := &reducer{
		q:        q,
		target:   target,
		source:   collated,
		scratch:  target.CloneShallow(),
		gcBefore: gcBefore,
	}
	q.outer().CollectReduced(target, reduced, gcBefore)
	return collated.Err()
}

// reducer folds runs of same-name entries from the collated sequence into
// one representative each, via the reconcile-on-add of a shallow scratch
// container. Only the current run is ever held in memory; the scratch is
// cleared between runs so allocation stays bounded on wide rows.
type reducer struct {
	q        *Query
	target   *widetable.Family
	source   Iterator
	scratch  *widetable.Family
	pending  widetable.Entry
	buffered bool
	gcBefore int64
}

func (r *reducer) Next() (widetable.Entry, bool) {
	var runName []byte
	started := false
	for {
		var e widetable.Entry
		if r.buffered {
			e, r.buffered = r.pending, false
		} else {
			var ok bool
			if e, ok = r.source.Next(); !ok {
				if !started {
					return nil, false
				}
				if out := r.reduce(); out != nil {
					return out, true
				}
				return nil, false
			}
		}

		if !started {
			started = true
			runName = e.Name()
			r.scratch.Add(e)
			continue
		}
		// run identity is byte equality of names, not full entry equality
		if bytes.Equal(e.Name(), runName) {
			r.scratch.Add(e)
			continue
		}
		r.pending, r.buffered = e, true
		if out := r.reduce(); out != nil {
			return out, true
		}
		started = false
	}
}

func (r *reducer) reduce() widetable.Entry {
	e := r.scratch.Entries()[0]
	if g, ok := e.(*widetable.Group); ok {
		// Children are judged against whichever deletion is strongest,
		// the group's own or the row's. The elevated timestamp is
		// threaded through child evaluation and never written into the
		// group, so the emitted representative keeps its persisted
		// tombstone and shared snapshots stay untouched.
		deletedAt := g.MarkedForDeleteAt()
		if r.target.MarkedForDeleteAt() > deletedAt {
			deletedAt = r.target.MarkedForDeleteAt()
		}
		// When the caller's filter applies at the row level, children are
		// still swept for relevance, just without narrowing.
		inner := r.q.filter
		if r.q.groupFilter == nil {
			inner = wholeGroup
		}
		out := inner.FilterGroup(g, r.gcBefore, deletedAt)
		// a group purged down to nothing, with no tombstone young enough to
		// matter, drops out of the row the same way an empty row drops out
		// of a read
		if out.Len() == 0 && out.LocalDeletionTime() <= r.gcBefore {
			r.scratch.Clear()
			return nil
		}
		e = out
	}
	r.scratch.Clear()
	return e
}

var wholeGroup Filter = NewIdentity()

func (r *reducer) Err() error   { return r.source.Err() }
func (r *reducer) Close() error { return r.source.Close() }
