package filter

import (
	"sort"

	"github.com/widetable/widetable-db/internal/widetable"
)

// Slice selects a contiguous range of entries. Start and Finish are
// inclusive bounds in comparator order; empty means unbounded on that side.
// Reversed walks from the finish bound backward. Count caps the number of
// live (non-purged) entries collected; purged entries do not consume the
// budget.
type Slice struct {
	Start    []byte
	Finish   []byte
	Reversed bool
	Count    int
}

// NewSlice returns a slice filter over [start, finish].
func NewSlice(start, finish []byte, reversed bool, count int) *Slice {
	return &Slice{Start: start, Finish: finish, Reversed: reversed, Count: count}
}

// EntryComparator is the order entries arrive in from every source under
// this filter.
func (s *Slice) EntryComparator(base widetable.Comparator) widetable.Comparator {
	if s.Reversed {
		return base.Reversed()
	}
	return base
}

// sliceWalk computes the starting index, step and stop bound for walking a
// sorted set of n names under the slice. lookup(i) returns the i-th name.
func (s *Slice) sliceWalk(n int, cmp widetable.Comparator, lookup func(int) []byte) (idx, step int, stop []byte) {
	if s.Reversed {
		step = -1
		stop = s.Start
		if len(s.Finish) == 0 {
			idx = n - 1
		} else {
			// largest name <= finish
			idx = sort.Search(n, func(i int) bool {
				return cmp(lookup(i), s.Finish) > 0
			}) - 1
		}
		return idx, step, stop
	}

	step = 1
	stop = s.Finish
	if len(s.Start) == 0 {
		idx = 0
	} else {
		// smallest name >= start
		idx = sort.Search(n, func(i int) bool {
			return cmp(lookup(i), s.Start) >= 0
		})
	}
	return idx, step, stop
}

// pastStop reports whether name falls outside the slice in walk direction.
func (s *Slice) pastStop(name, stop []byte, cmp widetable.Comparator) bool {
	if len(stop) == 0 {
		return false
	}
	c := cmp(name, stop)
	return (!s.Reversed && c > 0) || (s.Reversed && c < 0)
}

// IterateEntries returns the snapshot's entries inside the slice bounds, in
// walk order.
func (s *Slice) IterateEntries(f *widetable.Family) Iterator {
	entries := f.Entries()
	cmp := f.Comparator()
	idx, step, stop := s.sliceWalk(len(entries), cmp, func(i int) []byte {
		return entries[i].Name()
	})
	return &entriesIterator{entries: entries, idx: idx, step: step, finish: stop, cmp: cmp}
}

// FilterGroup rebuilds a group, keeping the children inside the slice bounds
// that remain relevant. deletedAt is the effective container deletion
// timestamp for child evaluation; the rebuilt group keeps the original
// persisted tombstone untouched.
func (s *Slice) FilterGroup(g *widetable.Group, gcBefore, deletedAt int64) *widetable.Group {
	out := g.CloneShallow()
	cols := g.Columns()
	cmp := g.Comparator()
	idx, step, stop := s.sliceWalk(len(cols), cmp, func(i int) []byte {
		return cols[i].Name()
	})

	live := 0
	for ; idx >= 0 && idx < len(cols); idx += step {
		if live >= s.Count {
			break
		}
		c := cols[idx]
		if s.pastStop(c.Name(), stop, cmp) {
			break
		}
		if isLive(c, deletedAt) {
			live++
		}
		if IsRelevantAt(c, deletedAt, gcBefore) {
			out.AddColumn(c)
		}
	}
	return out
}

// CollectReduced drains reduced entries into target until Count live entries
// are collected, the stop bound is passed, or the sequence ends. Relevant
// tombstoned entries are still collected so they can shadow stale replicas,
// but they never count against the budget.
func (s *Slice) CollectReduced(target *widetable.Family, reduced Iterator, gcBefore int64) {
	cmp := target.Comparator()
	stop := s.Finish
	if s.Reversed {
		stop = s.Start
	}
	live := 0
	for {
		if live >= s.Count {
			break
		}
		e, ok := reduced.Next()
		if !ok {
			break
		}
		if s.pastStop(e.Name(), stop, cmp) {
			break
		}
		if isLive(e, target.MarkedForDeleteAt()) {
			live++
		}
		if IsRelevant(e, target, gcBefore) {
			target.Add(e)
		}
	}
}
