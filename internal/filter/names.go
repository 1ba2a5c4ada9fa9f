package filter

import (
	"sort"

	"github.com/widetable/widetable-db/internal/widetable"
)

// Names selects entries by an explicit name set, delivered in comparator
// order. The merged sequence is exhausted once every name has been resolved
// across the sources, found or absent.
type Names struct {
	names [][]byte
}

// NewNames returns a names filter over the given set.
func NewNames(names ...[]byte) *Names {
	return &Names{names: names}
}

// EntryComparator is the order entries arrive in from every source under
// this filter; names reads always run forward.
func (n *Names) EntryComparator(base widetable.Comparator) widetable.Comparator {
	return base
}

// sorted returns the requested names in cmp order.
func (n *Names) sorted(cmp widetable.Comparator) [][]byte {
	out := append([][]byte(nil), n.names...)
	sort.Slice(out, func(i, j int) bool {
		return cmp(out[i], out[j]) < 0
	})
	return out
}

// IterateEntries returns the snapshot's entries matching the name set, in
// comparator order.
func (n *Names) IterateEntries(f *widetable.Family) Iterator {
	var matched []widetable.Entry
	for _, name := range n.sorted(f.Comparator()) {
		if e := f.GetEntry(name); e != nil {
			matched = append(matched, e)
		}
	}
	return &entriesIterator{entries: matched, idx: 0, step: 1, cmp: f.Comparator()}
}

// FilterGroup rebuilds a group keeping the requested children that remain
// relevant under gcBefore and the effective container deletion timestamp.
// The rebuilt group keeps the original persisted tombstone untouched.
func (n *Names) FilterGroup(g *widetable.Group, gcBefore, deletedAt int64) *widetable.Group {
	out := g.CloneShallow()
	for _, name := range n.sorted(g.Comparator()) {
		c := g.GetColumn(name)
		if c == nil {
			continue
		}
		if IsRelevantAt(c, deletedAt, gcBefore) {
			out.AddColumn(c)
		}
	}
	return out
}

// CollectReduced drains every reduced entry that remains relevant; the
// merged sequence is already restricted to the requested names, so
// exhaustion is the stop condition.
func (n *Names) CollectReduced(target *widetable.Family, reduced Iterator, gcBefore int64) {
	for {
		e, ok := reduced.Next()
		if !ok {
			break
		}
		if IsRelevant(e, target, gcBefore) {
			target.Add(e)
		}
	}
}
