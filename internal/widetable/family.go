package widetable

import "sort"

// Container is any entity carrying a container-level tombstone that can
// shadow its members: a row-level Family or a nested Group.
type Container interface {
	IsTombstoned() bool
	MarkedForDeleteAt() int64
}

// Family is the top-level row container: an ordered set of entries (plain
// columns or groups) plus a row-level tombstone.
type Family struct {
	name    string
	cmp     Comparator
	del     *Tombstone
	entries []Entry
}

// NewFamily returns an empty row container for the named column family.
func NewFamily(name string, cmp Comparator) *Family {
	if cmp == nil {
		cmp = BytesComparator
	}
	return &Family{name: name, cmp: cmp}
}

func (f *Family) Name() string           { return f.name }
func (f *Family) Comparator() Comparator { return f.cmp }

func (f *Family) IsTombstoned() bool { return f.del != nil }

func (f *Family) MarkedForDeleteAt() int64 {
	if f.del == nil {
		return NoDeletion
	}
	return f.del.MarkedForDeleteAt
}

func (f *Family) LocalDeletionTime() int64 {
	if f.del == nil {
		return NoDeletion
	}
	return f.del.LocalDeletionTime
}

// Tombstone returns the row-level deletion marker, nil when none.
func (f *Family) Tombstone() *Tombstone { return f.del }

// DeleteAt raises the row tombstone. A weaker marker never lowers an
// existing one.
func (f *Family) DeleteAt(ts, localDeletionTime int64) {
	f.del = maxTombstone(f.del, &Tombstone{LocalDeletionTime: localDeletionTime, MarkedForDeleteAt: ts})
}

// AbsorbDeletion raises the row tombstone to the other family's, used when
// collating the same row from several sources.
func (f *Family) AbsorbDeletion(other *Family) {
	if other == nil {
		return
	}
	f.del = maxTombstone(f.del, other.del)
}

// Add inserts an entry in comparator order, reconciling on a name conflict.
// Same-name entries are the same kind by schema; on a kind mismatch the
// incoming entry replaces the existing one.
func (f *Family) Add(e Entry) {
	i := sort.Search(len(f.entries), func(i int) bool {
		return f.cmp(f.entries[i].Name(), e.Name()) >= 0
	})
	if i < len(f.entries) && f.cmp(f.entries[i].Name(), e.Name()) == 0 {
		f.entries[i] = reconcileEntries(f.entries[i], e)
		return
	}
	f.entries = append(f.entries, nil)
	copy(f.entries[i+1:], f.entries[i:])
	f.entries[i] = e
}

func reconcileEntries(existing, incoming Entry) Entry {
	switch ex := existing.(type) {
	case *Column:
		if in, ok := incoming.(*Column); ok {
			return ex.Reconcile(in)
		}
	case *Group:
		if in, ok := incoming.(*Group); ok {
			return ex.Reconcile(in)
		}
	}
	return incoming
}

// GetEntry returns the entry with the given name, nil when absent.
func (f *Family) GetEntry(name []byte) Entry {
	i := sort.Search(len(f.entries), func(i int) bool {
		return f.cmp(f.entries[i].Name(), name) >= 0
	})
	if i < len(f.entries) && f.cmp(f.entries[i].Name(), name) == 0 {
		return f.entries[i]
	}
	return nil
}

// Entries returns the entries in comparator order. Callers must not mutate
// the returned slice.
func (f *Family) Entries() []Entry { return f.entries }

func (f *Family) Len() int { return len(f.entries) }

// CloneShallow copies the family's identity and tombstone without entries.
// The merge path uses it as the scratch fold container.
func (f *Family) CloneShallow() *Family {
	return &Family{name: f.name, cmp: f.cmp, del: f.del}
}

// Clear drops all entries, keeping identity and tombstone, so the scratch
// container can be reused between merge runs.
func (f *Family) Clear() {
	f.entries = f.entries[:0]
}

// DeepCopy returns a snapshot of the family that later writers cannot
// affect. Columns are immutable and shared; groups are copied because their
// child sets mutate in place.
func (f *Family) DeepCopy() *Family {
	cp := &Family{name: f.name, cmp: f.cmp, del: f.del}
	cp.entries = make([]Entry, len(f.entries))
	for i, e := range f.entries {
		if g, ok := e.(*Group); ok {
			gc := g.CloneShallow()
			gc.children = append([]*Column(nil), g.children...)
			cp.entries[i] = gc
		} else {
			cp.entries[i] = e
		}
	}
	return cp
}
