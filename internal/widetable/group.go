package widetable

import "sort"

// Group is a nested container: a column-like entry owning an ordered set of
// child columns plus its own tombstone, independent of its children's.
type Group struct {
	name     []byte
	cmp      Comparator
	del      *Tombstone
	children []*Column
}

// NewGroup returns an empty group ordered by cmp.
func NewGroup(name []byte, cmp Comparator) *Group {
	if cmp == nil {
		cmp = BytesComparator
	}
	return &Group{name: name, cmp: cmp}
}

func (g *Group) Name() []byte           { return g.name }
func (g *Group) Comparator() Comparator { return g.cmp }

func (g *Group) IsTombstoned() bool { return g.del != nil }

func (g *Group) MarkedForDeleteAt() int64 {
	if g.del == nil {
		return NoDeletion
	}
	return g.del.MarkedForDeleteAt
}

func (g *Group) LocalDeletionTime() int64 {
	if g.del == nil {
		return NoDeletion
	}
	return g.del.LocalDeletionTime
}

// MostRecentLiveChangeAt is the newest live change among the children; each
// child already accounts for its own tombstone.
func (g *Group) MostRecentLiveChangeAt() int64 {
	max := int64(NoDeletion)
	for _, c := range g.children {
		if at := c.MostRecentLiveChangeAt(); at > max {
			max = at
		}
	}
	return max
}

// Tombstone returns the group's own deletion marker, nil when none.
func (g *Group) Tombstone() *Tombstone { return g.del }

// DeleteAt raises the group tombstone. A weaker marker never lowers an
// existing one.
func (g *Group) DeleteAt(ts, localDeletionTime int64) {
	g.del = maxTombstone(g.del, &Tombstone{LocalDeletionTime: localDeletionTime, MarkedForDeleteAt: ts})
}

// AddColumn inserts a child in comparator order, reconciling on a name
// conflict.
func (g *Group) AddColumn(c *Column) {
	i := sort.Search(len(g.children), func(i int) bool {
		return g.cmp(g.children[i].Name(), c.Name()) >= 0
	})
	if i < len(g.children) && g.cmp(g.children[i].Name(), c.Name()) == 0 {
		g.children[i] = g.children[i].Reconcile(c)
		return
	}
	g.children = append(g.children, nil)
	copy(g.children[i+1:], g.children[i:])
	g.children[i] = c
}

// GetColumn returns the child with the given name, nil when absent.
func (g *Group) GetColumn(name []byte) *Column {
	i := sort.Search(len(g.children), func(i int) bool {
		return g.cmp(g.children[i].Name(), name) >= 0
	})
	if i < len(g.children) && g.cmp(g.children[i].Name(), name) == 0 {
		return g.children[i]
	}
	return nil
}

// Columns returns the children in comparator order. Callers must not mutate
// the returned slice.
func (g *Group) Columns() []*Column { return g.children }

func (g *Group) Len() int { return len(g.children) }

// CloneShallow copies the group's identity and tombstone without children.
func (g *Group) CloneShallow() *Group {
	return &Group{name: g.name, cmp: g.cmp, del: g.del}
}

// Reconcile folds another version of the same group into this one: children
// merge column by column and the stronger tombstone survives.
func (g *Group) Reconcile(other *Group) *Group {
	g.del = maxTombstone(g.del, other.del)
	for _, c := range other.children {
		g.AddColumn(c)
	}
	return g
}
