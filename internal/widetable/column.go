package widetable

import "bytes"

// Entry is one element of a container: either a plain Column or a Group of
// columns. Entries are ordered by Name under the container's comparator.
type Entry interface {
	Name() []byte
	// IsTombstoned reports whether the entry carries its own deletion marker.
	IsTombstoned() bool
	// MarkedForDeleteAt is the logical timestamp of the entry's own
	// tombstone, or NoDeletion when it has none.
	MarkedForDeleteAt() int64
	// LocalDeletionTime is the wall-clock second the entry's tombstone was
	// written, or NoDeletion when it has none.
	LocalDeletionTime() int64
	// MostRecentLiveChangeAt is the timestamp of the most recent write to the
	// entry that is not shadowed by the entry's own tombstone, or NoDeletion
	// when every write is shadowed.
	MostRecentLiveChangeAt() int64
}

// Column is the leaf unit of storage: a named value with a write timestamp
// and, for deletes, a tombstone.
type Column struct {
	name  []byte
	value []byte
	ts    int64
	del   *Tombstone
}

// NewColumn returns a live column.
func NewColumn(name, value []byte, ts int64) *Column {
	return &Column{name: name, value: value, ts: ts}
}

// NewDeletedColumn returns a column-level tombstone written at ts.
// localDeletionTime is the wall-clock second of the delete.
func NewDeletedColumn(name []byte, ts, localDeletionTime int64) *Column {
	return &Column{
		name: name,
		ts:   ts,
		del:  &Tombstone{LocalDeletionTime: localDeletionTime, MarkedForDeleteAt: ts},
	}
}

func (c *Column) Name() []byte  { return c.name }
func (c *Column) Value() []byte { return c.value }

// Timestamp is the logical timestamp of the write that produced this version.
func (c *Column) Timestamp() int64 { return c.ts }

func (c *Column) IsTombstoned() bool { return c.del != nil }

func (c *Column) MarkedForDeleteAt() int64 {
	if c.del == nil {
		return NoDeletion
	}
	return c.del.MarkedForDeleteAt
}

func (c *Column) LocalDeletionTime() int64 {
	if c.del == nil {
		return NoDeletion
	}
	return c.del.LocalDeletionTime
}

func (c *Column) MostRecentLiveChangeAt() int64 {
	if c.del == nil {
		return c.ts
	}
	if c.ts > c.del.MarkedForDeleteAt {
		return c.ts
	}
	return NoDeletion
}

// Tombstone returns the column's deletion marker, nil for live columns.
func (c *Column) Tombstone() *Tombstone { return c.del }

// Reconcile resolves two versions of the same column name into one. The rule
// must stay commutative and associative: folding any permutation of versions
// yields the same survivor.
//
// Tombstones win timestamp ties against live data; live ties break on value
// bytes so replicas converge on identical results.
func (c *Column) Reconcile(other *Column) *Column {
	if c.IsTombstoned() {
		if other.IsTombstoned() && c.ts == other.ts {
			// two markers at the same timestamp keep the younger wall clock,
			// like maxTombstone, so the survivor does not depend on which
			// source arrived first
			if other.LocalDeletionTime() > c.LocalDeletionTime() {
				return other
			}
			return c
		}
		if c.ts < other.ts {
			return other
		}
		return c
	}
	if other.IsTombstoned() {
		if c.ts > other.ts {
			return c
		}
		return other
	}
	if c.ts == other.ts {
		if bytes.Compare(c.value, other.value) < 0 {
			return other
		}
		return c
	}
	if c.ts < other.ts {
		return other
	}
	return c
}
