package widetable

import "math"

// NoDeletion is the sentinel timestamp for "never deleted". Any real write
// timestamp compares greater than it.
const NoDeletion = math.MinInt64

// Tombstone is a deletion marker. MarkedForDeleteAt is the logical timestamp
// at or below which writes are shadowed. LocalDeletionTime is the wall-clock
// time (unix seconds) the marker was created; once a gc horizon passes it,
// the marker itself may be discarded.
type Tombstone struct {
	LocalDeletionTime int64 `json:"localDeletion"`
	MarkedForDeleteAt int64 `json:"markedAt"`
}

// Supersedes reports whether t shadows strictly more than other. A nil
// tombstone never supersedes anything.
func (t *Tombstone) Supersedes(other *Tombstone) bool {
	if t == nil {
		return false
	}
	if other == nil {
		return true
	}
	return t.MarkedForDeleteAt > other.MarkedForDeleteAt
}

// maxTombstone returns whichever marker shadows more data, preferring the
// younger LocalDeletionTime on equal logical timestamps.
func maxTombstone(a, b *Tombstone) *Tombstone {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.MarkedForDeleteAt > a.MarkedForDeleteAt ||
		(b.MarkedForDeleteAt == a.MarkedForDeleteAt && b.LocalDeletionTime > a.LocalDeletionTime) {
		return b
	}
	return a
}
