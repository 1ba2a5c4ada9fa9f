package filter

import (
	"github.com/widetable/widetable-db/internal/widetable"
)

// IsRelevant decides whether a reduced entry survives into the result, given
// the gc horizon and the enclosing container. Both clauses are load-bearing:
//
//  1. the entry itself must not be gc-able: it is live, or its tombstone is
//     too young to purge, or a later write resurrected it;
//  2. if the container is deleted, the entry must have changed more recently
//     than the container tombstone, since otherwise the container tombstone
//     alone carries all the information.
//
// When in doubt this predicate retains: purging is only correct when the
// horizon and the source set are known to be complete.
func IsRelevant(e widetable.Entry, container widetable.Container, gcBefore int64) bool {
	return IsRelevantAt(e, container.MarkedForDeleteAt(), gcBefore)
}

// IsRelevantAt is IsRelevant with the container's deletion timestamp threaded
// explicitly. The group purge path passes an elevated timestamp here instead
// of mutating the group's tombstone, so shared snapshots are never written.
func IsRelevantAt(e widetable.Entry, containerDeletedAt, gcBefore int64) bool {
	maxChange := e.MostRecentLiveChangeAt()
	return (!e.IsTombstoned() || e.LocalDeletionTime() > gcBefore || maxChange > e.MarkedForDeleteAt()) &&
		(containerDeletedAt == widetable.NoDeletion || maxChange > containerDeletedAt)
}

// isLive reports whether an entry counts against a slice filter's count
// budget: not itself tombstoned and not shadowed by the container tombstone.
func isLive(e widetable.Entry, containerDeletedAt int64) bool {
	return !e.IsTombstoned() &&
		(containerDeletedAt == widetable.NoDeletion || e.MostRecentLiveChangeAt() > containerDeletedAt)
}
