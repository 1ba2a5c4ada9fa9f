package filter

import (
	"github.com/widetable/widetable-db/internal/widetable"
)

// Iterator is a lazy, finite, single-pass sequence of entries in merge
// order. Iterators over on-disk sources hold open resources until Close;
// callers must close them on every exit path, including early abandonment.
type Iterator interface {
	Next() (widetable.Entry, bool)
	// Err reports the first failure encountered while producing entries.
	// It is meaningful once Next has returned false.
	Err() error
	Close() error
}

// entriesIterator walks a pre-sorted entry slice taken from an in-memory
// snapshot. It owns no resources.
type entriesIterator struct {
	entries []widetable.Entry
	idx     int
	step    int
	finish  []byte
	cmp     widetable.Comparator
}

func (it *entriesIterator) Next() (widetable.Entry, bool) {
	if it.idx < 0 || it.idx >= len(it.entries) {
		return nil, false
	}
	e := it.entries[it.idx]
	if len(it.finish) > 0 {
		// finish is inclusive; step direction decides which side is "past"
		c := it.cmp(e.Name(), it.finish)
		if (it.step > 0 && c > 0) || (it.step < 0 && c < 0) {
			return nil, false
		}
	}
	it.idx += it.step
	return e, true
}

func (it *entriesIterator) Err() error   { return nil }
func (it *entriesIterator) Close() error { return nil }

// emptyIterator yields nothing; used when a source has no data for the row.
type emptyIterator struct{}

func (emptyIterator) Next() (widetable.Entry, bool) { return nil, false }
func (emptyIterator) Err() error                    { return nil }
func (emptyIterator) Close() error                  { return nil }

// EmptyIterator returns an iterator with no entries.
func EmptyIterator() Iterator { return emptyIterator{} }
