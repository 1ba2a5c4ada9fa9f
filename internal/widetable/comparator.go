package widetable

import "bytes"

// Comparator defines the total order over column names inside a container.
// All containers and all per-source iterators deliver entries in strictly
// increasing comparator order; the merge path depends on it.
type Comparator func(a, b []byte) int

// BytesComparator orders names bytewise. It is the default for every family
// unless a schema configures otherwise.
func BytesComparator(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Reversed returns the inverse order of c, used by reversed slice reads.
func (c Comparator) Reversed() Comparator {
	return func(a, b []byte) int {
		return c(b, a)
	}
}
