package filter

import "math"

// Identity returns every entry in the row with no truncation. It
// materializes without bound, which is dangerous on very large rows; it
// exists for compaction, diagnostics and tests, not the serving hot path.
type Identity struct {
	Slice
}

// NewIdentity returns the identity filter.
func NewIdentity() *Identity {
	return &Identity{Slice{Count: math.MaxInt32}}
}
