package widetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_Reconcile(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		left     *Column
		right    *Column
		expected *Column
	}{
		"newer live write wins": {
			left:     NewColumn([]byte("q"), []byte("old"), 1),
			right:    NewColumn([]byte("q"), []byte("new"), 2),
			expected: NewColumn([]byte("q"), []byte("new"), 2),
		},
		"tombstone shadows older write": {
			left:     NewColumn([]byte("q"), []byte("v"), 1),
			right:    NewDeletedColumn([]byte("q"), 2, 100),
			expected: NewDeletedColumn([]byte("q"), 2, 100),
		},
		"write after tombstone resurrects": {
			left:     NewDeletedColumn([]byte("q"), 1, 100),
			right:    NewColumn([]byte("q"), []byte("v"), 2),
			expected: NewColumn([]byte("q"), []byte("v"), 2),
		},
		"tombstone wins timestamp tie": {
			left:     NewColumn([]byte("q"), []byte("v"), 5),
			right:    NewDeletedColumn([]byte("q"), 5, 100),
			expected: NewDeletedColumn([]byte("q"), 5, 100),
		},
		"live tie breaks on value bytes": {
			left:     NewColumn([]byte("q"), []byte("aaa"), 5),
			right:    NewColumn([]byte("q"), []byte("bbb"), 5),
			expected: NewColumn([]byte("q"), []byte("bbb"), 5),
		},
		"tied tombstones keep the younger marker": {
			left:     NewDeletedColumn([]byte("q"), 5, 100),
			right:    NewDeletedColumn([]byte("q"), 5, 200),
			expected: NewDeletedColumn([]byte("q"), 5, 200),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := tc.left.Reconcile(tc.right)
			assert.Equal(t, tc.expected, got)

			// the rule is commutative
			flipped := tc.right.Reconcile(tc.left)
			assert.Equal(t, tc.expected, flipped)
		})
	}
}

func TestColumn_ReconcileOrderIndependence(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	versions := []*Column{
		NewColumn([]byte("q"), []byte("a"), 1),
		NewDeletedColumn([]byte("q"), 3, 100),
		NewColumn([]byte("q"), []byte("b"), 2),
		NewColumn([]byte("q"), []byte("c"), 4),
		NewDeletedColumn([]byte("q"), 3, 200),
	}

	fold := func(order []int) *Column {
		acc := versions[order[0]]
		for _, i := range order[1:] {
			acc = acc.Reconcile(versions[i])
		}
		return acc
	}

	want := fold([]int{0, 1, 2, 3, 4})
	req.Equal([]byte("c"), want.Value())

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{1, 3, 0, 4, 2},
		{2, 0, 4, 3, 1},
		{0, 2, 1, 3, 4},
	}
	for _, p := range permutations {
		req.Equal(want, fold(p))
	}
}

func TestColumn_MostRecentLiveChangeAt(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	live := NewColumn([]byte("q"), []byte("v"), 7)
	req.Equal(int64(7), live.MostRecentLiveChangeAt())

	dead := NewDeletedColumn([]byte("q"), 7, 100)
	req.Equal(int64(NoDeletion), dead.MostRecentLiveChangeAt())
	req.True(dead.IsTombstoned())
	req.Equal(int64(7), dead.MarkedForDeleteAt())
	req.Equal(int64(100), dead.LocalDeletionTime())
}
