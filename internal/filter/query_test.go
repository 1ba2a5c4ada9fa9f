package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widetable/widetable-db/internal/widetable"
)

var testKey = widetable.DecorateKey("row1")

func newFamily(t *testing.T) *widetable.Family {
	t.Helper()
	return widetable.NewFamily("main", nil)
}

// collectFrom runs the full merge-reduce pipeline over in-memory source
// families, the way the store does for a read.
func collectFrom(t *testing.T, q *Query, gcBefore int64, sources ...*widetable.Family) *widetable.Family {
	t.Helper()
	target := widetable.NewFamily("main", nil)
	iters := make([]Iterator, 0, len(sources))
	for _, src := range sources {
		target.AbsorbDeletion(src)
		iters = append(iters, q.IterateFamily(src))
	}
	collated := Collate(q.EntryComparator(widetable.BytesComparator), iters...)
	require.NoError(t, q.CollectCollated(target, collated, gcBefore))
	return target
}

func names(f *widetable.Family) []string {
	out := make([]string, 0, f.Len())
	for _, e := range f.Entries() {
		out = append(out, string(e.Name()))
	}
	return out
}

func TestQueryConstruction_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		build func() (*Query, error)
	}{
		"slice with zero count": {
			build: func() (*Query, error) {
				return NewSliceQuery(testKey, NewPath("main"), nil, nil, false, 0)
			},
		},
		"names with empty set": {
			build: func() (*Query, error) {
				return NewNamesQuery(testKey, NewPath("main"))
			},
		},
		"names with empty name": {
			build: func() (*Query, error) {
				return NewNamesQuery(testKey, NewPath("main"), []byte("a"), nil)
			},
		},
		"missing family": {
			build: func() (*Query, error) {
				return NewIdentityQuery(testKey, NewPath(""))
			},
		},
		"column query without column": {
			build: func() (*Query, error) {
				return NewColumnQuery(testKey, NewPath("main"))
			},
		},
		"slice on a column path": {
			build: func() (*Query, error) {
				return NewSliceQuery(testKey, NewColumnPath("main", nil, []byte("c")), nil, nil, false, 1)
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			q, err := tc.build()
			assert.Error(t, err)
			assert.Nil(t, q)
		})
	}
}

func TestCollate_ReconcileOrderIndependence(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	// three versions of the same column spread over three sources
	mkSources := func() []*widetable.Family {
		a := widetable.NewFamily("main", nil)
		a.Add(widetable.NewColumn([]byte("q"), []byte("v1"), 1))
		b := widetable.NewFamily("main", nil)
		b.Add(widetable.NewDeletedColumn([]byte("q"), 2, 100))
		c := widetable.NewFamily("main", nil)
		c.Add(widetable.NewColumn([]byte("q"), []byte("v3"), 3))
		return []*widetable.Family{a, b, c}
	}

	var results []*widetable.Family
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}, {2, 0, 1}}
	for _, order := range orders {
		q, err := NewIdentityQuery(testKey, NewPath("main"))
		req.NoError(err)
		src := mkSources()
		permuted := make([]*widetable.Family, len(order))
		for i, j := range order {
			permuted[i] = src[j]
		}
		results = append(results, collectFrom(t, q, 0, permuted...))
	}

	for _, r := range results {
		req.Equal(1, r.Len())
		col, ok := r.GetEntry([]byte("q")).(*widetable.Column)
		req.True(ok)
		req.Equal([]byte("v3"), col.Value())
		req.Equal(int64(3), col.Timestamp())
	}
}

func TestCollate_TiedTombstonesMergeOrderIndependent(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	// two sources each carry a marker for the same column at the same
	// timestamp, but written at different wall-clock seconds; whichever
	// source comes first, the younger marker must survive so a horizon
	// between the two always keeps it
	mkSources := func() []*widetable.Family {
		a := widetable.NewFamily("main", nil)
		a.Add(widetable.NewDeletedColumn([]byte("q"), 5, 100))
		b := widetable.NewFamily("main", nil)
		b.Add(widetable.NewDeletedColumn([]byte("q"), 5, 200))
		return []*widetable.Family{a, b}
	}

	const gcBefore = 150
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		q, err := NewIdentityQuery(testKey, NewPath("main"))
		req.NoError(err)
		src := mkSources()
		out := collectFrom(t, q, gcBefore, src[order[0]], src[order[1]])

		req.Equal(1, out.Len())
		req.Equal(int64(200), out.GetEntry([]byte("q")).LocalDeletionTime())
	}
}

func TestCollect_TombstonePurgeAfterFullMerge(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	// 10 columns written at ts 0, all deleted at ts 1, one resurrected at 2
	inserts := widetable.NewFamily("main", nil)
	for i := 0; i < 10; i++ {
		inserts.Add(widetable.NewColumn([]byte(fmt.Sprintf("%d", i)), nil, 0))
	}
	deletes := widetable.NewFamily("main", nil)
	for i := 0; i < 10; i++ {
		deletes.Add(widetable.NewDeletedColumn([]byte(fmt.Sprintf("%d", i)), 1, 50))
	}
	resurrect := widetable.NewFamily("main", nil)
	resurrect.Add(widetable.NewColumn([]byte("5"), nil, 2))

	q, err := NewIdentityQuery(testKey, NewPath("main"))
	req.NoError(err)

	// gc horizon past every tombstone: only the resurrected column survives
	result := collectFrom(t, q, 1_000_000, inserts, deletes, resurrect)
	req.Equal([]string{"5"}, names(result))

	// a horizon that predates the tombstones keeps them all
	q2, err := NewIdentityQuery(testKey, NewPath("main"))
	req.NoError(err)
	kept := collectFrom(t, q2, 0, inserts, deletes, resurrect)
	req.Equal(10, kept.Len())
}

func TestSlice_CountOnlyLiveColumns(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	src.Add(widetable.NewDeletedColumn([]byte("a"), 1, 5_000))
	src.Add(widetable.NewColumn([]byte("b"), []byte("v"), 2))
	src.Add(widetable.NewDeletedColumn([]byte("c"), 1, 5_000))
	src.Add(widetable.NewColumn([]byte("d"), []byte("v"), 2))
	src.Add(widetable.NewColumn([]byte("e"), []byte("v"), 2))

	q, err := NewSliceQuery(testKey, NewPath("main"), nil, nil, false, 2)
	req.NoError(err)

	result := collectFrom(t, q, 0, src)

	// two live columns collected; the young tombstones passed on the way are
	// retained but never count against the budget
	req.Equal([]string{"a", "b", "c", "d"}, names(result))
}

func TestSlice_ReversedWalk(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	for _, n := range []string{"a", "b", "c", "d"} {
		src.Add(widetable.NewColumn([]byte(n), []byte("v"), 1))
	}

	q, err := NewSliceQuery(testKey, NewPath("main"), nil, nil, true, 2)
	req.NoError(err)

	result := collectFrom(t, q, 0, src)
	req.Equal([]string{"c", "d"}, names(result))
}

func TestSlice_Bounds(t *testing.T) {
	t.Parallel()

	src := widetable.NewFamily("main", nil)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		src.Add(widetable.NewColumn([]byte(n), []byte("v"), 1))
	}

	tests := map[string]struct {
		start, finish string
		reversed      bool
		expected      []string
	}{
		"inclusive both ends":   {start: "b", finish: "d", expected: []string{"b", "c", "d"}},
		"open start":            {finish: "b", expected: []string{"a", "b"}},
		"open finish":           {start: "d", expected: []string{"d", "e"}},
		"reversed within range": {start: "b", finish: "d", reversed: true, expected: []string{"b", "c", "d"}},
		"empty range":           {start: "x", expected: []string{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var start, finish []byte
			if tc.start != "" {
				start = []byte(tc.start)
			}
			if tc.finish != "" {
				finish = []byte(tc.finish)
			}
			q, err := NewSliceQuery(testKey, NewPath("main"), start, finish, tc.reversed, 100)
			require.NoError(t, err)
			result := collectFrom(t, q, 0, src)
			assert.Equal(t, tc.expected, names(result))
		})
	}
}

func TestNames_ResolvesAcrossSources(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	a := widetable.NewFamily("main", nil)
	a.Add(widetable.NewColumn([]byte("x"), []byte("old"), 1))
	a.Add(widetable.NewColumn([]byte("skip"), []byte("v"), 1))
	b := widetable.NewFamily("main", nil)
	b.Add(widetable.NewColumn([]byte("x"), []byte("new"), 2))
	b.Add(widetable.NewColumn([]byte("y"), []byte("v"), 1))

	q, err := NewNamesQuery(testKey, NewPath("main"), []byte("y"), []byte("x"), []byte("absent"))
	req.NoError(err)

	result := collectFrom(t, q, 0, a, b)
	req.Equal([]string{"x", "y"}, names(result))
	col := result.GetEntry([]byte("x")).(*widetable.Column)
	req.Equal([]byte("new"), col.Value())
}

func TestIdentity_Completeness(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	for i := 0; i < 100; i++ {
		src.Add(widetable.NewColumn([]byte(fmt.Sprintf("%03d", i)), []byte("v"), 1))
	}

	q, err := NewIdentityQuery(testKey, NewPath("main"))
	req.NoError(err)

	result := collectFrom(t, q, 0, src)
	req.Equal(100, result.Len())
	got := names(result)
	for i := 1; i < len(got); i++ {
		req.Less(got[i-1], got[i])
	}
}

func TestRowTombstone_ShadowsOlderEntries(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	src.Add(widetable.NewColumn([]byte("old"), []byte("v"), 1))
	src.Add(widetable.NewColumn([]byte("new"), []byte("v"), 5))
	src.DeleteAt(3, 100)

	q, err := NewIdentityQuery(testKey, NewPath("main"))
	req.NoError(err)

	result := collectFrom(t, q, 0, src)

	// only the entry written after the row tombstone survives
	req.Equal([]string{"new"}, names(result))
	req.Equal(int64(3), result.MarkedForDeleteAt())
}

func TestGroupPath_TombstoneElevationIsTransient(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	// group tombstone at ts 2, row tombstone at ts 5: children are judged
	// against ts 5, but the group's own marker must come out unchanged
	src := widetable.NewFamily("main", nil)
	g := widetable.NewGroup([]byte("grp"), nil)
	g.AddColumn(widetable.NewColumn([]byte("dead"), []byte("v"), 4))
	g.AddColumn(widetable.NewColumn([]byte("live"), []byte("v"), 6))
	g.DeleteAt(2, 100)
	src.Add(g)
	src.DeleteAt(5, 100)

	q, err := NewSliceQuery(testKey, NewGroupPath("main", []byte("grp")), nil, nil, false, 100)
	req.NoError(err)

	result := collectFrom(t, q, 0, src)

	req.Equal(1, result.Len())
	got, ok := result.GetEntry([]byte("grp")).(*widetable.Group)
	req.True(ok)

	// child at ts 4 is shadowed by the elevated (row) tombstone, ts 6 lives
	req.Nil(got.GetColumn([]byte("dead")))
	req.NotNil(got.GetColumn([]byte("live")))

	// the emitted group's persisted marker is its own, not the elevated one
	req.Equal(int64(2), got.MarkedForDeleteAt())
	// and the source snapshot was never mutated
	req.Equal(int64(2), g.MarkedForDeleteAt())
}

func TestGroupPath_OwnTombstoneStronger(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	g := widetable.NewGroup([]byte("grp"), nil)
	g.AddColumn(widetable.NewColumn([]byte("a"), []byte("v"), 3))
	g.AddColumn(widetable.NewColumn([]byte("b"), []byte("v"), 8))
	g.DeleteAt(7, 100)
	src.Add(g)

	q, err := NewSliceQuery(testKey, NewGroupPath("main", []byte("grp")), nil, nil, false, 100)
	req.NoError(err)

	result := collectFrom(t, q, 0, src)
	got := result.GetEntry([]byte("grp")).(*widetable.Group)
	req.Nil(got.GetColumn([]byte("a")))
	req.NotNil(got.GetColumn([]byte("b")))
	req.Equal(int64(7), got.MarkedForDeleteAt())
}

func TestRowLevelQuery_SweepsGroupChildren(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	g := widetable.NewGroup([]byte("grp"), nil)
	g.AddColumn(widetable.NewColumn([]byte("keep"), []byte("v"), 5))
	g.AddColumn(widetable.NewDeletedColumn([]byte("dead"), 1, 10))
	src.Add(g)

	gone := widetable.NewGroup([]byte("gone"), nil)
	gone.AddColumn(widetable.NewDeletedColumn([]byte("x"), 1, 10))
	src.Add(gone)

	q, err := NewIdentityQuery(testKey, NewPath("main"))
	req.NoError(err)

	// past the horizon, group children are purged and an emptied group drops
	// out of the row entirely
	result := collectFrom(t, q, 1_000_000, src)
	req.Equal([]string{"grp"}, names(result))
	got := result.GetEntry([]byte("grp")).(*widetable.Group)
	req.Equal(1, got.Len())
	req.NotNil(got.GetColumn([]byte("keep")))

	// before the horizon everything is still relevant
	q2, err := NewIdentityQuery(testKey, NewPath("main"))
	req.NoError(err)
	kept := collectFrom(t, q2, 0, src)
	req.Equal([]string{"gone", "grp"}, names(kept))
	req.Equal(2, kept.GetEntry([]byte("grp")).(*widetable.Group).Len())
}

func TestCollectCollated_ClosesSourcesOnEarlyStop(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	src := widetable.NewFamily("main", nil)
	for _, n := range []string{"a", "b", "c", "d"} {
		src.Add(widetable.NewColumn([]byte(n), []byte("v"), 1))
	}

	q, err := NewSliceQuery(testKey, NewPath("main"), nil, nil, false, 1)
	req.NoError(err)

	tracked := &closeTracking{Iterator: q.IterateFamily(src)}
	target := widetable.NewFamily("main", nil)
	collated := Collate(widetable.BytesComparator, tracked)
	req.NoError(q.CollectCollated(target, collated, 0))

	// count satisfied after one live column; the source still gets closed
	req.Equal(1, target.Len())
	req.True(tracked.closed)
}

type closeTracking struct {
	Iterator
	closed bool
}

func (c *closeTracking) Close() error {
	c.closed = true
	return c.Iterator.Close()
}
