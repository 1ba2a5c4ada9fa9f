package compaction

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/store"
	"github.com/widetable/widetable-db/internal/widetable"
)

const horizon = int64(1_000_000)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(&store.Config{FamilyName: "standard", Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return s
}

func newCompactor(t *testing.T, s *store.Store) *Compactor {
	t.Helper()
	c, err := New(&Config{Store: s})
	require.NoError(t, err)
	return c
}

func readNames(t *testing.T, s *store.Store, key string, gcBefore int64) []string {
	t.Helper()
	q, err := filter.NewIdentityQuery(widetable.DecorateKey(key), filter.NewPath("standard"))
	require.NoError(t, err)
	f, err := s.GetFamily(q, gcBefore)
	require.NoError(t, err)
	if f == nil {
		return nil
	}
	names := make([]string, 0, f.Len())
	for _, e := range f.Entries() {
		names = append(names, string(e.Name()))
	}
	return names
}

func colName(i int) []byte {
	return []byte(fmt.Sprintf("col%d", i))
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(&Config{})
	assert.Error(t, err)

	_, err = New(&Config{Store: newTestStore(t), GCGraceSeconds: -1})
	assert.Error(t, err)
}

func TestMajorCompactionPurge(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Put("key1", colName(i), []byte("v"), 0))
	}
	require.NoError(t, s.Flush())
	for i := 0; i < 10; i++ {
		require.NoError(t, s.DeleteColumn("key1", colName(i), 1, 1))
	}
	require.NoError(t, s.Flush())
	require.NoError(t, s.Put("key1", colName(5), []byte("v2"), 2))
	require.NoError(t, s.Flush())
	require.Len(t, s.Readers(), 3)

	c := newCompactor(t, s)
	require.NoError(t, c.Compact(s.Readers(), horizon))

	require.Len(t, s.Readers(), 1)
	// the purged tombstones are gone from disk, so even a read that purges
	// nothing sees only the resurrected column
	assert.Equal(t, []string{"col5"}, readNames(t, s, "key1", 0))
}

func TestMinorCompactionKeepsShadowingTombstones(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// segment 1: key1's original columns, left out of the compaction
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Put("key1", colName(i), []byte("v"), 0))
	}
	require.NoError(t, s.Flush())

	// segment 2: key1's deletions plus key2's columns
	for i := 0; i < 10; i++ {
		require.NoError(t, s.DeleteColumn("key1", colName(i), 1, 1))
		require.NoError(t, s.Put("key2", colName(i), []byte("v"), 0))
	}
	require.NoError(t, s.Flush())

	// segment 3: key2's deletions
	for i := 0; i < 10; i++ {
		require.NoError(t, s.DeleteColumn("key2", colName(i), 1, 1))
	}
	require.NoError(t, s.Flush())

	readers := s.Readers()
	require.Len(t, readers, 3)

	c := newCompactor(t, s)
	require.NoError(t, c.Compact(readers[1:], horizon))
	require.Len(t, s.Readers(), 2)

	// key2 lived entirely inside the selection, so it was purged outright
	assert.Nil(t, readNames(t, s, "key2", horizon))

	// key1 still has versions in the unselected segment; its tombstones must
	// survive the compaction and keep shadowing them
	assert.Nil(t, readNames(t, s, "key1", horizon))
	assert.Len(t, readNames(t, s, "key1", 0), 10)
}

func TestCompactionPurgesWholeSegment(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put("key1", colName(i), []byte("v"), 0))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, s.DeleteColumn("key1", colName(i), 1, 1))
	}
	require.NoError(t, s.Flush())
	require.Len(t, s.Readers(), 1)

	c := newCompactor(t, s)
	require.NoError(t, c.Compact(s.Readers(), horizon))

	assert.Empty(t, s.Readers())
	assert.Nil(t, readNames(t, s, "key1", 0))
}

func TestRowTombstoneSurvivesMinorCompaction(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.Put("key1", colName(0), []byte("v"), 0))
	require.NoError(t, s.Flush())
	require.NoError(t, s.DeleteRow("key1", 1, 1))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Put("key2", colName(0), []byte("v"), 0))
	require.NoError(t, s.Flush())

	readers := s.Readers()
	require.Len(t, readers, 3)

	// compact the tombstone segment with an unrelated one; key1's data still
	// sits in the unselected first segment
	c := newCompactor(t, s)
	require.NoError(t, c.Compact(readers[1:], horizon))

	assert.Nil(t, readNames(t, s, "key1", horizon))
}

func TestBackgroundLoopCompacts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Put("key1", colName(i), []byte("v"), int64(i)))
		require.NoError(t, s.Flush())
	}
	require.Len(t, s.Readers(), 3)

	c, err := New(&Config{Store: s, Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, c.Start())
	defer func() { require.NoError(t, c.Stop()) }()

	require.Eventually(t, func() bool {
		return len(s.Readers()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"col0", "col1", "col2"}, readNames(t, s, "key1", 0))
}

func TestMaxGCBefore(t *testing.T) {
	t.Parallel()

	now := time.Now().Unix()
	assert.InDelta(t, float64(now-3600), float64(MaxGCBefore(3600)), 2)
	assert.InDelta(t, float64(now), float64(MaxGCBefore(0)), 2)
}
