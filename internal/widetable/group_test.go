package widetable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup_MostRecentLiveChangeAt(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	g := NewGroup([]byte("grp"), nil)
	req.Equal(int64(NoDeletion), g.MostRecentLiveChangeAt())

	g.AddColumn(NewColumn([]byte("a"), []byte("v"), 3))
	g.AddColumn(NewDeletedColumn([]byte("b"), 9, 100))
	req.Equal(int64(3), g.MostRecentLiveChangeAt())
}

func TestGroup_Reconcile(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	a := NewGroup([]byte("grp"), nil)
	a.AddColumn(NewColumn([]byte("x"), []byte("old"), 1))
	a.DeleteAt(2, 100)

	b := NewGroup([]byte("grp"), nil)
	b.AddColumn(NewColumn([]byte("x"), []byte("new"), 5))
	b.AddColumn(NewColumn([]byte("y"), []byte("v"), 4))

	merged := a.Reconcile(b)

	req.Equal(2, merged.Len())
	req.Equal([]byte("new"), merged.GetColumn([]byte("x")).Value())
	req.Equal(int64(2), merged.MarkedForDeleteAt())
}

func TestGroup_DeleteAtNeverLowers(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	g := NewGroup([]byte("grp"), nil)
	g.DeleteAt(7, 300)
	g.DeleteAt(2, 900)

	req.Equal(int64(7), g.MarkedForDeleteAt())
	req.Equal(int64(300), g.LocalDeletionTime())
}

func TestDecorateKey(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	k1 := DecorateKey("key1")
	k2 := DecorateKey("key1")
	req.Equal(k1, k2)
	req.Zero(k1.Compare(k2))

	k3 := DecorateKey("key2")
	req.NotZero(k1.Compare(k3))
	req.Equal(-k3.Compare(k1), k1.Compare(k3))
}
