package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/widetable/widetable-db/internal/widetable"
)

func newTestManager(t *testing.T) (*Manager, *MockdataStore, *MockwriteAhead) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := NewMockdataStore(ctrl)
	walMock := NewMockwriteAhead(ctrl)
	m, err := New(&Config{Store: store, WAL: walMock, GCGraceSeconds: 3600})
	require.NoError(t, err)
	return m, store, walMock
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	tests := map[string]struct {
		cfg *Config
	}{
		"missing store":    {cfg: &Config{WAL: NewMockwriteAhead(ctrl)}},
		"missing wal":      {cfg: &Config{Store: NewMockdataStore(ctrl)}},
		"negative g grace": {cfg: &Config{Store: NewMockdataStore(ctrl), WAL: NewMockwriteAhead(ctrl), GCGraceSeconds: -1}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := New(tc.cfg)
			require.Error(t, err)
			require.Nil(t, m)
		})
	}
}

func TestManager_Read(t *testing.T) {
	req := require.New(t)
	m, store, _ := newTestManager(t)

	family := widetable.NewFamily("standard", nil)
	family.Add(widetable.NewColumn([]byte("age"), []byte("30"), 7))
	family.Add(widetable.NewDeletedColumn([]byte("ghost"), 9, 100))
	g := widetable.NewGroup([]byte("contacts"), nil)
	g.AddColumn(widetable.NewColumn([]byte("email"), []byte("a@b.c"), 3))
	family.Add(g)

	store.EXPECT().FamilyName().Return("standard")
	store.EXPECT().GetFamily(gomock.Any(), gomock.Any()).Return(family, nil)

	out, err := m.Read([]byte("key=user:1"))
	req.NoError(err)

	var row Row
	req.NoError(json.Unmarshal(out, &row))
	req.Equal("user:1", row.Key)

	// tombstoned column is not rendered
	req.Len(row.Entries, 2)
	req.Equal("age", row.Entries[0].Name)
	req.Equal("30", row.Entries[0].Value)
	req.Equal(int64(7), row.Entries[0].Timestamp)
	req.Equal("contacts", row.Entries[1].Name)
	req.Len(row.Entries[1].Columns, 1)
	req.Equal("email", row.Entries[1].Columns[0].Name)
}

func TestManager_Read_NotFound(t *testing.T) {
	req := require.New(t)
	m, store, _ := newTestManager(t)

	store.EXPECT().FamilyName().Return("standard")
	store.EXPECT().GetFamily(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := m.Read([]byte("key=missing"))
	req.True(errors.Is(err, ErrNotFound))
}

func TestManager_Read_StoreError(t *testing.T) {
	req := require.New(t)
	m, store, _ := newTestManager(t)

	store.EXPECT().FamilyName().Return("standard")
	store.EXPECT().GetFamily(gomock.Any(), gomock.Any()).Return(nil, errors.New("segment unreadable"))

	_, err := m.Read([]byte("key=user:1"))
	req.Error(err)
	req.Contains(err.Error(), "segment unreadable")
}

func TestManager_Read_ParseErrorNeverTouchesStore(t *testing.T) {
	req := require.New(t)
	m, _, _ := newTestManager(t)

	_, err := m.Read([]byte("qualifier=a"))
	req.True(errors.Is(err, ErrMissingKey))
}
