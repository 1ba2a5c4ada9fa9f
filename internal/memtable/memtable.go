// Package memtable holds the mutable in-memory source of a column family:
// the actively-written rows that have not yet been flushed to an on-disk
// segment. Readers take snapshot copies, so a merge in flight never observes
// concurrent writes.
package memtable

import (
	"errors"
	"sort"
	"sync"

	"github.com/widetable/widetable-db/internal/widetable"
)

// Memtable is the write buffer for one column family.
type Memtable struct {
	mu         sync.RWMutex
	familyName string
	cmp        widetable.Comparator
	rows       map[string]*widetable.Family

	// rough count of bytes applied since the last clear, used by the store
	// to decide when to flush
	approxBytes int64
}

type Config struct {
	FamilyName string
	Comparator widetable.Comparator
}

func (c *Config) validate() error {
	var errGrp []error
	if c.FamilyName == "" {
		errGrp = append(errGrp, errors.New("family name is required"))
	}
	return errors.Join(errGrp...)
}

// New returns an empty memtable.
func New(cfg *Config) (*Memtable, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cmp := cfg.Comparator
	if cmp == nil {
		cmp = widetable.BytesComparator
	}
	return &Memtable{
		familyName: cfg.FamilyName,
		cmp:        cmp,
		rows:       make(map[string]*widetable.Family),
	}, nil
}

func (m *Memtable) row(key string) *widetable.Family {
	f, ok := m.rows[key]
	if !ok {
		f = widetable.NewFamily(m.familyName, m.cmp)
		m.rows[key] = f
	}
	return f
}

// Put writes a top-level column.
func (m *Memtable) Put(key string, name, value []byte, ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.row(key).Add(widetable.NewColumn(name, value, ts))
	m.approxBytes += int64(len(key) + len(name) + len(value))
}

// PutGroupColumn writes a column nested inside a group.
func (m *Memtable) PutGroupColumn(key string, group, name, value []byte, ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := widetable.NewGroup(group, m.cmp)
	g.AddColumn(widetable.NewColumn(name, value, ts))
	m.row(key).Add(g)
	m.approxBytes += int64(len(key) + len(group) + len(name) + len(value))
}

// DeleteColumn writes a column-level tombstone.
func (m *Memtable) DeleteColumn(key string, name []byte, ts, localDeletionTime int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.row(key).Add(widetable.NewDeletedColumn(name, ts, localDeletionTime))
	m.approxBytes += int64(len(key) + len(name))
}

// DeleteGroupColumn writes a tombstone for one column inside a group.
func (m *Memtable) DeleteGroupColumn(key string, group, name []byte, ts, localDeletionTime int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := widetable.NewGroup(group, m.cmp)
	g.AddColumn(widetable.NewDeletedColumn(name, ts, localDeletionTime))
	m.row(key).Add(g)
	m.approxBytes += int64(len(key) + len(group) + len(name))
}

// DeleteGroup raises a group-level tombstone.
func (m *Memtable) DeleteGroup(key string, group []byte, ts, localDeletionTime int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := widetable.NewGroup(group, m.cmp)
	g.DeleteAt(ts, localDeletionTime)
	m.row(key).Add(g)
	m.approxBytes += int64(len(key) + len(group))
}

// DeleteRow raises the row-level tombstone.
func (m *Memtable) DeleteRow(key string, ts, localDeletionTime int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.row(key).DeleteAt(ts, localDeletionTime)
	m.approxBytes += int64(len(key))
}

// Snapshot returns a read-consistent copy of the row, nil when the memtable
// has nothing for the key. Later writes never affect the returned family.
func (m *Memtable) Snapshot(key widetable.DecoratedKey) *widetable.Family {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.rows[key.Key]
	if !ok {
		return nil
	}
	return f.DeepCopy()
}

// SortedKeys returns every row key in decorated order, for flushing.
func (m *Memtable) SortedKeys() []widetable.DecoratedKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]widetable.DecoratedKey, 0, len(m.rows))
	for k := range m.rows {
		keys = append(keys, widetable.DecorateKey(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	return keys
}

// IsEmpty reports whether the memtable holds no rows.
func (m *Memtable) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows) == 0
}

// ApproximateSize is the rough number of bytes applied since creation.
func (m *Memtable) ApproximateSize() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.approxBytes
}
