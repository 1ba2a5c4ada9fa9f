package protocol

import (
	"errors"
	"time"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/wal"
	"github.com/widetable/widetable-db/internal/widetable"
)

//go:generate mockgen -destination=./manager_mock.go -package=protocol -source=manager.go

// dataStore is the storage surface queries run against.
type dataStore interface {
	FamilyName() string
	GetFamily(q *filter.Query, gcBefore int64) (*widetable.Family, error)
	Put(key string, column, value []byte, ts int64) error
	PutGroupColumn(key string, group, column, value []byte, ts int64) error
	DeleteColumn(key string, column []byte, ts, localDeletionTime int64) error
	DeleteGroupColumn(key string, group, column []byte, ts, localDeletionTime int64) error
	DeleteGroup(key string, group []byte, ts, localDeletionTime int64) error
	DeleteRow(key string, ts, localDeletionTime int64) error
}

// writeAhead logs a mutation before it is applied.
type writeAhead interface {
	Apply(e *wal.Entry) error
}

type Manager struct {
	store      dataStore
	writeAhead writeAhead
	gcGrace    int64
}

type Config struct {
	Store dataStore
	WAL   writeAhead
	// GCGraceSeconds is how long tombstones stay eligible for reconciliation
	// before reads may treat them as gone.
	GCGraceSeconds int64
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store is required"))
	}
	if c.WAL == nil {
		errGrp = append(errGrp, errors.New("write-ahead log is required"))
	}
	if c.GCGraceSeconds < 0 {
		errGrp = append(errGrp, errors.New("gc grace cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a new protocol manager
func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Manager{
		store:      cfg.Store,
		writeAhead: cfg.WAL,
		gcGrace:    cfg.GCGraceSeconds,
	}, nil
}

// gcBefore is the purge horizon for a request starting now.
func (m *Manager) gcBefore() int64 {
	return time.Now().Unix() - m.gcGrace
}
