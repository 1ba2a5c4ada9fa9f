// Package wal is the write-ahead log: every mutation is appended here before
// it is applied, and replayed into the memtable on startup.
package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultWalDirectory = "wal"
	defaultWALFile      = "wal.log"
)

const (
	OpWrite = iota + 1
	OpDelete
)

// Entry is one logged mutation. Which level a delete applies to follows from
// which of Group and Column are set.
type Entry struct {
	Op                int    `json:"op"`
	Key               string `json:"key"`
	Group             []byte `json:"group,omitempty"`
	Column            []byte `json:"column,omitempty"`
	Value             []byte `json:"value,omitempty"`
	Timestamp         int64  `json:"ts"`
	LocalDeletionTime int64  `json:"localDeletion,omitempty"`
}

type Manager struct {
	mu      sync.Mutex
	walFile *os.File
	path    string
}

type Config struct {
	// Path is the directory the WAL directory is created under
	Path string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("wal path cannot be empty"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	walPath := filepath.Join(cfg.Path, defaultWalDirectory, defaultWALFile)
	walDir := filepath.Dir(walPath)
	if err := os.MkdirAll(walDir, 0750); err != nil {
		return nil, errors.New("failed to create WAL directory: " + err.Error())
	}

	file, err := os.OpenFile(walPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		return nil, errors.New("failed to open WAL file: " + err.Error())
	}

	return &Manager{
		walFile: file,
		path:    walPath,
	}, nil
}

// Apply appends one entry to the log. The mutation must not be applied to the
// store until this has returned.
func (m *Manager) Apply(e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	jsonData, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err = m.walFile.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write to WAL: %w", err)
	}

	return nil
}

// Reset truncates the log. Called after the memtable it covers has been
// flushed to a segment.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.walFile.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate WAL: %w", err)
	}
	if _, err := m.walFile.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind WAL: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.walFile.Close()
}
