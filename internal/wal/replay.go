package wal

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
)

// mutable is the write surface replay feeds.
type mutable interface {
	Put(key string, column, value []byte, ts int64) error
	PutGroupColumn(key string, group, column, value []byte, ts int64) error
	DeleteColumn(key string, column []byte, ts, localDeletionTime int64) error
	DeleteGroupColumn(key string, group, column []byte, ts, localDeletionTime int64) error
	DeleteGroup(key string, group []byte, ts, localDeletionTime int64) error
	DeleteRow(key string, ts, localDeletionTime int64) error
}

// Replay applies every logged mutation to target, in log order. Malformed
// lines are skipped so one torn write cannot block startup.
func (m *Manager) Replay(target mutable) error {
	file, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	replayed := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Warn().Err(err).Msg("skipping malformed WAL entry")
			continue
		}

		if err := m.apply(target, &entry); err != nil {
			return err
		}
		replayed++
	}

	log.Info().Int("entries", replayed).Msg("WAL replayed")
	return scanner.Err()
}

func (m *Manager) apply(target mutable, e *Entry) error {
	switch e.Op {
	case OpWrite:
		if len(e.Group) > 0 {
			return target.PutGroupColumn(e.Key, e.Group, e.Column, e.Value, e.Timestamp)
		}
		return target.Put(e.Key, e.Column, e.Value, e.Timestamp)

	case OpDelete:
		switch {
		case len(e.Group) > 0 && len(e.Column) > 0:
			return target.DeleteGroupColumn(e.Key, e.Group, e.Column, e.Timestamp, e.LocalDeletionTime)
		case len(e.Group) > 0:
			return target.DeleteGroup(e.Key, e.Group, e.Timestamp, e.LocalDeletionTime)
		case len(e.Column) > 0:
			return target.DeleteColumn(e.Key, e.Column, e.Timestamp, e.LocalDeletionTime)
		default:
			return target.DeleteRow(e.Key, e.Timestamp, e.LocalDeletionTime)
		}

	default:
		log.Warn().Int("op", e.Op).Msg("unknown WAL operation, skipping")
		return nil
	}
}
