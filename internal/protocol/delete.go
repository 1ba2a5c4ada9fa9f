package protocol

import (
	"strconv"
	"strings"
	"time"

	"github.com/widetable/widetable-db/internal/wal"
)

type deleteQuery struct {
	rowKey     string
	group      string
	qualifiers []string
	timestamp  int64
}

func parseDelete(input string) (*deleteQuery, error) {
	parts := strings.Fields(input)
	parsed := &deleteQuery{
		qualifiers: []string{},
	}

	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, newError(ErrInvalidFormat, "queries must be key=value pairs, got: %s", part)
		}

		key, value := kv[0], kv[1]

		switch key {
		case "key":
			parsed.rowKey = value
		case "group":
			parsed.group = value
		case "qualifier":
			parsed.qualifiers = append(parsed.qualifiers, value)
		case "timestamp":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, newError(ErrInvalidFormat, "timestamp must be a number. received %s", value)
			}
			parsed.timestamp = ts
		default:
			return nil, newError(ErrUnknownParameter, "%s", key)
		}
	}

	if parsed.rowKey == "" {
		return nil, newError(ErrMissingKey, "missing search key: provide key")
	}

	// a delete shadows everything at or before its timestamp
	if parsed.timestamp == 0 {
		parsed.timestamp = time.Now().UnixMicro()
	}

	return parsed, nil
}

// Delete logs and applies a delete query. The scope follows from what is
// present: qualifiers tombstone columns, a bare group tombstones the group,
// a bare key tombstones the row.
func (m *Manager) Delete(query []byte) error {
	parsed, err := parseDelete(string(query))
	if err != nil {
		return err
	}

	// wall-clock second the tombstone was created; the purge horizon is
	// measured against this
	localDeletion := time.Now().Unix()

	apply := func(entry *wal.Entry) error {
		if err := m.writeAhead.Apply(entry); err != nil {
			return err
		}
		switch {
		case len(entry.Group) > 0 && len(entry.Column) > 0:
			return m.store.DeleteGroupColumn(entry.Key, entry.Group, entry.Column, entry.Timestamp, entry.LocalDeletionTime)
		case len(entry.Group) > 0:
			return m.store.DeleteGroup(entry.Key, entry.Group, entry.Timestamp, entry.LocalDeletionTime)
		case len(entry.Column) > 0:
			return m.store.DeleteColumn(entry.Key, entry.Column, entry.Timestamp, entry.LocalDeletionTime)
		default:
			return m.store.DeleteRow(entry.Key, entry.Timestamp, entry.LocalDeletionTime)
		}
	}

	if len(parsed.qualifiers) == 0 {
		entry := &wal.Entry{
			Op:                wal.OpDelete,
			Key:               parsed.rowKey,
			Timestamp:         parsed.timestamp,
			LocalDeletionTime: localDeletion,
		}
		if parsed.group != "" {
			entry.Group = []byte(parsed.group)
		}
		return apply(entry)
	}

	for _, q := range parsed.qualifiers {
		entry := &wal.Entry{
			Op:                wal.OpDelete,
			Key:               parsed.rowKey,
			Column:            []byte(q),
			Timestamp:         parsed.timestamp,
			LocalDeletionTime: localDeletion,
		}
		if parsed.group != "" {
			entry.Group = []byte(parsed.group)
		}
		if err := apply(entry); err != nil {
			return err
		}
	}
	return nil
}
