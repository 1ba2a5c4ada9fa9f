package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/widetable/widetable-db/internal/wal"
)

type writeColumn struct {
	name  string
	value string
}

type writeQuery struct {
	rowKey    string
	group     string
	columns   []writeColumn
	timestamp int64
}

// parseWrite parses a write query. Qualifiers pair with the value that
// follows them:
//
//	key=user:1 qualifier=status value=active qualifier=age value=30
func parseWrite(input string) (*writeQuery, error) {
	parts := strings.Fields(input)
	parsed := &writeQuery{}

	var pendingQualifier string
	havePending := false

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
			if havePending {
				return nil, newError(ErrInvalidFormat,
					"qualifier %s has no value", pendingQualifier)
			}
			pendingQualifier = value
			havePending = true
		case "value":
			if !havePending {
				return nil, newError(ErrInvalidFormat, "value without a preceding qualifier")
			}
			parsed.columns = append(parsed.columns, writeColumn{name: pendingQualifier, value: value})
			havePending = false
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
	if havePending {
		return nil, newError(ErrInvalidFormat, "qualifier %s has no value", pendingQualifier)
	}
	if len(parsed.columns) == 0 {
		return nil, newError(ErrInvalidFormat, "write requires at least one qualifier/value pair")
	}

	if parsed.timestamp == 0 {
		parsed.timestamp = time.Now().UnixMicro()
	}

	return parsed, nil
}

// Write logs and applies a write query.
func (m *Manager) Write(query []byte) ([]byte, error) {
	parsed, err := parseWrite(string(query))
	if err != nil {
		return nil, err
	}

	for _, col := range parsed.columns {
		entry := &wal.Entry{
			Op:        wal.OpWrite,
			Key:       parsed.rowKey,
			Column:    []byte(col.name),
			Value:     []byte(col.value),
			Timestamp: parsed.timestamp,
		}
		if parsed.group != "" {
			entry.Group = []byte(parsed.group)
		}
		if err := m.writeAhead.Apply(entry); err != nil {
			return nil, err
		}

		if parsed.group != "" {
			err = m.store.PutGroupColumn(parsed.rowKey, []byte(parsed.group), []byte(col.name), []byte(col.value), parsed.timestamp)
		} else {
			err = m.store.Put(parsed.rowKey, []byte(col.name), []byte(col.value), parsed.timestamp)
		}
		if err != nil {
			return nil, err
		}
	}

	return json.Marshal(map[string]any{
		"key":     parsed.rowKey,
		"written": len(parsed.columns),
		"ts":      parsed.timestamp,
	})
}
