package protocol

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/widetable"
)

// readQuery are the parameters for any supported read query
type readQuery struct {
	rowKey     string
	group      string
	qualifiers []string
	start      string
	finish     string
	reversed   bool
	limit      int
}

// parseRead parses a query and returns a readQuery which is used to safely run an operation.
// If there are any errors, it will return a protocol.Error
func parseRead(input string) (*readQuery, error) {
	parts := strings.Fields(input)
	parsed := &readQuery{
		qualifiers: []string{},
		limit:      0, // 0 means no cap
	}

	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, newError(ErrInvalidFormat,
				"queries must be key=value pairs, got: %s", part)
		}

		key, value := kv[0], kv[1]

		switch key {
		case "key":
			parsed.rowKey = value
		case "group":
			parsed.group = value
		case "qualifier":
			parsed.qualifiers = append(parsed.qualifiers, value)
		case "start":
			parsed.start = value
		case "finish":
			parsed.finish = value
		case "reversed":
			parsed.reversed = value == "true"
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, newError(ErrInvalidFormat, "limit must be a number. received %s", value)
			}
			if n < 1 {
				return nil, newError(ErrInvalidFormat, "limit must be greater than 0. received %d", n)
			}
			parsed.limit = n
		default:
			return nil, newError(ErrUnknownParameter, "%s", key)
		}
	}

	if parsed.rowKey == "" {
		return nil, newError(ErrMissingKey, "missing search key: provide key")
	}

	// a names filter and a slice filter cannot be combined
	if len(parsed.qualifiers) > 0 &&
		(parsed.start != "" || parsed.finish != "" || parsed.reversed || parsed.limit > 0) {
		return nil, newError(ErrInvalidFormat,
			"qualifier filters and slice bounds are exclusive")
	}

	return parsed, nil
}

// toQuery lowers the parsed parameters into a typed query against family.
func (r *readQuery) toQuery(family string) (*filter.Query, error) {
	key := widetable.DecorateKey(r.rowKey)
	path := filter.NewPath(family)
	if r.group != "" {
		path = filter.NewGroupPath(family, []byte(r.group))
	}

	if len(r.qualifiers) > 0 {
		names := make([][]byte, 0, len(r.qualifiers))
		for _, q := range r.qualifiers {
			names = append(names, []byte(q))
		}
		return filter.NewNamesQuery(key, path, names...)
	}

	if r.start != "" || r.finish != "" || r.reversed || r.limit > 0 {
		var start, finish []byte
		if r.start != "" {
			start = []byte(r.start)
		}
		if r.finish != "" {
			finish = []byte(r.finish)
		}
		limit := r.limit
		if limit == 0 {
			limit = math.MaxInt32
		}
		return filter.NewSliceQuery(key, path, start, finish, r.reversed, limit)
	}

	return filter.NewIdentityQuery(key, path)
}

// Row is the wire shape of one read result.
type Row struct {
	Key     string     `json:"key"`
	Entries []RowEntry `json:"entries"`
}

// RowEntry is one column, or one group with its live columns.
type RowEntry struct {
	Name      string     `json:"name"`
	Value     string     `json:"value,omitempty"`
	Timestamp int64      `json:"ts,omitempty"`
	Columns   []RowEntry `json:"columns,omitempty"`
}

// Read applies a read query over the store following the widetable protocol.
func (m *Manager) Read(query []byte) ([]byte, error) {
	parsed, err := parseRead(string(query))
	if err != nil {
		return nil, err
	}

	q, err := parsed.toQuery(m.store.FamilyName())
	if err != nil {
		return nil, newError(ErrInvalidFormat, "%s", err.Error())
	}

	family, err := m.store.GetFamily(q, m.gcBefore())
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, newError(ErrNotFound, "row not found: %s", parsed.rowKey)
	}

	return json.Marshal(renderRow(parsed.rowKey, family))
}

// renderRow projects the reconciled family onto the client view: tombstones
// have done their shadowing work and are not shown.
func renderRow(key string, f *widetable.Family) *Row {
	row := &Row{Key: key, Entries: []RowEntry{}}
	for _, e := range f.Entries() {
		switch v := e.(type) {
		case *widetable.Column:
			if v.IsTombstoned() {
				continue
			}
			row.Entries = append(row.Entries, RowEntry{
				Name:      string(v.Name()),
				Value:     string(v.Value()),
				Timestamp: v.Timestamp(),
			})
		case *widetable.Group:
			entry := RowEntry{Name: string(v.Name())}
			for _, c := range v.Columns() {
				if c.IsTombstoned() {
					continue
				}
				entry.Columns = append(entry.Columns, RowEntry{
					Name:      string(c.Name()),
					Value:     string(c.Value()),
					Timestamp: c.Timestamp(),
				})
			}
			if len(entry.Columns) == 0 {
				continue
			}
			row.Entries = append(row.Entries, entry)
		}
	}
	return row
}
