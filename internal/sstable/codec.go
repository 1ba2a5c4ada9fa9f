package sstable

import (
	"encoding/json"
	"fmt"

	"github.com/widetable/widetable-db/internal/widetable"
)

// Segment files hold one JSON row record per line, in decorated key order.
// The encoding mirrors the in-memory model one to one; only the shapes the
// write path can produce are representable.

type wireColumn struct {
	Name  []byte               `json:"n"`
	Value []byte               `json:"v,omitempty"`
	Ts    int64                `json:"ts"`
	Del   *widetable.Tombstone `json:"del,omitempty"`
}

type wireGroup struct {
	Name    []byte               `json:"n"`
	Del     *widetable.Tombstone `json:"del,omitempty"`
	Columns []wireColumn         `json:"cols,omitempty"`
}

type wireEntry struct {
	Column *wireColumn `json:"c,omitempty"`
	Group  *wireGroup  `json:"g,omitempty"`
}

type wireRow struct {
	Key     widetable.DecoratedKey `json:"key"`
	Del     *widetable.Tombstone   `json:"del,omitempty"`
	Entries []wireEntry            `json:"entries,omitempty"`
}

func encodeColumn(c *widetable.Column) wireColumn {
	return wireColumn{Name: c.Name(), Value: c.Value(), Ts: c.Timestamp(), Del: c.Tombstone()}
}

func encodeRow(key widetable.DecoratedKey, f *widetable.Family) ([]byte, error) {
	row := wireRow{Key: key, Del: f.Tombstone()}
	for _, e := range f.Entries() {
		switch v := e.(type) {
		case *widetable.Column:
			wc := encodeColumn(v)
			row.Entries = append(row.Entries, wireEntry{Column: &wc})
		case *widetable.Group:
			wg := wireGroup{Name: v.Name(), Del: v.Tombstone()}
			for _, c := range v.Columns() {
				wg.Columns = append(wg.Columns, encodeColumn(c))
			}
			row.Entries = append(row.Entries, wireEntry{Group: &wg})
		default:
			return nil, fmt.Errorf("unsupported entry type %T", e)
		}
	}
	return json.Marshal(row)
}

func decodeColumn(wc wireColumn) *widetable.Column {
	if wc.Del != nil {
		return widetable.NewDeletedColumn(wc.Name, wc.Del.MarkedForDeleteAt, wc.Del.LocalDeletionTime)
	}
	return widetable.NewColumn(wc.Name, wc.Value, wc.Ts)
}

func decodeRow(line []byte, familyName string, cmp widetable.Comparator) (widetable.DecoratedKey, *widetable.Family, error) {
	var row wireRow
	if err := json.Unmarshal(line, &row); err != nil {
		return widetable.DecoratedKey{}, nil, fmt.Errorf("corrupt row record: %w", err)
	}

	f := widetable.NewFamily(familyName, cmp)
	if row.Del != nil {
		f.DeleteAt(row.Del.MarkedForDeleteAt, row.Del.LocalDeletionTime)
	}
	for _, e := range row.Entries {
		switch {
		case e.Column != nil:
			f.Add(decodeColumn(*e.Column))
		case e.Group != nil:
			g := widetable.NewGroup(e.Group.Name, cmp)
			if e.Group.Del != nil {
				g.DeleteAt(e.Group.Del.MarkedForDeleteAt, e.Group.Del.LocalDeletionTime)
			}
			for _, wc := range e.Group.Columns {
				g.AddColumn(decodeColumn(wc))
			}
			f.Add(g)
		default:
			return widetable.DecoratedKey{}, nil, fmt.Errorf("row record for %q has an empty entry", row.Key.Key)
		}
	}
	return row.Key, f, nil
}
