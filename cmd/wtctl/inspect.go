package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/sstable"
	"github.com/widetable/widetable-db/internal/widetable"
)

// segmentRow is the dump shape of one row, tombstones included.
type segmentRow struct {
	Key     string               `json:"key"`
	Token   uint64               `json:"token"`
	Deleted *widetable.Tombstone `json:"deleted,omitempty"`
	Entries []segmentEntry       `json:"entries"`
}

type segmentEntry struct {
	Name      string               `json:"name"`
	Value     string               `json:"value,omitempty"`
	Timestamp int64                `json:"ts,omitempty"`
	Deleted   *widetable.Tombstone `json:"deleted,omitempty"`
	Columns   []segmentEntry       `json:"columns,omitempty"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <segment-file>",
		Short: "dump every row of a segment as JSON, tombstones included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := sstable.Open(&sstable.Config{
				Path:       args[0],
				FamilyName: familyName(),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, key := range reader.Keys() {
				row, err := dumpRow(reader, key)
				if err != nil {
					return err
				}
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func dumpRow(reader *sstable.Reader, key widetable.DecoratedKey) (*segmentRow, error) {
	q, err := filter.NewIdentityQuery(key, filter.NewPath(familyName()))
	if err != nil {
		return nil, err
	}

	it, err := reader.OpenIterator(q)
	if err != nil {
		return nil, fmt.Errorf("failed to read row %q: %w", key.Key, err)
	}
	defer it.Close()

	family := it.ColumnFamily()
	if family == nil {
		return &segmentRow{Key: key.Key, Token: key.Token, Entries: []segmentEntry{}}, nil
	}

	row := &segmentRow{
		Key:     key.Key,
		Token:   key.Token,
		Deleted: family.Tombstone(),
		Entries: []segmentEntry{},
	}
	for _, e := range family.Entries() {
		switch v := e.(type) {
		case *widetable.Column:
			row.Entries = append(row.Entries, dumpColumn(v))
		case *widetable.Group:
			entry := segmentEntry{
				Name:    string(v.Name()),
				Deleted: v.Tombstone(),
			}
			for _, c := range v.Columns() {
				entry.Columns = append(entry.Columns, dumpColumn(c))
			}
			row.Entries = append(row.Entries, entry)
		}
	}
	return row, nil
}

func dumpColumn(c *widetable.Column) segmentEntry {
	return segmentEntry{
		Name:      string(c.Name()),
		Value:     string(c.Value()),
		Timestamp: c.Timestamp(),
		Deleted:   c.Tombstone(),
	}
}
