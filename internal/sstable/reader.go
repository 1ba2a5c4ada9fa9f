package sstable

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/filter"
	"github.com/widetable/widetable-db/internal/widetable"
)

// Reader serves point lookups against one immutable segment file. The key
// index is held in memory; row records are decoded on demand.
type Reader struct {
	path       string
	familyName string
	cmp        widetable.Comparator

	offsets map[string]int64
	keys    []widetable.DecoratedKey
}

type Config struct {
	Path       string
	FamilyName string
	Comparator widetable.Comparator
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("segment path is required"))
	}
	if c.FamilyName == "" {
		errGrp = append(errGrp, errors.New("family name is required"))
	}
	return errors.Join(errGrp...)
}

// Open indexes a segment file for reading.
func Open(cfg *Config) (*Reader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cmp := cfg.Comparator
	if cmp == nil {
		cmp = widetable.BytesComparator
	}

	file, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment: %w", err)
	}
	defer file.Close()

	r := &Reader{
		path:       cfg.Path,
		familyName: cfg.FamilyName,
		cmp:        cmp,
		offsets:    make(map[string]int64),
	}

	// index pass: record the starting offset of every row line
	br := bufio.NewReader(file)
	var offset int64
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 && len(bytes.TrimSpace(line)) > 0 {
			var rec struct {
				Key widetable.DecoratedKey `json:"key"`
			}
			if jerr := json.Unmarshal(line, &rec); jerr != nil {
				return nil, fmt.Errorf("corrupt segment %s at offset %d: %w", cfg.Path, offset, jerr)
			}
			r.offsets[rec.Key.Key] = offset
			r.keys = append(r.keys, rec.Key)
		}
		offset += int64(len(line))
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to index segment %s: %w", cfg.Path, err)
		}
	}

	sort.Slice(r.keys, func(i, j int) bool {
		return r.keys[i].Compare(r.keys[j]) < 0
	})

	log.Debug().Str("segment", filepath.Base(cfg.Path)).Int("rows", len(r.keys)).Msg("segment indexed")
	return r, nil
}

// Path is the underlying segment file.
func (r *Reader) Path() string { return r.path }

// HasKey reports whether the segment holds any data for the key.
func (r *Reader) HasKey(key widetable.DecoratedKey) bool {
	_, ok := r.offsets[key.Key]
	return ok
}

// Keys returns every row key in the segment, in decorated order.
func (r *Reader) Keys() []widetable.DecoratedKey {
	return r.keys
}

// OpenIterator opens a column sequence over the query's row. The returned
// iterator owns a file cursor; the caller must Close it on every exit path.
// A segment without the row returns an empty iterator owning nothing.
func (r *Reader) OpenIterator(q *filter.Query) (*Iterator, error) {
	offset, ok := r.offsets[q.Key.Key]
	if !ok {
		return &Iterator{inner: filter.EmptyIterator()}, nil
	}

	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment %s: %w", r.path, err)
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to seek segment %s: %w", r.path, err)
	}

	line, err := bufio.NewReader(file).ReadBytes('\n')
	if err != nil && err != io.EOF {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read row %q from %s: %w", q.Key.Key, r.path, err)
	}
	_, family, err := decodeRow(bytes.TrimSpace(line), r.familyName, r.cmp)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("segment %s: %w", r.path, err)
	}

	return &Iterator{
		file:   file,
		family: family,
		inner:  q.IterateFamily(family),
	}, nil
}

// Iterator is one row's column sequence drawn from a segment. It satisfies
// filter.Iterator and additionally exposes the row-level deletion info the
// collation path absorbs before merging.
type Iterator struct {
	file   *os.File
	family *widetable.Family
	inner  filter.Iterator
	closed bool
}

// ColumnFamily carries the source row's tombstone; nil when the segment has
// no data for the row.
func (it *Iterator) ColumnFamily() *widetable.Family { return it.family }

func (it *Iterator) Next() (widetable.Entry, bool) { return it.inner.Next() }

func (it *Iterator) Err() error { return it.inner.Err() }

// Close releases the file cursor. Safe to call more than once.
func (it *Iterator) Close() error {
	if it.closed || it.file == nil {
		return nil
	}
	it.closed = true
	return it.file.Close()
}
