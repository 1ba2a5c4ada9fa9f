package filter

import (
	"container/heap"
	"errors"

	"github.com/widetable/widetable-db/internal/widetable"
)

// Collate merges per-source iterators into one sequence ordered by cmp.
// Every source must already deliver entries in cmp order; equal names are
// emitted adjacently (source order breaks ties) so the reducer can fold them
// into one run. Closing the collated iterator closes every source.
func Collate(cmp widetable.Comparator, sources ...Iterator) Iterator {
	c := &collating{cmp: cmp, sources: sources}
	c.heap.cmp = cmp
	return c
}

type collateItem struct {
	entry widetable.Entry
	src   int
}

type collateHeap struct {
	cmp   widetable.Comparator
	items []collateItem
}

func (h *collateHeap) Len() int { return len(h.items) }

func (h *collateHeap) Less(i, j int) bool {
	c := h.cmp(h.items[i].entry.Name(), h.items[j].entry.Name())
	if c != 0 {
		return c < 0
	}
	return h.items[i].src < h.items[j].src
}

func (h *collateHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *collateHeap) Push(x any) { h.items = append(h.items, x.(collateItem)) }

func (h *collateHeap) Pop() any {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}

type collating struct {
	cmp     widetable.Comparator
	sources []Iterator
	heap    collateHeap
	primed  bool
	err     error
}

func (c *collating) prime() {
	for i, src := range c.sources {
		if e, ok := src.Next(); ok {
			c.heap.items = append(c.heap.items, collateItem{entry: e, src: i})
		} else if err := src.Err(); err != nil {
			c.err = err
			return
		}
	}
	heap.Init(&c.heap)
}

func (c *collating) Next() (widetable.Entry, bool) {
	if c.err != nil {
		return nil, false
	}
	if !c.primed {
		c.primed = true
		c.prime()
		if c.err != nil {
			return nil, false
		}
	}
	if c.heap.Len() == 0 {
		return nil, false
	}

	item := heap.Pop(&c.heap).(collateItem)
	src := c.sources[item.src]
	if e, ok := src.Next(); ok {
		heap.Push(&c.heap, collateItem{entry: e, src: item.src})
	} else if err := src.Err(); err != nil {
		c.err = err
		return nil, false
	}
	return item.entry, true
}

func (c *collating) Err() error { return c.err }

func (c *collating) Close() error {
	var errGrp []error
	for _, src := range c.sources {
		if err := src.Close(); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	return errors.Join(errGrp...)
}
