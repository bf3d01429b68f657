// Package queue provides the bounded candidate heap used by k-nearest searches.
package queue

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/hupe1980/kdnn/index"
)

// Compile time check to ensure maxHeap satisfies the heap interface.
var _ heap.Interface = (*maxHeap)(nil)

// Item is a candidate point and its squared distance to the query.
type Item struct {
	Index int         // Index is the point's position in the point set.
	Dist2 index.Dist2 // Dist2 is the squared distance, the priority of the item.
}

// Compare orders items by distance, then by index.
func Compare(a, b Item) int {
	if c := a.Dist2.Compare(b.Dist2); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Less reports whether a ranks before b: smaller distance, then smaller index.
func Less(a, b Item) bool {
	return Compare(a, b) < 0
}

// maxHeap keeps the worst ranked item at the root.
// Value-based storage, no pointer indirection.
type maxHeap []Item

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return Less(h[j], h[i]) }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *maxHeap) Push(x any) {
	*h = append(*h, x.(Item))
}

func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Bounded keeps the best limit items seen so far.
// A full heap rejects anything that does not rank before its worst item.
type Bounded struct {
	items maxHeap
	limit int
}

// NewBounded returns an empty heap that retains at most limit items.
func NewBounded(limit int) *Bounded {
	if limit < 0 {
		limit = 0
	}
	return &Bounded{
		items: make(maxHeap, 0, limit),
		limit: limit,
	}
}

// Len returns the number of retained items.
func (b *Bounded) Len() int { return len(b.items) }

// Full reports whether the heap holds limit items.
func (b *Bounded) Full() bool { return len(b.items) >= b.limit }

// Worst returns the lowest-ranked retained item.
func (b *Bounded) Worst() (Item, bool) {
	if len(b.items) == 0 {
		return Item{}, false
	}
	return b.items[0], true
}

// Offer inserts item if the heap has room or item ranks before the current worst.
// It reports whether the item was retained.
func (b *Bounded) Offer(item Item) bool {
	if b.limit == 0 {
		return false
	}
	if len(b.items) < b.limit {
		heap.Push(&b.items, item)
		return true
	}
	if !Less(item, b.items[0]) {
		return false
	}
	b.items[0] = item
	heap.Fix(&b.items, 0)
	return true
}

// Sorted returns the retained items best first. The heap is left empty.
func (b *Bounded) Sorted() []Item {
	out := []Item(b.items)
	b.items = nil
	slices.SortFunc(out, Compare)
	return out
}

// Reset clears the heap for reuse.
func (b *Bounded) Reset() {
	b.items = b.items[:0]
}
