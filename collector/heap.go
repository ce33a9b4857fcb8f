// Package collector implements the bounded substructure verification
// collector described in spec.md §4.7: a priority structure pre-filled
// with sentinel entries so its reported size always equals capacity, not
// the number of real hits collected so far. It is grounded on the
// standard library's container/heap, the same interface the teacher's
// repo leaves to its callers elsewhere (the teacher has no analogous
// structure of its own; this package follows spec.md §9's explicit
// instruction to "implement as a thin adapter rather than modifying the
// underlying heap").
package collector

import "container/heap"

// Entry is one scored document in the collector. A sentinel entry
// (Sentinel true) occupies a capacity slot that has not yet received a
// real hit; it always loses to any real Collect call.
type Entry struct {
	DocID    string
	Score    float64
	Sentinel bool
}

// less reports whether a is worse than b — the min-heap root holds the
// worst entry so Collect can cheaply test "does this beat our current
// floor". Sentinels are always worse than any real entry. Among two real
// (or two sentinel) entries: lower score is worse; on a score tie, the
// higher document id is worse — the inverse of the tie-break exposed to
// callers ("higher score first, ties broken by lower document id
// first"), per spec.md §4.7 and the redesign note in spec.md §9.
func less(a, b Entry) bool {
	if a.Sentinel != b.Sentinel {
		return a.Sentinel
	}
	if a.Sentinel {
		return false
	}
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Collector holds at most Capacity entries, pre-populated with sentinels
// so Size always reports Capacity. Callers track the number of real hits
// themselves (spec.md §4.7: "callers must track the actual insertion
// count externally").
type Collector struct {
	capacity int
	h        entryHeap
}

// New returns a Collector pre-filled with capacity sentinel entries.
func New(capacity int) *Collector {
	if capacity < 0 {
		capacity = 0
	}
	c := &Collector{capacity: capacity, h: make(entryHeap, capacity)}
	for i := range c.h {
		c.h[i] = Entry{Sentinel: true}
	}
	heap.Init(&c.h)
	return c
}

// Capacity returns the collector's maximum size.
func (c *Collector) Capacity() int { return c.capacity }

// Size equals Capacity (sentinel slots count), per spec.md §4.7, until
// Results drains the collector.
func (c *Collector) Size() int { return len(c.h) }

// Collect offers (docID, score) to the collector. It replaces the
// current worst entry (sentinel or real) if the candidate is better, and
// discards the candidate otherwise. A zero-capacity collector discards
// everything.
func (c *Collector) Collect(docID string, score float64) {
	if c.capacity == 0 {
		return
	}
	candidate := Entry{DocID: docID, Score: score}
	if less(c.h[0], candidate) {
		c.h[0] = candidate
		heap.Fix(&c.h, 0)
	}
}

// Results drains the collector and returns its real (non-sentinel)
// entries ordered best first: repeatedly pop the worst, then reverse,
// per spec.md §4.7. The collector holds no entries after this call: Size
// reports 0, while Capacity still reports the capacity given to New.
func (c *Collector) Results() []Entry {
	popped := make([]Entry, 0, len(c.h))
	for c.h.Len() > 0 {
		popped = append(popped, heap.Pop(&c.h).(Entry))
	}
	out := make([]Entry, 0, len(popped))
	for i := len(popped) - 1; i >= 0; i-- {
		if !popped[i].Sentinel {
			out = append(out, popped[i])
		}
	}
	return out
}
