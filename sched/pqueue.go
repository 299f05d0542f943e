// Package sched provides the Scheduler (cancellable timer tokens for PIT
// unsatisfy/straggler timers, spec.md §4.3/§5) and a generic min-heap used
// by the DeadNonceList to prune entries in expiry order.
package sched

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Item is a single (value, priority) entry in a Queue.
type Item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	index    int
}

// Value returns the item's stored value.
func (it *Item[V, P]) Value() V { return it.object }

// Priority returns the item's current priority.
func (it *Item[V, P]) Priority() P { return it.priority }

type wrapper[V any, P constraints.Ordered] []*Item[V, P]

// Len implements container/heap's Interface.
func (pq *wrapper[V, P]) Len() int { return len(*pq) }

// Less implements container/heap's Interface (minimum priority first).
func (pq *wrapper[V, P]) Less(i, j int) bool { return (*pq)[i].priority < (*pq)[j].priority }

// Swap implements container/heap's Interface.
func (pq *wrapper[V, P]) Swap(i, j int) {
	(*pq)[i], (*pq)[j] = (*pq)[j], (*pq)[i]
	(*pq)[i].index = i
	(*pq)[j].index = j
}

// Push implements container/heap's Interface.
func (pq *wrapper[V, P]) Push(x any) {
	item := x.(*Item[V, P])
	item.index = len(*pq)
	*pq = append(*pq, item)
}

// Pop implements container/heap's Interface.
func (pq *wrapper[V, P]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Queue is a minimum-priority queue, adapted from the teacher's
// std/types/priority_queue/priority-queue.go.
type Queue[V any, P constraints.Ordered] struct {
	pq wrapper[V, P]
}

// NewQueue constructs an empty Queue. Not required to call — the zero
// value is ready to use.
func NewQueue[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{}
}

// Len returns the number of elements currently queued.
func (pq *Queue[V, P]) Len() int { return pq.pq.Len() }

// Push adds value with the given priority and returns its Item handle.
func (pq *Queue[V, P]) Push(value V, priority P) *Item[V, P] {
	it := &Item[V, P]{object: value, priority: priority}
	heap.Push(&pq.pq, it)
	return it
}

// Peek returns the minimum-priority element without removing it.
func (pq *Queue[V, P]) Peek() V { return pq.pq[0].object }

// PeekPriority returns the minimum element's priority.
func (pq *Queue[V, P]) PeekPriority() P { return pq.pq[0].priority }

// Pop removes and returns the minimum-priority element.
func (pq *Queue[V, P]) Pop() V {
	return heap.Pop(&pq.pq).(*Item[V, P]).object
}

// Remove removes an arbitrary item previously returned by Push.
func (pq *Queue[V, P]) Remove(it *Item[V, P]) {
	if it.index < 0 || it.index >= pq.pq.Len() || pq.pq[it.index] != it {
		return
	}
	heap.Remove(&pq.pq, it.index)
}

// UpdatePriority re-heapifies after an item's priority changes externally.
func (pq *Queue[V, P]) UpdatePriority(it *Item[V, P], priority P) {
	it.priority = priority
	heap.Fix(&pq.pq, it.index)
}
