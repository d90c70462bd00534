package dispatch

import "github.com/riftline/geodispatch/internal/models"

// prioHeapItem pairs an event with its insertion sequence so ties on due_at
// resolve to insertion order, not heap-internal shuffling.
type prioHeapItem struct {
	event models.PriorityEvent
	seq   int
}

// prioHeap implements container/heap.Interface, ordering by due_at ascending
// and breaking ties by insertion sequence, grounded on the inference-sim
// EventHeap pattern in the retrieval pack.
type prioHeap []prioHeapItem

func (h prioHeap) Len() int { return len(h) }

func (h prioHeap) Less(i, j int) bool {
	if h[i].event.DueAt != h[j].event.DueAt {
		return h[i].event.DueAt < h[j].event.DueAt
	}
	return h[i].seq < h[j].seq
}

func (h prioHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *prioHeap) Push(x any) {
	*h = append(*h, x.(prioHeapItem))
}

func (h *prioHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// peek returns the head event without removing it.
func (h prioHeap) peek() (models.PriorityEvent, bool) {
	if len(h) == 0 {
		return models.PriorityEvent{}, false
	}
	return h[0].event, true
}
