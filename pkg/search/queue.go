package search

import (
	"container/heap"

	"github.com/matzehuels/gridpath/pkg/graph"
)

// openItem is an entry of the open set. seq records when the node entered
// the open set; it breaks priority ties so the earliest entry wins, which is
// what a linear scan over an insertion-ordered list would pick.
type openItem struct {
	node  graph.Node
	key   float64
	seq   uint64
	index int
}

type openQueue []*openItem

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	if q[i].key != q[j].key {
		return q[i].key < q[j].key
	}
	return q[i].seq < q[j].seq
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	item := x.(*openItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// openSet is the frontier of a run: a min-heap keyed by priority with an
// index by node for decrease-key and removal.
type openSet struct {
	queue  openQueue
	byNode map[graph.Node]*openItem
	seq    uint64
}

func newOpenSet() *openSet {
	return &openSet{byNode: make(map[graph.Node]*openItem)}
}

func (s *openSet) Len() int { return s.queue.Len() }

func (s *openSet) contains(n graph.Node) bool {
	_, ok := s.byNode[n]
	return ok
}

// push adds n with the given key. Re-adding a node that is already open only
// updates its key.
func (s *openSet) push(n graph.Node, key float64) {
	if _, ok := s.byNode[n]; ok {
		s.update(n, key)
		return
	}
	s.seq++
	item := &openItem{node: n, key: key, seq: s.seq}
	heap.Push(&s.queue, item)
	s.byNode[n] = item
}

// update changes the key of an open node in place; its entry order is kept.
func (s *openSet) update(n graph.Node, key float64) {
	item, ok := s.byNode[n]
	if !ok {
		return
	}
	item.key = key
	heap.Fix(&s.queue, item.index)
}

// min returns the open node with the lowest key without removing it.
func (s *openSet) min() (graph.Node, bool) {
	if len(s.queue) == 0 {
		return "", false
	}
	return s.queue[0].node, true
}

func (s *openSet) remove(n graph.Node) {
	item, ok := s.byNode[n]
	if !ok {
		return
	}
	heap.Remove(&s.queue, item.index)
	delete(s.byNode, n)
}
