package routing

import "math"

// MinHeap is a concrete-typed min-heap for the Dijkstra frontier.
// Avoids interface boxing overhead of container/heap.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist float64
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) PeekDist() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].Dist
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Dist < h.items[smallest].Dist {
			smallest = left
		}
		if right < n && h.items[right].Dist < h.items[smallest].Dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

const noNode = ^uint32(0) // sentinel for "no node"

// State holds the search state of one shortest-path run, indexed by node ID.
// Nodes themselves are never mutated by a search.
type State struct {
	Dist    []float64
	Parent  []uint32 // predecessor ID (noNode = none)
	Visited []bool
	Touched []uint32 // nodes whose entries differ from the defaults
	PQ      MinHeap
}

// NewState creates a State for a graph with n nodes.
func NewState(n uint32) *State {
	dist := make([]float64, n)
	parent := make([]uint32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		parent[i] = noNode
	}
	return &State{
		Dist:    dist,
		Parent:  parent,
		Visited: make([]bool, n),
		Touched: make([]uint32, 0, 64),
		PQ:      MinHeap{items: make([]PQItem, 0, 64)},
	}
}

// Reset restores every touched entry to dist=+Inf, parent=none,
// visited=false and empties the frontier.
func (s *State) Reset() {
	inf := math.Inf(1)
	for _, node := range s.Touched {
		s.Dist[node] = inf
		s.Parent[node] = noNode
		s.Visited[node] = false
	}
	s.Touched = s.Touched[:0]
	s.PQ.Reset()
}

// relax records a shorter tentative distance for node through parent.
func (s *State) relax(node uint32, dist float64, parent uint32) {
	if math.IsInf(s.Dist[node], 1) {
		s.Touched = append(s.Touched, node)
	}
	s.Dist[node] = dist
	s.Parent[node] = parent
	s.PQ.Push(node, dist)
}
