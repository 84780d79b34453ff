package graphmodel

import (
	"errors"
	"math"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/growlist"
)

// ErrSelfLoop is returned when AddEdge is asked to connect a node to itself.
var ErrSelfLoop = errors.New("graphmodel: edges cannot connect a node to itself")

// Graph is the grow-only container of all nodes and edges. Nodes and
// edges are never deleted within a session; decay happens by weight, not
// by removal.
type Graph struct {
	Nodes *growlist.List[*Node]
	Edges *growlist.List[*Edge]

	// idIndex maps a node's persistent ID to its current arena index.
	idIndex map[uint64]int

	// payloadIndex maps an exact payload to the arena indices of every node
	// created with that payload. Ordinarily de-duplication at creation time
	// keeps this to one entry per non-empty payload (blank nodes all share
	// the empty payload), but a loaded brain file can carry transient
	// duplicates, so lookups tie-break by weight.
	payloadIndex map[string][]int

	// nextID is the graph-scoped monotonic node-id counter. It lives on the
	// graph itself, not a package global, so two engines in one process
	// stay independent.
	nextID uint64

	// LastActivated carries activation across input boundaries: node
	// indices that were part of the last wave's frontier. The next input's
	// ingest reads them as its recent context, to size its pattern window
	// and to find nearby blank nodes; they are not added to that input's
	// initial activation set or to its wave seeds.
	LastActivated *growlist.List[int]
}

// New creates an empty graph with a fresh id sequencer.
func New() *Graph {
	return &Graph{
		Nodes:         growlist.New[*Node](),
		Edges:         growlist.New[*Edge](),
		idIndex:       make(map[uint64]int),
		payloadIndex:  make(map[string][]int),
		nextID:        0,
		LastActivated: growlist.New[int](),
	}
}

// AddNode creates a new node with the given payload and appends it to the
// graph, assigning the next monotonic id.
func (g *Graph) AddNode(payload []byte) (*Node, int) {
	id := g.nextID
	g.nextID++
	n := newNode(id, payload)
	idx := g.Nodes.Append(n)
	g.idIndex[id] = idx
	g.payloadIndex[string(payload)] = append(g.payloadIndex[string(payload)], idx)
	return n, idx
}

// AddNodeWithID inserts a node with an explicit id, used when reconstructing
// a graph from a brain file. The graph's id sequencer is advanced to stay
// ahead of the given id.
func (g *Graph) AddNodeWithID(id uint64, payload []byte) (*Node, int) {
	n := newNode(id, payload)
	idx := g.Nodes.Append(n)
	g.idIndex[id] = idx
	g.payloadIndex[string(payload)] = append(g.payloadIndex[string(payload)], idx)
	if id >= g.nextID {
		g.nextID = id + 1
	}
	return n, idx
}

// NodeByPayload returns the arena index of an existing non-blank node whose
// payload exactly matches payload, scanning only the small bucket of nodes
// that share this exact payload. When more than one node shares the
// payload, the one with the higher Weight wins the tie-break.
func (g *Graph) NodeByPayload(payload []byte) (int, bool) {
	if len(payload) == 0 {
		return -1, false
	}
	bucket := g.payloadIndex[string(payload)]
	if len(bucket) == 0 {
		return -1, false
	}
	best := bucket[0]
	bestWeight := g.Nodes.At(best).Weight
	for _, idx := range bucket[1:] {
		if w := g.Nodes.At(idx).Weight; w > bestWeight {
			best, bestWeight = idx, w
		}
	}
	return best, true
}

// NodeByIndex returns the node at arena index i.
func (g *Graph) NodeByIndex(i int) *Node {
	return g.Nodes.At(i)
}

// NodeIndexByID resolves a persistent node id to its current arena index.
func (g *Graph) NodeIndexByID(id uint64) (int, bool) {
	idx, ok := g.idIndex[id]
	return idx, ok
}

// NodeCount returns the number of nodes currently in the graph.
func (g *Graph) NodeCount() int {
	return g.Nodes.Len()
}

// EdgeCount returns the number of edges currently in the graph.
func (g *Graph) EdgeCount() int {
	return g.Edges.Len()
}

// AddEdge creates a directed edge from fromIdx to toIdx with weight 0,
// registering it on both endpoints' edge lists. Returns an error if
// fromIdx == toIdx; edges never connect a node to itself.
func (g *Graph) AddEdge(fromIdx, toIdx int, kind Kind, direction bool) (*Edge, int, error) {
	if fromIdx == toIdx {
		return nil, -1, ErrSelfLoop
	}
	e := newEdge(fromIdx, toIdx, kind, direction)
	eIdx := g.Edges.Append(e)

	from := g.Nodes.At(fromIdx)
	to := g.Nodes.At(toIdx)
	from.Outgoing.Append(eIdx)
	to.Incoming.Append(eIdx)
	from.DegreeHistory.Add(float64(from.Degree()))
	to.DegreeHistory.Add(float64(to.Degree()))

	// Cached sums are adjusted by +0 here (weight starts at 0), but the
	// maintenance call is made anyway so the discipline is uniform
	// everywhere an edge's weight participates.
	g.adjustSums(from, to, 0, 0)

	return e, eIdx, nil
}

// FindEdge returns the edge (and its index) from fromIdx to toIdx, if one
// already exists. It scans only fromIdx's outgoing edge list — a single
// node's 1-hop neighborhood, never a global scan.
func (g *Graph) FindEdge(fromIdx, toIdx int) (*Edge, int, bool) {
	from := g.Nodes.At(fromIdx)
	var found *Edge
	var foundIdx = -1
	from.Outgoing.Each(func(_ int, eIdx int) {
		if found != nil {
			return
		}
		e := g.Edges.At(eIdx)
		if e.To == toIdx {
			found = e
			foundIdx = eIdx
		}
	})
	if found == nil {
		return nil, -1, false
	}
	return found, foundIdx, true
}

// UpdateEdgeWeight sets e's weight to newWeight, atomically adjusting the
// cached sums of its two endpoints and appending |Δweight| to the "from"
// node's rolling window. This is the only primitive that may mutate an
// edge's weight, so the cached sums can never drift from the true sums.
func (g *Graph) UpdateEdgeWeight(eIdx int, newWeight float64) {
	e := g.Edges.At(eIdx)
	delta := newWeight - e.Weight
	e.Weight = newWeight

	from := g.Nodes.At(e.From)
	to := g.Nodes.At(e.To)
	g.adjustSums(from, to, delta, delta)
	from.RecentWeightChanges.Add(math.Abs(delta))
}

// adjustSums applies delta adjustments to the two endpoints' cached sums.
func (g *Graph) adjustSums(from, to *Node, outDelta, inDelta float64) {
	from.OutgoingWeightSum += outDelta
	to.IncomingWeightSum += inDelta
}

// Neighbors1Hop returns the arena indices of every node directly connected
// to idx, in either direction, without duplicates.
func (g *Graph) Neighbors1Hop(idx int) []int {
	seen := make(map[int]bool)
	var out []int
	add := func(n int) {
		if n != idx && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	n := g.Nodes.At(idx)
	n.Outgoing.Each(func(_ int, eIdx int) { add(g.Edges.At(eIdx).To) })
	n.Incoming.Each(func(_ int, eIdx int) { add(g.Edges.At(eIdx).From) })
	return out
}

// Neighbors2Hop returns the arena indices of every node reachable from idx
// in exactly one or two hops (in either direction), excluding idx itself.
// This stays within the two-hop locality the engine's thresholds are
// allowed to read from.
func (g *Graph) Neighbors2Hop(idx int) []int {
	seen := map[int]bool{idx: true}
	var out []int
	oneHop := g.Neighbors1Hop(idx)
	for _, h1 := range oneHop {
		if !seen[h1] {
			seen[h1] = true
			out = append(out, h1)
		}
	}
	for _, h1 := range oneHop {
		for _, h2 := range g.Neighbors1Hop(h1) {
			if !seen[h2] {
				seen[h2] = true
				out = append(out, h2)
			}
		}
	}
	return out
}

// PushActivated records idx as part of the most recent activation
// frontier, for use as context seeds on the next input.
func (g *Graph) PushActivated(idx int) {
	g.LastActivated.Append(idx)
}

// ResetActivated clears the recorded last-activated set, called once the
// current input's ingest has read it as context.
func (g *Graph) ResetActivated() {
	g.LastActivated = growlist.New[int]()
}
