// Package hierarchy implements the two emergent-structure behaviors that
// ride on top of edge formation: promoting a dominant co-activation edge
// into a new hierarchy node, and bridging clusters of mutually similar
// nodes with a blank node that matches purely through its connections.
package hierarchy

import (
	"sort"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/edges"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
)

// dominanceFloor is the fixed lower bound on the dominance ratio; the
// ratio itself is always computed from local values, never hard-coded.
const dominanceFloor = 1.5

// FormIfDominant inspects the co-activation edge at eIdx and, if its weight
// exceeds the source node's own dominance condition, emits a new hierarchy
// node combining the edge's two endpoints, unless a node with that combined
// payload already exists. A and B are left untouched — the hierarchy is
// additive, not a replacement. Returns the new node's arena index and true
// if one was created.
func FormIfDominant(g *graphmodel.Graph, eIdx int) (int, bool) {
	e := g.Edges.At(eIdx)
	if e.Kind != graphmodel.KindCoActivation {
		return -1, false
	}

	a := g.NodeByIndex(e.From)
	b := g.NodeByIndex(e.To)
	outAvg := a.OutgoingAvg()

	dominance := (outAvg + a.Bias + 1) / (outAvg + 1)
	if dominance < dominanceFloor {
		dominance = dominanceFloor
	}
	if e.Weight <= dominance*outAvg {
		return -1, false
	}

	level := a.AbstractionLevel
	if b.AbstractionLevel > level {
		level = b.AbstractionLevel
	}
	payload := append(append([]byte(nil), a.Payload...), b.Payload...)
	if _, exists := g.NodeByPayload(payload); exists {
		return -1, false
	}

	_, abIdx := g.AddNode(payload)
	ab := g.NodeByIndex(abIdx)
	ab.AbstractionLevel = level + 1

	a.Incoming.Each(func(_ int, inEdgeIdx int) {
		in := g.Edges.At(inEdgeIdx)
		_, newIdx, err := g.AddEdge(in.From, abIdx, in.Kind, in.Direction)
		if err == nil {
			g.UpdateEdgeWeight(newIdx, in.Weight/2)
		}
	})
	b.Outgoing.Each(func(_ int, outEdgeIdx int) {
		out := g.Edges.At(outEdgeIdx)
		_, newIdx, err := g.AddEdge(abIdx, out.To, out.Kind, out.Direction)
		if err == nil {
			g.UpdateEdgeWeight(newIdx, out.Weight/2)
		}
	})

	return abIdx, true
}

// CreateBlankBridges scans this round's similarity links for triples of
// mutually similar nodes that have no existing blank-node bridge, and
// creates one blank node per such triple. It operates only on the pairs
// produced by this ingest step, never a graph-wide scan. Returns the
// arena indices of every blank node created.
func CreateBlankBridges(g *graphmodel.Graph, pairs []edges.SimilarPair) []int {
	adj := make(map[int]map[int]float64)
	nodeSet := make(map[int]bool)
	add := func(a, b int, s float64) {
		if adj[a] == nil {
			adj[a] = make(map[int]float64)
		}
		adj[a][b] = s
		nodeSet[a] = true
	}
	for _, p := range pairs {
		add(p.A, p.B, p.Similarity)
		add(p.B, p.A, p.Similarity)
	}

	nodes := make([]int, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	var created []int
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			for k := j + 1; k < len(nodes); k++ {
				a, b, c := nodes[i], nodes[j], nodes[k]
				sAB, ok1 := adj[a][b]
				sBC, ok2 := adj[b][c]
				sAC, ok3 := adj[a][c]
				if !ok1 || !ok2 || !ok3 {
					continue
				}
				if hasCommonBlankBridge(g, a, b, c) {
					continue
				}
				blankIdx := createBlank(g, a, b, c, sAB, sBC, sAC)
				created = append(created, blankIdx)
			}
		}
	}
	return created
}

func createBlank(g *graphmodel.Graph, a, b, c int, sAB, sBC, sAC float64) int {
	_, blankIdx := g.AddNode(nil)
	weights := map[int]float64{a: (sAB + sAC) / 2, b: (sAB + sBC) / 2, c: (sBC + sAC) / 2}
	for _, member := range []int{a, b, c} {
		w := weights[member]
		_, eIdx, err := g.AddEdge(blankIdx, member, graphmodel.KindSimilarity, true)
		if err == nil {
			g.UpdateEdgeWeight(eIdx, w)
		}
		_, eIdx2, err2 := g.AddEdge(member, blankIdx, graphmodel.KindSimilarity, true)
		if err2 == nil {
			g.UpdateEdgeWeight(eIdx2, w)
		}
	}
	return blankIdx
}

// hasCommonBlankBridge reports whether a, b, and c already share a common
// blank-node neighbor, making a new bridge redundant.
func hasCommonBlankBridge(g *graphmodel.Graph, a, b, c int) bool {
	for _, n := range g.Neighbors1Hop(a) {
		node := g.NodeByIndex(n)
		if !node.IsBlank() {
			continue
		}
		connectedToB, connectedToC := false, false
		for _, m := range g.Neighbors1Hop(n) {
			if m == b {
				connectedToB = true
			}
			if m == c {
				connectedToC = true
			}
		}
		if connectedToB && connectedToC {
			return true
		}
	}
	return false
}

// MatchStrength computes how strongly a blank node matches pattern,
// weighted by each incident edge's weight and the similarity of the
// edge's other endpoint to pattern.
func MatchStrength(g *graphmodel.Graph, blankIdx int, pattern []byte) float64 {
	blank := g.NodeByIndex(blankIdx)
	var weighted, totalWeight float64

	visit := func(otherIdx int, w float64) {
		other := g.NodeByIndex(otherIdx)
		s := graphmodel.Similarity(other.Payload, pattern, 0)
		weighted += w * s
		totalWeight += w
	}
	blank.Outgoing.Each(func(_ int, eIdx int) {
		e := g.Edges.At(eIdx)
		visit(e.To, e.Weight)
	})
	blank.Incoming.Each(func(_ int, eIdx int) {
		e := g.Edges.At(eIdx)
		visit(e.From, e.Weight)
	})

	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// Accepts reports whether a blank node's match strength against pattern
// clears its own acceptance threshold, incoming_avg/(incoming_avg+1).
func Accepts(g *graphmodel.Graph, blankIdx int, pattern []byte) bool {
	blank := g.NodeByIndex(blankIdx)
	strength := MatchStrength(g, blankIdx, pattern)
	threshold := blank.IncomingAvg() / (blank.IncomingAvg() + 1)
	return strength >= threshold
}
