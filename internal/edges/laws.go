// Package edges implements the four edge-creation laws that run after
// every ingest and wave-propagation pass: co-activation, similarity,
// context, and homeostatic linking. Each law only ever reads a node's own
// 1- or 2-hop neighborhood, never a graph-wide aggregate.
package edges

import (
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
)

// SimilarPair records a similarity link proposed (and created) by
// ApplySimilarity, for internal/hierarchy to consume when looking for
// blank-node bridge candidates.
type SimilarPair struct {
	A, B       int
	Similarity float64
}

// strengthenOrCreate finds the from->to edge (creating it with the given
// kind if absent) and strengthens it by increment*(1-w), the shape shared
// by all four laws. Returns the edge's arena index.
func strengthenOrCreate(g *graphmodel.Graph, from, to int, kind graphmodel.Kind, increment float64) int {
	if from == to {
		return -1
	}
	e, eIdx, ok := g.FindEdge(from, to)
	if !ok {
		var err error
		e, eIdx, err = g.AddEdge(from, to, kind, true)
		if err != nil {
			return -1
		}
	}
	g.UpdateEdgeWeight(eIdx, e.Weight+increment*(1-e.Weight))
	return eIdx
}

// ApplyCoActivation is law L1. For each adjacent pair in the ingest
// sequence, it finds or creates a directed co-activation edge and
// strengthens it by the source node's own local change rate.
func ApplyCoActivation(g *graphmodel.Graph, sequence []int) {
	for i := 0; i+1 < len(sequence); i++ {
		from, to := sequence[i], sequence[i+1]
		node := g.NodeByIndex(from)
		alpha := node.LocalChangeRate()
		strengthenOrCreate(g, from, to, graphmodel.KindCoActivation, alpha)
	}
}

// ApplySimilarity is law L2. For each newly created node, candidates are
// gathered by wave exploration seeded at the node's own neighbors (its
// 2-hop neighborhood), never a global scan. A candidate whose payload
// similarity clears the node's own relative threshold gets a bidirectional
// pair of edges, unless the two nodes are already connected through an
// existing edge in either direction. Returns every pair it linked, so
// hierarchy formation can look for blank-node bridge candidates among them.
func ApplySimilarity(g *graphmodel.Graph, newNodes []int) []SimilarPair {
	var linked []SimilarPair
	for _, n := range newNodes {
		node := g.NodeByIndex(n)
		threshold := node.OutgoingAvg() / (node.OutgoingAvg() + 1)
		alpha := node.LocalChangeRate()

		for _, c := range g.Neighbors2Hop(n) {
			if c == n {
				continue
			}
			if _, _, ok := g.FindEdge(n, c); ok {
				continue
			}
			if _, _, ok := g.FindEdge(c, n); ok {
				continue
			}
			candidate := g.NodeByIndex(c)
			s := graphmodel.Similarity(node.Payload, candidate.Payload, threshold)
			if s < threshold {
				continue
			}
			strengthenOrCreate(g, n, c, graphmodel.KindSimilarity, alpha/2)
			strengthenOrCreate(g, c, n, graphmodel.KindSimilarity, alpha/2)
			linked = append(linked, SimilarPair{A: n, B: c, Similarity: s})
		}
	}
	return linked
}

// ApplyContext is law L3. Every pair of nodes activated within the same
// wave-propagation step that isn't already linked by a co-activation edge
// (in either direction) gets a weak directed context edge.
func ApplyContext(g *graphmodel.Graph, sameStep []int) {
	for i := 0; i < len(sameStep); i++ {
		for j := i + 1; j < len(sameStep); j++ {
			a, b := sameStep[i], sameStep[j]
			if edgeExistsOfKind(g, a, b, graphmodel.KindCoActivation) || edgeExistsOfKind(g, b, a, graphmodel.KindCoActivation) {
				continue
			}
			alpha := g.NodeByIndex(a).LocalChangeRate()
			strengthenOrCreate(g, a, b, graphmodel.KindContext, alpha/4)
		}
	}
}

// ApplyHomeostatic is law L4. Any candidate node whose current degree has
// fallen below its own historical average receives a link from the
// highest-weighted node in its 2-hop neighborhood, preventing isolation
// without introducing any graph-wide coupling.
func ApplyHomeostatic(g *graphmodel.Graph, candidates []int) {
	for _, idx := range candidates {
		node := g.NodeByIndex(idx)
		if float64(node.Degree()) >= node.HistoricalDegreeAvg() {
			continue
		}
		neighbors := g.Neighbors2Hop(idx)
		if len(neighbors) == 0 {
			continue
		}
		best := neighbors[0]
		bestWeight := g.NodeByIndex(best).Weight
		for _, c := range neighbors[1:] {
			if w := g.NodeByIndex(c).Weight; w > bestWeight {
				best, bestWeight = c, w
			}
		}
		if best == idx {
			continue
		}
		alpha := g.NodeByIndex(best).LocalChangeRate()
		strengthenOrCreate(g, best, idx, graphmodel.KindHomeostatic, alpha/8)
	}
}

// edgeExistsOfKind reports whether a from->to edge of the given kind
// already exists.
func edgeExistsOfKind(g *graphmodel.Graph, from, to int, kind graphmodel.Kind) bool {
	e, _, ok := g.FindEdge(from, to)
	return ok && e.Kind == kind
}
