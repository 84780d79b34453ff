package graphmodel

import (
	"math"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/growlist"
)

// EdgeTransform is the small nonlinear transform applied to an edge given
// the input activation flowing along it.
func EdgeTransform(g *Graph, e *Edge, inputActivation float64) float64 {
	from := g.NodeByIndex(e.From)
	to := g.NodeByIndex(e.To)

	base := e.Weight * inputActivation

	localAvg := from.LocalAvg()
	threshold := localAvg / (localAvg + 1)
	acceptRate := AcceptanceRate(from, to)
	s := Similarity(from.Payload, to.Payload, acceptRate)
	if s > threshold {
		base *= 1 + s*threshold
	}

	if e.Weight > 1.5*from.OutgoingAvg() {
		base *= 1.2
	}

	return base
}

// ComputeActivationStrength recomputes a node's activation_strength from
// its incoming edges and bias. The result (and the node's Bias field) is
// written back onto n and also returned.
func ComputeActivationStrength(g *Graph, n *Node) float64 {
	inSum := 0.0
	n.Incoming.Each(func(_ int, eIdx int) {
		e := g.Edges.At(eIdx)
		from := g.NodeByIndex(e.From)
		inSum += EdgeTransform(g, e, from.ActivationStrength) * e.Weight
	})

	denom := math.Max(n.IncomingWeightSum, inSum)
	var normalized float64
	if denom != 0 {
		normalized = inSum / denom
	}

	localAvg := n.LocalAvg()
	bias := (n.Weight - localAvg) / (localAvg + 1)
	n.Bias = bias

	x := normalized + bias
	result := x / (1 + x)

	// activation_strength must stay in [0,1] at every externally observable
	// point; the soft non-linearity is only exact for x >= 0, so clamp
	// defensively for negative bias.
	if result < 0 {
		result = 0
	}
	if result > 1 {
		result = 1
	}

	n.ActivationStrength = result
	return result
}

// Variance returns the population variance of the weights of the edges at
// the given indices (a single node's outgoing or incoming list), used by
// the wave-propagation exploration factor. Returns 0 for 0 or 1 edges.
func Variance(g *Graph, edgeIndices *growlist.List[int]) float64 {
	n := edgeIndices.Len()
	if n == 0 {
		return 0
	}
	var sum float64
	edgeIndices.Each(func(_ int, eIdx int) {
		sum += g.Edges.At(eIdx).Weight
	})
	mean := sum / float64(n)

	var sqDiff float64
	edgeIndices.Each(func(_ int, eIdx int) {
		d := g.Edges.At(eIdx).Weight - mean
		sqDiff += d * d
	})
	return sqDiff / float64(n)
}
