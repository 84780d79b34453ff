// Package output implements readiness gating and autoregressive hybrid
// sampling: the decision of whether the graph has anything mature enough
// to say, and the probabilistic walk that produces the bytes if so.
package output

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
)

// Decision is the outcome of the readiness check for one initial
// activation set.
type Decision struct {
	Ready     bool
	Readiness float64
	Threshold float64
}

// DecideReadiness computes whether the co-activation structure around the
// initial activation set I is mature enough to emit output.
func DecideReadiness(g *graphmodel.Graph, initial []int) Decision {
	var coactSum, coactCount, maxEdge, outAvgSum float64
	for _, idx := range initial {
		n := g.NodeByIndex(idx)
		n.Outgoing.Each(func(_ int, eIdx int) {
			e := g.Edges.At(eIdx)
			if e.Kind != graphmodel.KindCoActivation {
				return
			}
			coactSum += e.Weight
			coactCount++
			if e.Weight > maxEdge {
				maxEdge = e.Weight
			}
		})
		outAvgSum += n.OutgoingAvg()
	}

	avgCoact := 0.0
	if coactCount > 0 {
		avgCoact = coactSum / coactCount
	}
	readiness := 0.0
	if denom := maxEdge + avgCoact; denom != 0 {
		readiness = avgCoact / denom
	}

	localContext := 0.0
	if len(initial) > 0 {
		localContext = outAvgSum / float64(len(initial))
	}
	threshold := localContext / (localContext + 1)

	ready := readiness != 0 && readiness >= threshold
	return Decision{Ready: ready, Readiness: readiness, Threshold: threshold}
}

// Seed derives the deterministic PRNG seed for one process_input call:
// the graph's node count XOR the FNV-1a hash of the input bytes.
func Seed(g *graphmodel.Graph, input []byte) int64 {
	h := fnv.New64a()
	h.Write(input)
	return int64(uint64(g.NodeCount()) ^ h.Sum64())
}

// Collect runs the autoregressive output walk starting from the last node
// of the initial activation set, sampling along co-activation edges only,
// and returns the raw bytes produced (no port-id prefix).
func Collect(g *graphmodel.Graph, initial []int, rng *rand.Rand) []byte {
	if len(initial) == 0 {
		return nil
	}

	lOutMax := int(math.Round(2 * averagePayloadSize(g, initial)))
	current := initial[len(initial)-1]

	var out []byte
	for step := 0; step < lOutMax; step++ {
		node := g.NodeByIndex(current)
		candIdx, candEdge := candidates(g, node)
		if len(candIdx) == 0 {
			break
		}

		weights := distribution(g, node, candIdx, candEdge)
		weights = temper(weights, temperature(g, node))

		chosen := sample(rng, weights)
		next := candIdx[chosen]
		out = append(out, g.NodeByIndex(next).Payload...)
		current = next
	}
	return out
}

// candidates gathers L1-type outgoing edges from current whose weight
// strictly exceeds current's own outgoing average, the "echo chamber"
// guard from the propagation rules.
func candidates(g *graphmodel.Graph, current *graphmodel.Node) ([]int, []int) {
	outAvg := current.OutgoingAvg()
	var nodes, edgeIdxs []int
	current.Outgoing.Each(func(_ int, eIdx int) {
		e := g.Edges.At(eIdx)
		if e.Kind == graphmodel.KindCoActivation && e.Weight > outAvg {
			nodes = append(nodes, e.To)
			edgeIdxs = append(edgeIdxs, eIdx)
		}
	})
	return nodes, edgeIdxs
}

// distribution builds the unnormalized sampling weight for each candidate:
// p(ci) ∝ ci.activation_strength * edge_transform(ei, current.activation_strength).
func distribution(g *graphmodel.Graph, current *graphmodel.Node, candIdx, candEdge []int) []float64 {
	weights := make([]float64, len(candIdx))
	for i, idx := range candIdx {
		c := g.NodeByIndex(idx)
		e := g.Edges.At(candEdge[i])
		t := graphmodel.EdgeTransform(g, e, current.ActivationStrength)
		p := c.ActivationStrength * t
		if p < 0 {
			p = 0
		}
		weights[i] = p
	}
	return weights
}

// temperature derives T in [0.5, 1.5] from the local variance of current's
// outgoing edges: higher variance (one edge standing out from the rest)
// pushes T toward 1.5, uniform weights (variance 0) give T = 0.5.
func temperature(g *graphmodel.Graph, current *graphmodel.Node) float64 {
	v := graphmodel.Variance(g, current.Outgoing)
	return 0.5 + v/(v+1)
}

// temper raises the distribution to the power 1/T and renormalizes.
func temper(weights []float64, t float64) []float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		uniform := make([]float64, len(weights))
		for i := range uniform {
			uniform[i] = 1
		}
		weights = uniform
		sum = float64(len(weights))
	}

	shaped := make([]float64, len(weights))
	var shapedSum float64
	for i, w := range weights {
		p := math.Pow(w/sum, 1/t)
		shaped[i] = p
		shapedSum += p
	}
	if shapedSum == 0 {
		for i := range shaped {
			shaped[i] = 1 / float64(len(shaped))
		}
		return shaped
	}
	for i := range shaped {
		shaped[i] /= shapedSum
	}
	return shaped
}

// sample draws one index from a normalized probability distribution.
func sample(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	var acc float64
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}

// averagePayloadSize returns the mean payload length (in bytes) over the
// given node indices.
func averagePayloadSize(g *graphmodel.Graph, idxs []int) float64 {
	if len(idxs) == 0 {
		return 0
	}
	var sum int
	for _, idx := range idxs {
		sum += len(g.NodeByIndex(idx).Payload)
	}
	return float64(sum) / float64(len(idxs))
}
