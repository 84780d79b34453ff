// Package spreading implements multi-step wave propagation: an iterative
// (never recursive) activation spread with adaptive per-node thresholds
// and in-band weight updates on the edges it traverses.
package spreading

import (
	"sort"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
)

// Result is what one Propagate call reports back to the caller.
type Result struct {
	// EverActivated is the union of the initial set and every node that
	// ever entered the frontier, for seeding the graph's LastActivated
	// context on the next input.
	EverActivated []int

	// StepFrontiers holds the "next" frontier recorded at the end of each
	// step — the same-step co-activation sets the context law consumes.
	StepFrontiers [][]int
}

// Propagate runs the wave from the given initial activation set to
// termination: either the frontier has no unvisited nodes left, or total
// energy drops below 10% of the energy the initial set carried.
func Propagate(g *graphmodel.Graph, initial []int) Result {
	visited := make(map[int]bool, len(initial))
	front := make([]int, 0, len(initial))
	for _, idx := range initial {
		if !visited[idx] {
			visited[idx] = true
			front = append(front, idx)
		}
	}
	ever := append([]int(nil), front...)

	initialEnergy := 0.0
	for _, idx := range front {
		initialEnergy += graphmodel.ComputeActivationStrength(g, g.NodeByIndex(idx))
	}

	var stepFrontiers [][]int
	for len(front) > 0 {
		next, _ := stepOnce(g, front)

		currentEnergy := 0.0
		for _, idx := range next {
			currentEnergy += graphmodel.ComputeActivationStrength(g, g.NodeByIndex(idx))
		}

		// Only nodes not yet visited join the next frontier, so each node
		// is propagated from at most once and the wave always terminates.
		var fresh []int
		if len(next) > 0 {
			stepFrontiers = append(stepFrontiers, next)
			for _, idx := range next {
				if !visited[idx] {
					visited[idx] = true
					ever = append(ever, idx)
					fresh = append(fresh, idx)
				}
			}
		}

		if len(fresh) == 0 || currentEnergy < 0.1*initialEnergy {
			break
		}
		front = fresh
	}

	return Result{EverActivated: ever, StepFrontiers: stepFrontiers}
}

// stepOnce advances every node in front by one wave step, mutating the
// edges it activates, and returns the next frontier in deterministic
// first-seen order plus a membership set.
func stepOnce(g *graphmodel.Graph, front []int) ([]int, map[int]bool) {
	var next []int
	nextSeen := make(map[int]bool)

	for _, n := range front {
		node := g.NodeByIndex(n)
		strength := graphmodel.ComputeActivationStrength(g, node)
		node.Weight += strength

		localAvg := node.LocalAvg()
		if strength < 0.5*localAvg {
			continue
		}

		edgeIdxs := sortedOutgoing(g, node)
		if len(edgeIdxs) == 0 {
			continue
		}

		transforms := make([]float64, len(edgeIdxs))
		tMax := 0.0
		for i, eIdx := range edgeIdxs {
			e := g.Edges.At(eIdx)
			tr := graphmodel.EdgeTransform(g, e, strength)
			transforms[i] = tr
			if tr > tMax {
				tMax = tr
			}
		}

		variance := graphmodel.Variance(g, node.Outgoing)
		explorationFactor := variance / (variance + 1)
		tThr := tMax * explorationFactor
		alpha := node.LocalChangeRate()

		for i, eIdx := range edgeIdxs {
			if transforms[i] < tThr {
				continue
			}
			e := g.Edges.At(eIdx)
			e.Activation = true
			g.UpdateEdgeWeight(eIdx, e.Weight+alpha*(1-e.Weight))
			if !nextSeen[e.To] {
				nextSeen[e.To] = true
				next = append(next, e.To)
			}
		}
	}

	return next, nextSeen
}

// sortedOutgoing returns n's outgoing edge indices ordered by weight
// descending, breaking ties by the target node's id ascending — the
// deterministic order required for identical-input reproducibility.
func sortedOutgoing(g *graphmodel.Graph, n *graphmodel.Node) []int {
	idxs := append([]int(nil), n.Outgoing.Slice()...)
	sort.Slice(idxs, func(i, j int) bool {
		ei, ej := g.Edges.At(idxs[i]), g.Edges.At(idxs[j])
		if ei.Weight != ej.Weight {
			return ei.Weight > ej.Weight
		}
		return g.NodeByIndex(ei.To).ID < g.NodeByIndex(ej.To).ID
	})
	return idxs
}
