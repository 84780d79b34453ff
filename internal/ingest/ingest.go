// Package ingest implements sequential byte-pattern ingestion: the
// hierarchy-first walk that turns a raw input buffer into a sequence of
// matched or newly-created nodes.
package ingest

import (
	"sort"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/hierarchy"
)

// Walk consumes input left to right, trying window lengths from longest to
// shortest at each position. At each length, an exact-payload miss is
// followed by a check whether a blank node reachable from the
// recently-activated context accepts the candidate as a categorical match,
// before the next shorter length is tried. When no length matches either
// way, it falls back to a fresh one-byte node. Returns the arena indices of
// every matched or created node in order — the initial activation set for this input.
func Walk(g *graphmodel.Graph, input []byte, recentlyActivated []int) []int {
	if len(input) == 0 {
		return nil
	}

	lMax := maxPatternLength(g, recentlyActivated)
	blanks := nearbyBlankNodes(g, recentlyActivated)

	var initial []int
	for i := 0; i < len(input); {
		matched := false
		upper := lMax
		if remaining := len(input) - i; upper > remaining {
			upper = remaining
		}
		for l := upper; l >= 1; l-- {
			candidate := input[i : i+l]
			if idx, ok := g.NodeByPayload(candidate); ok {
				initial = append(initial, idx)
				i += l
				matched = true
				break
			}
			if blankIdx, ok := bestBlankMatch(g, blanks, candidate); ok {
				initial = append(initial, blankIdx)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			_, idx := g.AddNode(append([]byte(nil), input[i:i+1]...))
			initial = append(initial, idx)
			i++
		}
	}
	return initial
}

// nearbyBlankNodes collects the blank-node neighbors of the recently
// activated context, the same locality CreateBlankBridges draws its
// triples from — never a graph-wide scan.
func nearbyBlankNodes(g *graphmodel.Graph, recentlyActivated []int) []int {
	seen := make(map[int]bool)
	var blanks []int
	for _, seed := range recentlyActivated {
		for _, n := range g.Neighbors1Hop(seed) {
			if seen[n] {
				continue
			}
			seen[n] = true
			if g.NodeByIndex(n).IsBlank() {
				blanks = append(blanks, n)
			}
		}
	}
	sort.Ints(blanks)
	return blanks
}

// bestBlankMatch returns the highest-match-strength blank node among
// candidates that accepts pattern, if any does.
func bestBlankMatch(g *graphmodel.Graph, candidates []int, pattern []byte) (int, bool) {
	best, bestStrength, found := -1, 0.0, false
	for _, blankIdx := range candidates {
		if !hierarchy.Accepts(g, blankIdx, pattern) {
			continue
		}
		strength := hierarchy.MatchStrength(g, blankIdx, pattern)
		if !found || strength > bestStrength {
			best, bestStrength, found = blankIdx, strength, true
		}
	}
	return best, found
}

// maxPatternLength derives the adaptive window L_max from the mean payload
// size of the recently-activated nodes' top-weighted local neighbors. An
// empty graph (no prior context to draw from) yields 1.
func maxPatternLength(g *graphmodel.Graph, recentlyActivated []int) int {
	if g.NodeCount() == 0 {
		return 1
	}

	type candidate struct {
		idx    int
		weight float64
	}
	var pool []candidate
	seen := make(map[int]bool)
	for _, seed := range recentlyActivated {
		for _, n := range g.Neighbors1Hop(seed) {
			if seen[n] {
				continue
			}
			seen[n] = true
			pool = append(pool, candidate{idx: n, weight: g.NodeByIndex(n).Weight})
		}
	}
	if len(pool) == 0 {
		return 1
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].weight > pool[j].weight })

	k := topK(len(pool))
	var sum int
	for _, c := range pool[:k] {
		sum += len(g.NodeByIndex(c.idx).Payload)
	}
	avg := float64(sum) / float64(k)

	l := int(avg + 0.5)
	if l < 1 {
		l = 1
	}
	return l
}

// topK picks how many of the candidate pool to average over: the whole
// pool when it's small, otherwise its square root rounded up, so the
// sample scales with the neighborhood instead of a fixed constant.
func topK(poolSize int) int {
	if poolSize <= 1 {
		return 1
	}
	k := 1
	for k*k < poolSize {
		k++
	}
	if k > poolSize {
		k = poolSize
	}
	return k
}
