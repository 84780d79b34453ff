package hierarchy

import (
	"testing"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/edges"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormIfDominant_SkipsWhenBelowDominanceThreshold(t *testing.T) {
	g := graphmodel.New()
	_, a := g.AddNode([]byte("a"))
	_, b := g.AddNode([]byte("b"))
	_, eIdx, _ := g.AddEdge(a, b, graphmodel.KindCoActivation, true)
	g.UpdateEdgeWeight(eIdx, 0.1)

	_, created := FormIfDominant(g, eIdx)
	assert.False(t, created, "weak edge should not trigger hierarchy formation")
}

func TestFormIfDominant_CreatesCombinedNodeOnDominantEdge(t *testing.T) {
	g := graphmodel.New()
	_, a := g.AddNode([]byte("h"))
	_, b := g.AddNode([]byte("e"))
	_, eIdx, _ := g.AddEdge(a, b, graphmodel.KindCoActivation, true)

	// Give a a second, much weaker outgoing edge so outgoing_avg(a) stays
	// low relative to the a->b edge, then push a->b weight high.
	_, c := g.AddNode([]byte("x"))
	_, weakIdx, _ := g.AddEdge(a, c, graphmodel.KindCoActivation, true)
	g.UpdateEdgeWeight(weakIdx, 0.01)
	g.UpdateEdgeWeight(eIdx, 0.9)

	idx, created := FormIfDominant(g, eIdx)
	require.True(t, created, "expected hierarchy node to be created for a dominant edge")
	ab := g.NodeByIndex(idx)
	assert.Equal(t, "he", string(ab.Payload))
	assert.EqualValues(t, 1, ab.AbstractionLevel)

	nodeA := g.NodeByIndex(a)
	nodeB := g.NodeByIndex(b)
	assert.NotZero(t, nodeA.Outgoing.Len(), "node a should keep its own outgoing edges after hierarchy formation")
	assert.Zero(t, nodeB.Outgoing.Len(), "node b had no outgoing edges to begin with")
}

func TestCreateBlankBridges_BridgesMutuallySimilarTriple(t *testing.T) {
	g := graphmodel.New()
	_, a := g.AddNode([]byte("a"))
	_, b := g.AddNode([]byte("b"))
	_, c := g.AddNode([]byte("c"))

	pairs := []edges.SimilarPair{
		{A: a, B: b, Similarity: 0.8},
		{A: b, B: c, Similarity: 0.8},
		{A: a, B: c, Similarity: 0.8},
	}

	created := CreateBlankBridges(g, pairs)
	require.Len(t, created, 1, "expected exactly one blank bridge for a single mutual triple")

	blank := g.NodeByIndex(created[0])
	assert.True(t, blank.IsBlank(), "expected created node to be blank (zero-length payload)")
	assert.Equal(t, 3, blank.Outgoing.Len(), "expected blank node to connect to all three members")
}

func TestCreateBlankBridges_SkipsWhenBridgeAlreadyExists(t *testing.T) {
	g := graphmodel.New()
	_, a := g.AddNode([]byte("a"))
	_, b := g.AddNode([]byte("b"))
	_, c := g.AddNode([]byte("c"))

	pairs := []edges.SimilarPair{
		{A: a, B: b, Similarity: 0.8},
		{A: b, B: c, Similarity: 0.8},
		{A: a, B: c, Similarity: 0.8},
	}

	first := CreateBlankBridges(g, pairs)
	require.Len(t, first, 1, "setup: expected one bridge")

	second := CreateBlankBridges(g, pairs)
	assert.Empty(t, second, "expected no new bridge once one already connects the triple")
}

func TestMatchStrength_IdenticalEndpointScoresHigh(t *testing.T) {
	g := graphmodel.New()
	_, blank := g.AddNode(nil)
	_, member := g.AddNode([]byte("hello"))
	_, eIdx, _ := g.AddEdge(blank, member, graphmodel.KindSimilarity, true)
	g.UpdateEdgeWeight(eIdx, 0.9)

	s := MatchStrength(g, blank, []byte("hello"))
	assert.Equal(t, 1.0, s)
}

func TestMatchStrength_NoEdgesIsZero(t *testing.T) {
	g := graphmodel.New()
	_, blank := g.AddNode(nil)
	s := MatchStrength(g, blank, []byte("x"))
	assert.Zero(t, s)
}
