package brainfile

import (
	"bytes"
	"testing"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph() *graphmodel.Graph {
	g := graphmodel.New()
	_, a := g.AddNode([]byte("hello"))
	_, b := g.AddNode([]byte("world"))
	_, eIdx, _ := g.AddEdge(a, b, graphmodel.KindCoActivation, true)
	g.UpdateEdgeWeight(eIdx, 0.42)
	g.NodeByIndex(a).ActivationStrength = 0.5
	g.NodeByIndex(a).Bias = 0.1
	return g
}

func TestSaveOpen_RoundTripsNodesAndEdges(t *testing.T) {
	g := buildGraph()
	s := &State{Graph: g, Input: []byte("in"), Output: []byte("out"), LastModified: 100, AdaptationCount: 3}

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, s))

	loaded, err := Open(&buf)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.Graph.NodeCount())
	assert.Equal(t, 1, loaded.Graph.EdgeCount())
	assert.Equal(t, "in", string(loaded.Input))
	assert.Equal(t, "out", string(loaded.Output))
	assert.EqualValues(t, 3, loaded.AdaptationCount)

	idx, ok := loaded.Graph.NodeByPayload([]byte("hello"))
	require.True(t, ok, "expected to find node with payload \"hello\" after load")
	n := loaded.Graph.NodeByIndex(idx)
	assert.Equal(t, float64(float32(0.5)), n.ActivationStrength)
}

func TestOpen_RecomputesCachedSumsRatherThanTrustingDisk(t *testing.T) {
	g := buildGraph()
	s := &State{Graph: g}
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, s))

	loaded, err := Open(&buf)
	require.NoError(t, err)
	idx, _ := loaded.Graph.NodeByPayload([]byte("hello"))
	n := loaded.Graph.NodeByIndex(idx)
	assert.Equal(t, float64(float32(0.42)), n.OutgoingWeightSum, "expected recomputed outgoing_weight_sum")
}

func TestOpen_RejectsBadMagic(t *testing.T) {
	bad := bytes.Repeat([]byte{0xFF}, 200)
	_, err := Open(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrInvalidBrainFile)
}

func TestOpen_RejectsTruncatedFile(t *testing.T) {
	g := buildGraph()
	s := &State{Graph: g}
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, s))

	truncated := buf.Bytes()[:buf.Len()-5]
	_, err := Open(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrInvalidBrainFile)
}

func TestSaveOpen_EmptyGraphRoundTrips(t *testing.T) {
	g := graphmodel.New()
	s := &State{Graph: g}
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, s))
	loaded, err := Open(&buf)
	require.NoError(t, err)
	assert.Zero(t, loaded.Graph.NodeCount())
	assert.Zero(t, loaded.Graph.EdgeCount())
}
