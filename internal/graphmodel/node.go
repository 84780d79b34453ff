// Package graphmodel implements the node/edge/graph primitives:
// payload-bearing nodes with cached local sums, directed weighted edges,
// and the grow-only graph container that owns them. Nodes and edges are
// held in arenas addressed by stable integer index, never by pointer —
// this removes aliasing concerns and makes the "no deletion" rule free.
package graphmodel

import (
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/growlist"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/learning"
)

// Node is an atomic pattern unit.
type Node struct {
	// ID is a 64-bit monotonic counter, stable across saves.
	ID uint64

	// Payload is the opaque byte sequence this node matches. A zero-length
	// payload marks a "blank" node (see internal/hierarchy).
	Payload []byte

	// ActivationStrength is recomputed every wave step; always in [0,1].
	ActivationStrength float64

	// Weight is the node's activation history, always >= 0.
	Weight float64

	// Bias is self-regulating relative to local edge averages; unbounded
	// but always finite.
	Bias float64

	// AbstractionLevel is 0 for raw bytes, >=1 for emergent hierarchical
	// combinations.
	AbstractionLevel uint32

	// Outgoing and Incoming hold edge indices (into Graph.Edges), in
	// creation order.
	Outgoing *growlist.List[int]
	Incoming *growlist.List[int]

	// OutgoingWeightSum and IncomingWeightSum are caches maintained
	// incrementally by every routine that mutates an edge weight; they
	// must equal the true sum of the respective edge weights at every
	// externally observable point.
	OutgoingWeightSum float64
	IncomingWeightSum float64

	// RecentWeightChanges is the adaptive rolling window of |Δweight|
	// contributions to this node's own outgoing edges.
	RecentWeightChanges *learning.Window

	// DegreeHistory is the adaptive rolling window of this node's total
	// degree, sampled each time an incident edge is added. Its mean is the
	// node's own historical-degree baseline used by the homeostatic law.
	DegreeHistory *learning.Window
}

// newNode constructs a Node with the given id and payload, with all
// fields at their zero/initial state.
func newNode(id uint64, payload []byte) *Node {
	return &Node{
		ID:                  id,
		Payload:             payload,
		ActivationStrength:  0,
		Weight:              0,
		Bias:                0,
		AbstractionLevel:    0,
		Outgoing:            growlist.New[int](),
		Incoming:            growlist.New[int](),
		RecentWeightChanges: learning.NewWindow(),
		DegreeHistory:       learning.NewWindow(),
	}
}

// IsBlank reports whether this node has a zero-length payload.
func (n *Node) IsBlank() bool {
	return len(n.Payload) == 0
}

// OutgoingAvg returns the mean weight of n's outgoing edges, or 0 when n
// has no outgoing edges (never a hard-coded positive fallback).
func (n *Node) OutgoingAvg() float64 {
	count := n.Outgoing.Len()
	if count == 0 {
		return 0
	}
	return n.OutgoingWeightSum / float64(count)
}

// IncomingAvg returns the mean weight of n's incoming edges, or 0 when n
// has no incoming edges.
func (n *Node) IncomingAvg() float64 {
	count := n.Incoming.Len()
	if count == 0 {
		return 0
	}
	return n.IncomingWeightSum / float64(count)
}

// LocalAvg returns (OutgoingAvg + IncomingAvg) / 2, the local neighborhood
// average used throughout the engine's bias and threshold formulas.
func (n *Node) LocalAvg() float64 {
	return (n.OutgoingAvg() + n.IncomingAvg()) / 2
}

// Degree returns the total number of incident edges (outgoing + incoming).
func (n *Node) Degree() int {
	return n.Outgoing.Len() + n.Incoming.Len()
}

// HistoricalDegreeAvg returns the mean of this node's own degree samples
// over time, or 0 if none have been recorded yet.
func (n *Node) HistoricalDegreeAvg() float64 {
	return n.DegreeHistory.Mean()
}

// LocalChangeRate is this node's adaptive learning rate alpha, derived
// solely from its own rolling window of recent |Δweight| contributions.
func (n *Node) LocalChangeRate() float64 {
	return n.RecentWeightChanges.Rate()
}
