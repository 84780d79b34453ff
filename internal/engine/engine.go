// Package engine ties the graph's per-input pipeline together: sequential
// ingest, the four edge-creation laws, wave propagation, hierarchy/blank
// emergence, and output collection, wrapped in the single synchronous
// entry point the rest of the system calls.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/brainfile"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/edges"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/hierarchy"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/ingest"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/logging"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/output"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/portframe"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/spreading"
)

// Sentinel errors the engine raises. InvalidBrainFile and IOFailure
// propagate to the caller from Open/Save; AllocationFailure and
// MalformedFrame are contained within ProcessInput.
var (
	ErrInvalidBrainFile  = brainfile.ErrInvalidBrainFile
	ErrIOFailure         = errors.New("engine: brain file I/O failed")
	ErrAllocationFailure = errors.New("engine: growth allocation failed")
	ErrMalformedFrame    = portframe.ErrMalformedFrame
	ErrPoisoned          = errors.New("engine: engine is poisoned after a prior I/O failure")
)

// Engine owns one graph, its universal input/output buffers, and the
// single mutex-guarded critical section process_input runs inside.
type Engine struct {
	mu sync.Mutex

	graph  *graphmodel.Graph
	input  []byte
	output []byte

	lastInputPortID byte
	adaptationCount uint64
	lastModified    uint64
	dirty           bool
	poisoned        bool

	seedOverride *int64

	decisions *logging.DecisionLogger
}

// SetSeedOverride pins the output PRNG's seed to a fixed value instead of
// the engine deriving it from graph state and input bytes on every call —
// a determinism knob for reproducing one specific run.
func (e *Engine) SetSeedOverride(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seedOverride = &seed
}

// New creates a fresh, empty engine.
func New(decisions *logging.DecisionLogger) *Engine {
	return &Engine{graph: graphmodel.New(), decisions: decisions}
}

// Open reconstructs an engine from a previously saved brain file.
func Open(state *brainfile.State, decisions *logging.DecisionLogger) *Engine {
	return &Engine{
		graph:           state.Graph,
		input:           state.Input,
		output:          state.Output,
		adaptationCount: state.AdaptationCount,
		lastModified:    state.LastModified,
		decisions:       decisions,
	}
}

// Graph exposes the underlying graph for read-only inspection (e.g.
// dump-stats).
func (e *Engine) Graph() *graphmodel.Graph {
	return e.graph
}

// UniversalOutputRead returns a copy of the current universal output
// buffer.
func (e *Engine) UniversalOutputRead() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.output...)
}

// State snapshots the engine into a brainfile.State suitable for Save.
func (e *Engine) State() *brainfile.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &brainfile.State{
		Graph:           e.graph,
		Input:           append([]byte(nil), e.input...),
		Output:          append([]byte(nil), e.output...),
		LastModified:    e.lastModified,
		AdaptationCount: e.adaptationCount,
	}
}

// Dirty reports whether the graph has changed since the last Save.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// MarkSaved clears the dirty flag after a successful save, recording the
// save's timestamp (epoch seconds, supplied by the caller so the engine
// itself never reads the wall clock).
func (e *Engine) MarkSaved(epochSeconds uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = false
	e.lastModified = epochSeconds
}

// ProcessInput writes frame into the universal input buffer and runs the
// full C3->C4->C5->C6->C7 pipeline to completion, leaving any emitted
// bytes in the universal output buffer. This is the engine's one
// synchronous entry point: the input write and the whole pipeline run as
// one critical section under e.mu. UniversalOutputRead takes e.mu in a
// separate call, so the read is not part of that section: a ProcessInput
// call from another goroutine in between replaces the output buffer
// before it is read.
func (e *Engine) ProcessInput(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.poisoned {
		return ErrPoisoned
	}

	decoded, err := portframe.Decode(frame)
	if err != nil {
		e.output = nil
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	// The universal input buffer is the port-id byte followed by the
	// frame's data — the timestamp and size header are wire-transport
	// concerns, consumed by decoding the frame above.
	// The port-id byte stays part of the ingested stream so patterns can
	// be learned per-port.
	buf := make([]byte, 0, 1+len(decoded.Data))
	buf = append(buf, decoded.PortID)
	buf = append(buf, decoded.Data...)

	e.input = buf
	e.lastInputPortID = decoded.PortID

	g := e.graph
	nodeCountBefore := g.NodeCount()

	recentContext := append([]int(nil), g.LastActivated.Slice()...)
	initial := ingest.Walk(g, buf, recentContext)

	var newNodes []int
	for _, idx := range initial {
		if idx >= nodeCountBefore {
			newNodes = append(newNodes, idx)
		}
	}

	edges.ApplyCoActivation(g, initial)
	for i := 0; i+1 < len(initial); i++ {
		if _, eIdx, ok := g.FindEdge(initial[i], initial[i+1]); ok {
			hierarchy.FormIfDominant(g, eIdx)
		}
	}

	pairs := edges.ApplySimilarity(g, newNodes)
	hierarchy.CreateBlankBridges(g, pairs)

	result := spreading.Propagate(g, initial)
	for _, frontier := range result.StepFrontiers {
		edges.ApplyContext(g, frontier)
	}
	edges.ApplyHomeostatic(g, result.EverActivated)

	g.ResetActivated()
	for _, idx := range result.EverActivated {
		g.PushActivated(idx)
	}

	decision := output.DecideReadiness(g, initial)
	e.logDecision(decision, len(initial), len(newNodes))

	if !decision.Ready {
		e.output = nil
	} else {
		seed := output.Seed(g, buf)
		if e.seedOverride != nil {
			seed = *e.seedOverride
		}
		rng := rand.New(rand.NewSource(seed))
		e.output = output.Collect(g, initial, rng)
	}

	e.adaptationCount++
	e.dirty = true
	return nil
}

// LastInputPortID returns the port id extracted from the most recently
// processed frame.
func (e *Engine) LastInputPortID() byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastInputPortID
}

// AdaptationCount returns the number of successful process_input calls
// recorded for this graph, including the count restored from the brain
// file it was opened from.
func (e *Engine) AdaptationCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.adaptationCount
}

// Poison marks the engine unusable after a non-recoverable I/O failure,
// per the error-propagation policy: persistence failures are not
// contained the way C3-C7 failures are.
func (e *Engine) Poison() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.poisoned = true
}

// SaveToFile persists the engine's current state to path, truncating any
// existing file. On failure the engine is poisoned: persistence failures
// are non-recoverable, unlike C3-C7 failures which are contained within
// ProcessInput.
func (e *Engine) SaveToFile(path string, epochSeconds uint64) error {
	f, err := os.Create(path)
	if err != nil {
		e.Poison()
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	state := e.State()
	state.LastModified = epochSeconds
	state.AdaptationCount = e.AdaptationCount()

	if err := brainfile.Save(f, state); err != nil {
		e.Poison()
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	e.MarkSaved(epochSeconds)
	return nil
}

// OpenFromFile reconstructs an engine from the brain file at path.
func OpenFromFile(path string, decisions *logging.DecisionLogger) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	state, err := brainfile.Open(f)
	if err != nil {
		if errors.Is(err, brainfile.ErrInvalidBrainFile) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return Open(state, decisions), nil
}

func (e *Engine) logDecision(d output.Decision, initialCount, newNodeCount int) {
	if e.decisions == nil {
		return
	}
	e.decisions.Log(map[string]any{
		"event":          "readiness",
		"ready":          d.Ready,
		"readiness":      d.Readiness,
		"threshold":      d.Threshold,
		"initial_count":  initialCount,
		"new_node_count": newNodeCount,
		"port_id":        e.lastInputPortID,
	})
}
