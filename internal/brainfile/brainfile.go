// Package brainfile implements the binary persistence format that IS the
// engine's memory: a single file holding the header, node section, edge
// section, and the last input/output buffers. Opening it restores a
// graph; saving it writes the graph back out in full.
package brainfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/graphmodel"
)

// magic is the fixed 8-byte file signature, "MELVIN" padded with two NUL
// bytes.
var magic = [8]byte{'M', 'E', 'L', 'V', 'I', 'N', 0, 0}

// CurrentVersion is the format version this package reads and writes.
const CurrentVersion = 1

// ErrInvalidBrainFile is returned for a magic mismatch, a truncated
// section, or an edge whose endpoint id cannot be resolved to a loaded
// node. It is non-recoverable at Open — the caller must discard the
// attempt.
var ErrInvalidBrainFile = errors.New("brainfile: invalid or corrupt brain file")

const headerSize = 8 + 4 + 4 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8

// header mirrors the fixed-offset on-disk header record.
type header struct {
	Version         uint32
	Flags           uint32
	NodeCount       uint64
	EdgeCount       uint64
	InputSize       uint64
	InputOffset     uint64
	OutputSize      uint64
	OutputOffset    uint64
	NodesOffset     uint64
	EdgesOffset     uint64
	PayloadsOffset  uint64
	LastModified    uint64
	AdaptationCount uint64
}

// State is a graph plus the engine-level bookkeeping that rides alongside
// it in the brain file: the last input/output buffers and the dirty/save
// counters.
type State struct {
	Graph           *graphmodel.Graph
	Input           []byte
	Output          []byte
	LastModified    uint64
	AdaptationCount uint64
}

// idFieldSize is 8 bytes of id plus one reserved/null byte, per the wire
// format's 9-byte id fields.
const idFieldSize = 9

func putID(buf []byte, id uint64) {
	binary.LittleEndian.PutUint64(buf[:8], id)
	buf[8] = 0
}

func getID(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf[:8])
}

// Save writes the full brain file for s to w: header, node section, edge
// section, input buffer, output buffer. Section offsets are recomputed
// from scratch on every call.
func Save(w io.Writer, s *State) error {
	g := s.Graph

	var nodeBuf bytes.Buffer
	nodeCount := uint64(g.NodeCount())
	writeUint64(&nodeBuf, nodeCount)
	for i := 0; i < g.NodeCount(); i++ {
		n := g.NodeByIndex(i)
		idBuf := make([]byte, idFieldSize)
		putID(idBuf, n.ID)
		nodeBuf.Write(idBuf)
		writeFloat32(&nodeBuf, float32(n.ActivationStrength))
		writeFloat32(&nodeBuf, float32(n.Weight))
		writeFloat32(&nodeBuf, float32(n.Bias))
		writeUint32(&nodeBuf, n.AbstractionLevel)
		writeUint64(&nodeBuf, uint64(len(n.Payload)))
		nodeBuf.Write(n.Payload)
	}

	var edgeBuf bytes.Buffer
	edgeCount := uint64(g.EdgeCount())
	writeUint64(&edgeBuf, edgeCount)
	for i := 0; i < g.EdgeCount(); i++ {
		e := g.Edges.At(i)
		fromID := g.NodeByIndex(e.From).ID
		toID := g.NodeByIndex(e.To).ID

		fromBuf := make([]byte, idFieldSize)
		putID(fromBuf, fromID)
		edgeBuf.Write(fromBuf)

		toBuf := make([]byte, idFieldSize)
		putID(toBuf, toID)
		edgeBuf.Write(toBuf)

		edgeBuf.WriteByte(boolByte(e.Direction))
		edgeBuf.WriteByte(boolByte(e.Activation))
		edgeBuf.WriteByte(byte(e.Kind))
		writeFloat32(&edgeBuf, float32(e.Weight))
	}

	nodesOffset := uint64(headerSize)
	edgesOffset := nodesOffset + uint64(nodeBuf.Len())
	inputOffset := edgesOffset + uint64(edgeBuf.Len())
	outputOffset := inputOffset + 8 + uint64(len(s.Input))

	h := header{
		Version:         CurrentVersion,
		NodeCount:       nodeCount,
		EdgeCount:       edgeCount,
		InputSize:       uint64(len(s.Input)),
		InputOffset:     inputOffset,
		OutputSize:      uint64(len(s.Output)),
		OutputOffset:    outputOffset,
		NodesOffset:     nodesOffset,
		EdgesOffset:     edgesOffset,
		PayloadsOffset:  0,
		LastModified:    s.LastModified,
		AdaptationCount: s.AdaptationCount,
	}

	if err := writeHeader(w, h); err != nil {
		return fmt.Errorf("brainfile: write header: %w", err)
	}
	if _, err := w.Write(nodeBuf.Bytes()); err != nil {
		return fmt.Errorf("brainfile: write node section: %w", err)
	}
	if _, err := w.Write(edgeBuf.Bytes()); err != nil {
		return fmt.Errorf("brainfile: write edge section: %w", err)
	}
	if err := writeSizedBuffer(w, s.Input); err != nil {
		return fmt.Errorf("brainfile: write input buffer: %w", err)
	}
	if err := writeSizedBuffer(w, s.Output); err != nil {
		return fmt.Errorf("brainfile: write output buffer: %w", err)
	}
	return nil
}

// Open reads a full brain file from r, validating the magic and version,
// reconstructing every node and edge, and recomputing cached sums
// incrementally during edge reattachment rather than trusting any
// on-disk cache.
func Open(r io.Reader) (*State, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("brainfile: read: %w", err)
	}
	if len(raw) < len(magic) {
		return nil, ErrInvalidBrainFile
	}
	var gotMagic [8]byte
	copy(gotMagic[:], raw[:8])
	if gotMagic != magic {
		return nil, ErrInvalidBrainFile
	}

	h, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}
	if h.Version != CurrentVersion {
		return nil, ErrInvalidBrainFile
	}

	g := graphmodel.New()

	if uint64(len(raw)) < h.NodesOffset+8 {
		return nil, ErrInvalidBrainFile
	}
	pos := h.NodesOffset
	nodeCount := binary.LittleEndian.Uint64(raw[pos : pos+8])
	pos += 8
	for i := uint64(0); i < nodeCount; i++ {
		if pos+idFieldSize+4+4+4+4+8 > uint64(len(raw)) {
			return nil, ErrInvalidBrainFile
		}
		id := getID(raw[pos : pos+idFieldSize])
		pos += idFieldSize
		activation := readFloat32(raw[pos:])
		pos += 4
		weight := readFloat32(raw[pos:])
		pos += 4
		bias := readFloat32(raw[pos:])
		pos += 4
		abstractionLevel := binary.LittleEndian.Uint32(raw[pos : pos+4])
		pos += 4
		payloadSize := binary.LittleEndian.Uint64(raw[pos : pos+8])
		pos += 8
		if pos+payloadSize > uint64(len(raw)) {
			return nil, ErrInvalidBrainFile
		}
		payload := append([]byte(nil), raw[pos:pos+payloadSize]...)
		pos += payloadSize

		n, _ := g.AddNodeWithID(id, payload)
		n.ActivationStrength = float64(activation)
		n.Weight = float64(weight)
		n.Bias = float64(bias)
		n.AbstractionLevel = abstractionLevel
	}

	if uint64(len(raw)) < h.EdgesOffset+8 {
		return nil, ErrInvalidBrainFile
	}
	pos = h.EdgesOffset
	edgeCount := binary.LittleEndian.Uint64(raw[pos : pos+8])
	pos += 8
	for i := uint64(0); i < edgeCount; i++ {
		if pos+idFieldSize*2+1+1+1+4 > uint64(len(raw)) {
			return nil, ErrInvalidBrainFile
		}
		fromID := getID(raw[pos : pos+idFieldSize])
		pos += idFieldSize
		toID := getID(raw[pos : pos+idFieldSize])
		pos += idFieldSize
		direction := raw[pos] != 0
		pos++
		activation := raw[pos] != 0
		pos++
		kind := graphmodel.Kind(raw[pos])
		if kind > graphmodel.KindHomeostatic {
			return nil, ErrInvalidBrainFile
		}
		pos++
		weight := readFloat32(raw[pos:])
		pos += 4

		fromIdx, ok := g.NodeIndexByID(fromID)
		if !ok {
			return nil, ErrInvalidBrainFile
		}
		toIdx, ok := g.NodeIndexByID(toID)
		if !ok {
			return nil, ErrInvalidBrainFile
		}

		_, eIdx, err := g.AddEdge(fromIdx, toIdx, kind, direction)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBrainFile, err)
		}
		g.UpdateEdgeWeight(eIdx, float64(weight))
		g.Edges.At(eIdx).Activation = activation
	}

	input, err := readSizedBuffer(raw, h.InputOffset)
	if err != nil {
		return nil, err
	}
	output, err := readSizedBuffer(raw, h.OutputOffset)
	if err != nil {
		return nil, err
	}

	return &State{
		Graph:           g,
		Input:           input,
		Output:          output,
		LastModified:    h.LastModified,
		AdaptationCount: h.AdaptationCount,
	}, nil
}

func writeHeader(w io.Writer, h header) error {
	buf := make([]byte, headerSize)
	copy(buf[0:8], magic[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], h.Flags)
	binary.LittleEndian.PutUint64(buf[16:24], h.NodeCount)
	binary.LittleEndian.PutUint64(buf[24:32], h.EdgeCount)
	binary.LittleEndian.PutUint64(buf[32:40], h.InputSize)
	binary.LittleEndian.PutUint64(buf[40:48], h.InputOffset)
	binary.LittleEndian.PutUint64(buf[48:56], h.OutputSize)
	binary.LittleEndian.PutUint64(buf[56:64], h.OutputOffset)
	binary.LittleEndian.PutUint64(buf[64:72], h.NodesOffset)
	binary.LittleEndian.PutUint64(buf[72:80], h.EdgesOffset)
	binary.LittleEndian.PutUint64(buf[80:88], h.PayloadsOffset)
	binary.LittleEndian.PutUint64(buf[88:96], h.LastModified)
	binary.LittleEndian.PutUint64(buf[96:104], h.AdaptationCount)
	_, err := w.Write(buf)
	return err
}

func parseHeader(raw []byte) (header, error) {
	if len(raw) < headerSize {
		return header{}, ErrInvalidBrainFile
	}
	return header{
		Version:         binary.LittleEndian.Uint32(raw[8:12]),
		Flags:           binary.LittleEndian.Uint32(raw[12:16]),
		NodeCount:       binary.LittleEndian.Uint64(raw[16:24]),
		EdgeCount:       binary.LittleEndian.Uint64(raw[24:32]),
		InputSize:       binary.LittleEndian.Uint64(raw[32:40]),
		InputOffset:     binary.LittleEndian.Uint64(raw[40:48]),
		OutputSize:      binary.LittleEndian.Uint64(raw[48:56]),
		OutputOffset:    binary.LittleEndian.Uint64(raw[56:64]),
		NodesOffset:     binary.LittleEndian.Uint64(raw[64:72]),
		EdgesOffset:     binary.LittleEndian.Uint64(raw[72:80]),
		PayloadsOffset:  binary.LittleEndian.Uint64(raw[80:88]),
		LastModified:    binary.LittleEndian.Uint64(raw[88:96]),
		AdaptationCount: binary.LittleEndian.Uint64(raw[96:104]),
	}, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	buf.Write(tmp[:])
}

func readFloat32(raw []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(raw[:4]))
}

func writeSizedBuffer(w io.Writer, data []byte) error {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(len(data)))
	if _, err := w.Write(tmp[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readSizedBuffer(raw []byte, offset uint64) ([]byte, error) {
	if uint64(len(raw)) < offset+8 {
		return nil, ErrInvalidBrainFile
	}
	size := binary.LittleEndian.Uint64(raw[offset : offset+8])
	start := offset + 8
	if uint64(len(raw)) < start+size {
		return nil, ErrInvalidBrainFile
	}
	return append([]byte(nil), raw[start:start+size]...), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
