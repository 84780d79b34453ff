// Package portframe implements the CAN-bus-style frame codec: the wire
// format port drivers use to deliver opaque byte payloads, tagged with a
// port id, to the port manager.
package portframe

import (
	"encoding/binary"
	"errors"
	"time"
)

// headerSize is the fixed byte length of a frame's header: 1-byte port id,
// 8-byte little-endian timestamp, 4-byte little-endian data size.
const headerSize = 1 + 8 + 4

// ErrMalformedFrame is returned when a buffer is too short to contain even
// the port-id + timestamp + size header.
var ErrMalformedFrame = errors.New("portframe: buffer too short for port-id + timestamp + size header")

// Frame is a decoded CAN-bus-style port frame.
type Frame struct {
	PortID    byte
	Timestamp time.Time
	Data      []byte
}

// Encode serializes f into the wire format: [port_id(1B)]
// [timestamp(8B LE)][data_size(4B LE)][data(NB)].
func Encode(f Frame) []byte {
	buf := make([]byte, headerSize+len(f.Data))
	buf[0] = f.PortID
	binary.LittleEndian.PutUint64(buf[1:9], uint64(f.Timestamp.Unix()))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(len(f.Data)))
	copy(buf[headerSize:], f.Data)
	return buf
}

// Decode parses raw into a Frame. It returns ErrMalformedFrame if raw is
// too short to contain the header, or if the declared data_size overruns
// the buffer.
func Decode(raw []byte) (Frame, error) {
	if len(raw) < headerSize {
		return Frame{}, ErrMalformedFrame
	}

	portID := raw[0]
	epoch := binary.LittleEndian.Uint64(raw[1:9])
	size := binary.LittleEndian.Uint32(raw[9:13])

	if uint64(len(raw)-headerSize) < uint64(size) {
		return Frame{}, ErrMalformedFrame
	}

	data := make([]byte, size)
	copy(data, raw[headerSize:headerSize+int(size)])

	return Frame{
		PortID:    portID,
		Timestamp: time.Unix(int64(epoch), 0).UTC(),
		Data:      data,
	}, nil
}

// ExtractPortID returns the first byte of raw as a routing port id without
// fully decoding the frame. Returns ErrMalformedFrame if raw is empty.
func ExtractPortID(raw []byte) (byte, error) {
	if len(raw) == 0 {
		return 0, ErrMalformedFrame
	}
	return raw[0], nil
}
