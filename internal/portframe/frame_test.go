package portframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	f := Frame{
		PortID:    1,
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Data:      []byte("hello"),
	}
	raw := Encode(f)
	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, f.PortID, got.PortID)
	assert.True(t, got.Timestamp.Equal(f.Timestamp))
	assert.Equal(t, f.Data, got.Data)
}

func TestDecode_TooShortIsMalformed(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecode_DeclaredSizeOverrunsBuffer(t *testing.T) {
	raw := Encode(Frame{PortID: 1, Data: []byte("ab")})
	truncated := raw[:len(raw)-1]
	_, err := Decode(truncated)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestExtractPortID_EmptyIsMalformed(t *testing.T) {
	_, err := ExtractPortID(nil)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestExtractPortID_PortZeroIsLegal(t *testing.T) {
	raw := Encode(Frame{PortID: 0, Data: []byte("x")})
	id, err := ExtractPortID(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0), id)
}
