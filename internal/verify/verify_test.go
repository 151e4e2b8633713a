package verify

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeWithFlate(t *testing.T, text []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(text)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRoundTripAcceptsMatchingData(t *testing.T) {
	text := []byte("hello, deflate")
	encoded := encodeWithFlate(t, text)
	assert.NoError(t, RoundTrip(encoded, text))
}

func TestRoundTripRejectsMismatch(t *testing.T) {
	encoded := encodeWithFlate(t, []byte("hello"))
	assert.Error(t, RoundTrip(encoded, []byte("goodbye")))
}

func TestDecodeReturnsPlaintext(t *testing.T) {
	text := []byte("round trip me")
	encoded := encodeWithFlate(t, text)
	got, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestReadHeaderOnEmptyDataErrors(t *testing.T) {
	_, err := ReadHeader(nil)
	assert.Error(t, err)
}

func TestReadHeaderOnFlateOutputReportsValidType(t *testing.T) {
	encoded := encodeWithFlate(t, []byte("some text to compress with a dynamic huffman block"))
	header, err := ReadHeader(encoded)
	require.NoError(t, err)
	assert.LessOrEqual(t, header.Type, uint8(2))
}
