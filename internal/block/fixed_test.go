package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedLiteralCodeLengthBoundaries(t *testing.T) {
	f := &Fixed{}
	assert.Equal(t, 8, f.LiteralCodeLength(0))
	assert.Equal(t, 8, f.LiteralCodeLength(143))
	assert.Equal(t, 9, f.LiteralCodeLength(144))
	assert.Equal(t, 9, f.LiteralCodeLength(255))
	assert.Equal(t, 7, f.LiteralCodeLength(256))
	assert.Equal(t, 7, f.LiteralCodeLength(279))
	assert.Equal(t, 8, f.LiteralCodeLength(280))
	assert.Equal(t, 8, f.LiteralCodeLength(287))
}

func TestFixedDistanceCodeLengthIsAlwaysFive(t *testing.T) {
	f := &Fixed{}
	assert.Equal(t, 5, f.DistanceCodeLength(0))
	assert.Equal(t, 5, f.DistanceCodeLength(29))
}

func TestFixedBitLengthIncludesExtraBits(t *testing.T) {
	// Length 11 is code 265 with one extra bit; distance 1 has none.
	f := &Fixed{Tokens: []Token{L('a'), M(11, 1)}}
	length, err := f.BitLength()
	require.NoError(t, err)
	assert.Equal(t, 3+8+(7+1)+5+7, length)
}

func TestFixedReconstruct(t *testing.T) {
	f := &Fixed{Tokens: []Token{L('h'), L('i')}}
	got, err := f.Reconstruct(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)
}
