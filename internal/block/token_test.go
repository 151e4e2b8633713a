package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructLiteralsOnly(t *testing.T) {
	tokens := []Token{L('a'), L('b'), L('c')}
	got, err := Reconstruct(tokens, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestReconstructBackReferenceIntoContext(t *testing.T) {
	context := []byte("hello ")
	tokens := []Token{M(5, 6), L('!')}
	got, err := Reconstruct(tokens, context)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello!"), got)
}

func TestReconstructOverlappingCopy(t *testing.T) {
	// "ab" then a length-4 copy at distance 2 must repeat "ab" twice,
	// reading bytes it has just produced within the same copy.
	tokens := []Token{L('a'), L('b'), M(4, 2)}
	got, err := Reconstruct(tokens, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ababab"), got)
}

func TestReconstructDistanceOutOfBoundsErrors(t *testing.T) {
	tokens := []Token{M(3, 5)}
	_, err := Reconstruct(tokens, nil)
	assert.Error(t, err)
}

func TestTokenEqual(t *testing.T) {
	assert.True(t, L('a').Equal(L('a')))
	assert.False(t, L('a').Equal(L('b')))
	assert.True(t, M(4, 10).Equal(M(4, 10)))
	assert.False(t, M(4, 10).Equal(M(4, 11)))
	assert.False(t, L('a').Equal(M(4, 10)))
}

func TestTokenLengthCode(t *testing.T) {
	code, err := L('Z').LengthCode()
	require.NoError(t, err)
	assert.Equal(t, int('Z'), code)

	code, err = M(3, 1).LengthCode()
	require.NoError(t, err)
	assert.Equal(t, 257, code)
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "L 65", L('A').String())
	assert.Equal(t, "M 4 10", M(4, 10).String())
}
