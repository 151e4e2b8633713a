package dump

import (
	"bytes"
	"testing"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredBlockRoundTrips(t *testing.T) {
	orig := &block.Stored{BFinal: true, Data: []byte("payload bytes")}
	var buf bytes.Buffer
	require.NoError(t, WriteBlock(&buf, orig))

	got, err := ReadBlock(&buf)
	require.NoError(t, err)
	s, ok := got.(*block.Stored)
	require.True(t, ok)
	assert.Equal(t, orig.BFinal, s.BFinal)
	assert.Equal(t, orig.Data, s.Data)
}

func TestFixedBlockRoundTrips(t *testing.T) {
	orig := &block.Fixed{BFinal: false, Tokens: []block.Token{block.L('a'), block.M(4, 10), block.L('z')}}
	var buf bytes.Buffer
	require.NoError(t, WriteBlock(&buf, orig))

	got, err := ReadBlock(&buf)
	require.NoError(t, err)
	f, ok := got.(*block.Fixed)
	require.True(t, ok)
	assert.Equal(t, orig.BFinal, f.BFinal)
	require.Len(t, f.Tokens, len(orig.Tokens))
	for i := range orig.Tokens {
		assert.True(t, orig.Tokens[i].Equal(f.Tokens[i]))
	}
}

func TestDynamicBlockRoundTrips(t *testing.T) {
	orig := &block.Dynamic{
		BFinal:              true,
		Tokens:              []block.Token{block.L('h'), block.L('i'), block.M(3, 2)},
		LiteralCodeLengths:  []int{8, 8, 0, 5},
		DistanceCodeLengths: []int{1, 2, 3},
		CLCodeLengths:       []int{1, 2, 3, 4, 5, 6, 7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteBlock(&buf, orig))

	got, err := ReadBlock(&buf)
	require.NoError(t, err)
	d, ok := got.(*block.Dynamic)
	require.True(t, ok)
	assert.Equal(t, orig.BFinal, d.BFinal)
	assert.Equal(t, orig.LiteralCodeLengths, d.LiteralCodeLengths)
	assert.Equal(t, orig.DistanceCodeLengths, d.DistanceCodeLengths)
	assert.Equal(t, orig.CLCodeLengths, d.CLCodeLengths)
	require.Len(t, d.Tokens, len(orig.Tokens))
	for i := range orig.Tokens {
		assert.True(t, orig.Tokens[i].Equal(d.Tokens[i]))
	}
}

func TestVariablesRoundTripWithoutDependency(t *testing.T) {
	vars := []variable.Variable{
		{Name: "count", Occurrences: []int{1, 5, 9}},
		{Name: "index", Occurrences: []int{2, 3}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteVariables(&buf, vars, nil))

	got, dep, err := ReadVariables(&buf, false)
	require.NoError(t, err)
	assert.Nil(t, dep)
	require.Len(t, got, len(vars))
	assert.Equal(t, vars[0].Name, got[0].Name)
	assert.Equal(t, vars[1].Occurrences, got[1].Occurrences)
}

func TestVariablesRoundTripWithDependency(t *testing.T) {
	vars := []variable.Variable{
		{Name: "a", Occurrences: []int{1}},
		{Name: "b", Occurrences: []int{2}},
	}
	dependency := [][]bool{
		{false, true},
		{true, false},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteVariables(&buf, vars, dependency))

	got, dep, err := ReadVariables(&buf, true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, dependency, dep)
}

func TestReadBlockRejectsUnknownType(t *testing.T) {
	buf := bytes.NewBufferString("1 9\n")
	_, err := ReadBlock(buf)
	assert.Error(t, err)
}

func TestReadBlockErrorsOnTruncatedInput(t *testing.T) {
	buf := bytes.NewBufferString("1 0\n5\n")
	_, err := ReadBlock(buf)
	assert.Error(t, err)
}
