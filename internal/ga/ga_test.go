package ga

import (
	"testing"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/coordinator"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	coordOpts := coordinator.DefaultOptions()
	coordOpts.MaxWidthLit = 4
	coordOpts.MaxWidthDist = 3
	coordOpts.MaxWidthCL = 4
	coordOpts.NumIteration = 2
	coordOpts.MaxParseIteration = 2

	return Options{
		Coordinator:    coordOpts,
		MaxWidthLit:    4,
		MaxWidthDist:   3,
		NumIteration:   2,
		PopulationSize: 3,
		CrossoverSize:  2,
	}
}

func seedState(t *testing.T, text []byte, cache *rle.Cache) State {
	t.Helper()
	d := &block.Dynamic{BFinal: true}
	d.ResetAsStaticBlock(cache)
	for _, b := range text {
		d.Tokens = append(d.Tokens, block.L(b))
	}
	return State{Block: d}
}

func TestStateHashIsStableAndSensitiveToCLVector(t *testing.T) {
	cache := rle.NewCache()
	s1 := seedState(t, []byte("abcabc"), cache)
	s2 := s1.Clone()
	assert.Equal(t, s1.Hash(), s2.Hash())

	s2.Block.CLCodeLengths[0] = s2.Block.CLCodeLengths[0] + 1
	assert.NotEqual(t, s1.Hash(), s2.Hash())
}

func TestRunReturnsAStateNoWorseThanTheSeed(t *testing.T) {
	cache := rle.NewCache()
	text := []byte("banana bandana")
	initial := seedState(t, text, cache)

	initialBits, err := initial.BitLength(cache, nil)
	require.NoError(t, err)

	opts := smallOptions()
	src := rng.New(17)

	result, err := Run(src, cache, opts, initial, 1)
	require.NoError(t, err)

	finalBits, err := result.Best.BitLength(cache, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, finalBits, initialBits)

	got, err := result.Best.Block.Reconstruct(nil)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestCloneDoesNotAliasSlices(t *testing.T) {
	cache := rle.NewCache()
	s1 := seedState(t, []byte("xyz"), cache)
	s2 := s1.Clone()
	s2.Block.Tokens[0] = block.L('Q')
	assert.NotEqual(t, s1.Block.Tokens[0], s2.Block.Tokens[0])
}
