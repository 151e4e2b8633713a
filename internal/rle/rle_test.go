package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthRLEGroupsMaximalRuns(t *testing.T) {
	runs := LengthRLE([]int{3, 3, 3, 0, 0, 5, 5, 5, 5})
	assert.Equal(t, []Run{
		{Value: 3, Count: 3},
		{Value: 0, Count: 2},
		{Value: 5, Count: 4},
	}, runs)
}

func TestLengthRLEEmpty(t *testing.T) {
	assert.Nil(t, LengthRLE(nil))
}

// spec.md 8: an RLE parse must reconstruct exactly the run it was
// derived from.
func TestOptimalParseRoundTrips(t *testing.T) {
	cache := NewCache()
	clCodeLengths := []int{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 3, 4, 5}

	for _, run := range []Run{
		{Value: 7, Count: 1},
		{Value: 7, Count: 5},
		{Value: 7, Count: 40},
		{Value: 0, Count: 1},
		{Value: 0, Count: 9},
		{Value: 0, Count: 138},
		{Value: 0, Count: 200},
	} {
		codes, err := cache.OptimalParse(run, clCodeLengths)
		require.NoError(t, err)
		got := FlattenCodes(codes, run.Value)
		want := make([]int, run.Count)
		for i := range want {
			want[i] = run.Value
		}
		assert.Equal(t, want, got, "run %+v", run)
	}
}

func TestOptimalParseZeroCountIsEmpty(t *testing.T) {
	cache := NewCache()
	codes, err := cache.OptimalParse(Run{Value: 3, Count: 0}, []int{4})
	require.NoError(t, err)
	assert.Nil(t, codes)
}

func TestOptimalParseInfeasibleWithoutSymbol(t *testing.T) {
	cache := NewCache()
	// No CL code length assigned to symbol 7 (absent), and the run is too
	// short for a PREV_RUN (min 3), so a lone occurrence is infeasible
	// only when even the literal symbol itself is absent.
	clCodeLengths := []int{} // every symbol absent
	_, err := cache.OptimalParse(Run{Value: 7, Count: 1}, clCodeLengths)
	assert.Error(t, err)
}

func TestOptimalParsingCostMatchesParseLength(t *testing.T) {
	cache := NewCache()
	clCodeLengths := []int{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 3, 4, 5}
	run := Run{Value: 0, Count: 50}

	codes, err := cache.OptimalParse(run, clCodeLengths)
	require.NoError(t, err)

	var bits int
	for _, c := range codes {
		symLen := clCodeLengths[c.Symbol()]
		bits += symLen + c.NumAdditionalBits()
	}

	cost := cache.OptimalParsingCost(run.Value, run.Count,
		clCodeLengths[0], clCodeLengths[16], clCodeLengths[17], clCodeLengths[18])
	assert.Equal(t, bits, cost)
}

func TestOptimalParsingCostInfeasibleIsInf(t *testing.T) {
	cache := NewCache()
	cost := cache.OptimalParsingCost(7, 1, 0, 0, 0, 0)
	assert.Equal(t, Inf, cost)
}

func TestCacheReuseAcrossCalls(t *testing.T) {
	cache := NewCache()
	clCodeLengths := []int{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 3, 4, 5}
	_, err := cache.OptimalParse(Run{Value: 0, Count: 20}, clCodeLengths)
	require.NoError(t, err)
	// A second, larger request against the same cost tuple should extend
	// the same cached table rather than fail.
	codes, err := cache.OptimalParse(Run{Value: 0, Count: 100}, clCodeLengths)
	require.NoError(t, err)
	assert.Equal(t, 100, len(FlattenCodes(codes, 0)))
}
