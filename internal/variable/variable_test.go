package variable

import (
	"testing"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSamenameUnionsOccurrencesAndConflicts(t *testing.T) {
	vars := []Variable{
		{Name: "x", Occurrences: []int{5, 1}},
		{Name: "y", Occurrences: []int{2}},
		{Name: "x", Occurrences: []int{9}},
	}
	conflict := [][]bool{
		{false, false, true},
		{false, false, false},
		{true, false, false},
	}
	merged, mergedConflict := MergeSamename(vars, conflict)
	require.Len(t, merged, 2)
	assert.Equal(t, "x", merged[0].Name)
	assert.Equal(t, []int{1, 5, 9}, merged[0].Occurrences)
	assert.Equal(t, "y", merged[1].Name)
	// x (rows/cols 0 and 2) conflicted with itself only across its own
	// occurrences, not with y.
	assert.True(t, mergedConflict[0][0])
	assert.False(t, mergedConflict[0][1])
}

func TestMergeSamenameNoOpWhenAllNamesDistinct(t *testing.T) {
	vars := []Variable{{Name: "a"}, {Name: "b"}}
	merged, _ := MergeSamename(vars, nil)
	assert.Equal(t, vars, merged)
}

func TestIsPReplaceableRequiresExactlyOneLoneP(t *testing.T) {
	assert.True(t, IsPReplaceable([]byte("int p = 0;")))
	assert.False(t, IsPReplaceable([]byte("int p = 0; int p2 = 1;")))
	assert.False(t, IsPReplaceable([]byte("no matches here")))
	assert.False(t, IsPReplaceable([]byte("p and p again")))
}

func literalBlock(text string) *block.Dynamic {
	d := &block.Dynamic{}
	for i := 0; i < len(text); i++ {
		d.Tokens = append(d.Tokens, block.L(text[i]))
	}
	d.LiteralCodeLengths = make([]int, 257)
	for i := range d.LiteralCodeLengths {
		d.LiteralCodeLengths[i] = 8
	}
	return d
}

func TestCharStatsCountsVariableOccurrences(t *testing.T) {
	d := literalBlock("aXaXbY")
	vars := []Variable{
		{Name: "X", Occurrences: []int{1, 3}},
		{Name: "Y", Occurrences: []int{5}},
	}
	stats, err := CharStats(d, vars)
	require.NoError(t, err)
	assert.Equal(t, 2, stats['X'].NumVarOccurrencesAsLiteral)
	assert.Equal(t, 1, stats['Y'].NumVarOccurrencesAsLiteral)
	assert.Equal(t, 2, stats['a'].NumNonVarOccurrencesAsLiteral)
}

func TestCharStatsRejectsInconsistentOccurrence(t *testing.T) {
	d := literalBlock("abc")
	vars := []Variable{{Name: "X", Occurrences: []int{0}}}
	_, err := CharStats(d, vars)
	assert.Error(t, err)
}

func TestReplaceAndReparseRenamesAndReparses(t *testing.T) {
	d := literalBlock("aXaXbb")
	vars := []Variable{{Name: "X", Occurrences: []int{1, 3}}}
	mapping := []int{int('c')}

	require.NoError(t, ReplaceAndReparse(d, vars, mapping))
	assert.Equal(t, "c", vars[0].Name)

	text, err := d.Reconstruct(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("acacbb"), text)
}

func TestOptimizeInjectiveReturnsMappingSizedLikeVars(t *testing.T) {
	d := literalBlock("aXaXbY")
	vars := []Variable{
		{Name: "X", Occurrences: []int{1, 3}},
		{Name: "Y", Occurrences: []int{5}},
	}
	mapping, err := Optimize(d, vars, nil, NumNonVarAsLiteral, BFS, Injective)
	require.NoError(t, err)
	assert.Len(t, mapping, len(vars))
}

func TestOptimizeGreedyRequiresConflictMatrix(t *testing.T) {
	d := literalBlock("aXaXbY")
	vars := []Variable{{Name: "X", Occurrences: []int{1, 3}}}
	_, err := Optimize(d, vars, nil, NumNonVarAsLiteral, BFS, Greedy)
	assert.Error(t, err)
}

func TestChangeVariableSetReturnsMappingSizedLikeVars(t *testing.T) {
	d := literalBlock("aXaXbY")
	vars := []Variable{
		{Name: "X", Occurrences: []int{1, 3}},
		{Name: "Y", Occurrences: []int{5}},
	}
	src := rng.New(5)
	mapping, err := ChangeVariableSet(src, d, vars)
	require.NoError(t, err)
	assert.Len(t, mapping, len(vars))
}
