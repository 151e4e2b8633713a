package clcode

import (
	"testing"

	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseReturnsKraftValidVector(t *testing.T) {
	cache := rle.NewCache()
	literalLengths := []int{8, 8, 8, 8, 0, 0, 0, 5, 5, 5, 5, 5, 5, 5, 5}
	distLengths := []int{4, 4, 4, 4, 3}

	got, ok := Choose(cache, literalLengths, distLengths)
	require.True(t, ok)
	require.Len(t, got, 19)

	var kraft int
	for _, l := range got {
		if l > 0 {
			kraft += 1 << uint(10-l)
		}
	}
	assert.LessOrEqual(t, kraft, 1<<10)
}

func TestChooseUsedSymbolsGetPositiveLength(t *testing.T) {
	cache := rle.NewCache()
	literalLengths := []int{1, 1}
	distLengths := []int{1}

	got, ok := Choose(cache, literalLengths, distLengths)
	require.True(t, ok)
	assert.Greater(t, got[1], 0)
}

func TestHCLENFloorIsFour(t *testing.T) {
	clCodeLengths := make([]int, 19)
	clCodeLengths[tables.CLCodeOrder[0]] = 3
	assert.Equal(t, 4, HCLEN(clCodeLengths))
}

func TestHCLENExtendsToLastNonzero(t *testing.T) {
	clCodeLengths := make([]int, 19)
	clCodeLengths[tables.CLCodeOrder[10]] = 5
	assert.Equal(t, 11, HCLEN(clCodeLengths))
}
