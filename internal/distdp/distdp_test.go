package distdp

import (
	"testing"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformCLCodeLengths() []int {
	cl := make([]int, 19)
	for i := range cl {
		cl[i] = 4
	}
	return cl
}

func TestOptimizeWithNoBackReferencesAssignsDummyDistanceCode(t *testing.T) {
	d := &block.Dynamic{
		Tokens:        []block.Token{block.L('a'), block.L('b')},
		CLCodeLengths: uniformCLCodeLengths(),
	}
	require.NoError(t, Optimize(d, 4))
	assert.Equal(t, []int{1}, d.DistanceCodeLengths)
}

func TestOptimizeAssignsPositiveLengthToUsedDistanceSymbol(t *testing.T) {
	d := &block.Dynamic{
		Tokens: []block.Token{
			block.L('a'), block.L('b'), block.L('c'), block.L('d'), block.L('e'),
			block.M(3, 4),
		},
		CLCodeLengths: uniformCLCodeLengths(),
	}
	require.NoError(t, Optimize(d, 4))
	code, err := block.M(3, 4).DistanceCode()
	require.NoError(t, err)
	require.Less(t, code, len(d.DistanceCodeLengths))
	assert.Greater(t, d.DistanceCodeLengths[code], 0)
}
