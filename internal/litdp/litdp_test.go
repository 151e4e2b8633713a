package litdp

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

func TestOptimizeAssignsPositiveLengthsToUsedSymbols(t *testing.T) {
	d := &block.Dynamic{
		Tokens:        []block.Token{block.L('a'), block.L('a'), block.L('b')},
		CLCodeLengths: uniformCLCodeLengths(),
	}
	require.NoError(t, Optimize(d, 4))

	assert.Equal(t, 257, len(d.LiteralCodeLengths))
	assert.Greater(t, d.LiteralCodeLengths[int('a')], 0)
	assert.Greater(t, d.LiteralCodeLengths[int('b')], 0)
	assert.Greater(t, d.LiteralCodeLengths[256], 0, "end-of-block must always be assigned")
}

func TestOptimizeMoreFrequentSymbolGetsShorterOrEqualCode(t *testing.T) {
	tokens := []block.Token{block.L('a')}
	for i := 0; i < 20; i++ {
		tokens = append(tokens, block.L('a'))
	}
	tokens = append(tokens, block.L('b'))

	d := &block.Dynamic{Tokens: tokens, CLCodeLengths: uniformCLCodeLengths()}
	require.NoError(t, Optimize(d, 4))

	assert.LessOrEqual(t, d.LiteralCodeLengths[int('a')], d.LiteralCodeLengths[int('b')])
}
