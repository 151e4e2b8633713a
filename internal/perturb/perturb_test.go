package perturb

import (
	"testing"

	"github.com/daanv2/deflopt/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kraftSum(lengths []int, maxBitWidth int) int {
	var sum int
	for _, l := range lengths {
		if l > 0 {
			sum += 1 << uint(maxBitWidth-l)
		}
	}
	return sum
}

// spec.md 8: every perturbation move preserves the Kraft equality of a
// complete code and never changes the number of symbols.
func TestApplyPreservesKraftSumAndLength(t *testing.T) {
	src := rng.New(123)
	maxBitWidth := 3
	lengths := []int{1, 2, 2, 0, 0}
	target := kraftSum(lengths, maxBitWidth)
	require.Equal(t, 1<<uint(maxBitWidth), target)

	for i := 0; i < 200; i++ {
		Apply(src, lengths, maxBitWidth)
		require.Len(t, lengths, 5)
		require.Equal(t, target, kraftSum(lengths, maxBitWidth), "iteration %d: %v", i, lengths)
		for _, l := range lengths {
			require.GreaterOrEqual(t, l, 0)
			require.LessOrEqual(t, l, maxBitWidth)
		}
	}
}

func TestApplyOnLargerVectorStaysWithinBudget(t *testing.T) {
	src := rng.New(99)
	maxBitWidth := 4
	// A complete code over 8 symbols, all length 3 except a longer pair.
	lengths := []int{3, 3, 3, 3, 3, 3, 4, 4}
	target := kraftSum(lengths, maxBitWidth)

	for i := 0; i < 50; i++ {
		Apply(src, lengths, maxBitWidth)
		assert.Equal(t, target, kraftSum(lengths, maxBitWidth))
	}
}
