// Package distdp implements the distance code-length DP (component F):
// identical in structure to litdp, restricted to the (much smaller)
// distance alphabet, with no sliding-window speedup required. Grounded
// in optimal_lit_code_lengths.hpp's optimize_dist_code_huffman.
package distdp

import (
	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/codedp"
	"github.com/daanv2/deflopt/internal/dperr"
)

// Optimize computes distance-code frequencies from d.Tokens, trims
// trailing unused high symbols down to a floor of 1, and replaces
// d.DistanceCodeLengths with the optimal assignment under
// d.CLCodeLengths and maxBitWidth (default 6). If the block has no
// back-references at all, it assigns a single dummy one-bit distance
// code rather than an empty table: RFC 1951 requires HDIST >= 1 (the
// encoded table always has at least one entry), which zlib and
// klauspost/compress satisfy the same way for a literal-only block.
// Returns dperr.DistCodeDPFailure if no finite-cost assignment exists.
func Optimize(d *block.Dynamic, maxBitWidth int) error {
	freq := make([]int, 30)
	for _, tok := range d.Tokens {
		if tok.Type == block.Copy {
			code, err := tok.DistanceCode()
			if err != nil {
				return err
			}
			freq[code]++
		}
	}
	for len(freq) > 1 && freq[len(freq)-1] == 0 {
		freq = freq[:len(freq)-1]
	}
	if freq[0] == 0 && len(freq) == 1 {
		d.DistanceCodeLengths = []int{1}
		return nil
	}

	costs := codedp.SanitizedCosts(d.CLCodeLengths)
	lengths, ok := codedp.Solve(freq, costs, maxBitWidth)
	if !ok {
		return &dperr.DistCodeDPFailure{NumSymbols: len(freq), MaxWidth: maxBitWidth}
	}
	d.DistanceCodeLengths = lengths
	return nil
}
