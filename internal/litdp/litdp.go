// Package litdp implements the literal/length code-length DP (component
// E): given token frequencies and CL symbol costs, choose the length
// vector minimizing the combined cost of token emission and length-table
// encoding. Grounded in optimal_lit_code_lengths.hpp's
// optimize_lit_code_huffman_slow.
package litdp

import (
	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/codedp"
	"github.com/daanv2/deflopt/internal/dperr"
)

// Optimize computes token frequencies from d.Tokens, forces the
// end-of-block symbol present, trims trailing unused high symbols down
// to a floor of 257, and replaces d.LiteralCodeLengths with the optimal
// assignment under d.CLCodeLengths and maxBitWidth (default 9).
// Returns dperr.LitCodeDPFailure if no finite-cost assignment exists.
func Optimize(d *block.Dynamic, maxBitWidth int) error {
	freq := make([]int, 286)
	for _, tok := range d.Tokens {
		symbol, err := tok.LengthCode()
		if err != nil {
			return err
		}
		freq[symbol]++
	}
	freq[256] = 1
	for len(freq) > 257 && freq[len(freq)-1] == 0 {
		freq = freq[:len(freq)-1]
	}

	costs := codedp.SanitizedCosts(d.CLCodeLengths)
	lengths, ok := codedp.Solve(freq, costs, maxBitWidth)
	if !ok {
		return &dperr.LitCodeDPFailure{NumSymbols: len(freq), MaxWidth: maxBitWidth}
	}
	d.LiteralCodeLengths = lengths
	return nil
}
