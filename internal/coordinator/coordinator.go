// Package coordinator implements the block coordinator (component H):
// the round-robin driver that alternates the literal/distance
// code-length DPs (components E, F) with the optimal parser and CL
// chooser (components G, D) until the block's bit length stops
// improving, optionally perturbing a stalled CL vector (component I)
// before retrying. Grounded in optimizer.hpp's optimize_huffman_tree.
package coordinator

import (
	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/clcode"
	"github.com/daanv2/deflopt/internal/distdp"
	"github.com/daanv2/deflopt/internal/litdp"
	"github.com/daanv2/deflopt/internal/parser"
	"github.com/daanv2/deflopt/internal/perturb"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/rng"
	"github.com/daanv2/deflopt/pkg/stdlib"
)

// Options controls the coordinator's search depth and bit-width caps.
type Options struct {
	NumIteration      int
	MaxParseIteration int
	MaxWidthLit       int
	MaxWidthDist      int
	MaxWidthCL        int
	Perturbation      bool
}

// DefaultOptions matches optimizer.hpp's defaults (num_iter=10,
// inner parse loop capped at 10, MAX_BIT_WIDTH=7 for perturbation).
func DefaultOptions() Options {
	return Options{
		NumIteration:      10,
		MaxParseIteration: 10,
		MaxWidthLit:       9,
		MaxWidthDist:      6,
		MaxWidthCL:        7,
		Perturbation:      true,
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return stdlib.MemCmp(a, b, len(a)) == 0
}

func equalTokens(a, b []block.Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func cloneInts(v []int) []int {
	out := make([]int, len(v))
	stdlib.MemCpy2(out, v)
	return out
}

func cloneTokens(v []block.Token) []block.Token {
	out := make([]block.Token, len(v))
	copy(out, v)
	return out
}

// innerParseLoop alternates the optimal parser and the CL chooser until
// the CL vector repeats a previously seen value (a fixed point) or the
// iteration cap is hit, keeping the best bit length seen along the way.
func innerParseLoop(d *block.Dynamic, context []byte, cache *rle.Cache, opts Options) error {
	bestBits, err := d.BitLength(cache)
	if err != nil {
		return err
	}
	bestCL := cloneInts(d.CLCodeLengths)
	bestTokens := cloneTokens(d.Tokens)

	var tried [][]int
	tried = append(tried, cloneInts(d.CLCodeLengths))

	for iter := 0; iter < opts.MaxParseIteration; iter++ {
		text, err := d.Reconstruct(context)
		if err != nil {
			return err
		}
		tokens, err := parser.OptimalParse(d, context, text)
		if err != nil {
			return err
		}
		d.Tokens = tokens

		clLens, ok := clcode.Choose(cache, d.LiteralCodeLengths, d.DistanceCodeLengths)
		if ok {
			d.CLCodeLengths = clLens
		}

		bits, err := d.BitLength(cache)
		if err != nil {
			return err
		}
		if bits <= bestBits {
			bestBits = bits
			bestCL = cloneInts(d.CLCodeLengths)
			bestTokens = cloneTokens(d.Tokens)
		}

		seen := false
		for _, t := range tried {
			if equalInts(t, d.CLCodeLengths) {
				seen = true
				break
			}
		}
		if seen {
			break
		}
		tried = append(tried, cloneInts(d.CLCodeLengths))
	}

	d.CLCodeLengths = bestCL
	d.Tokens = bestTokens
	return nil
}

// Optimize drives d towards a locally minimal bit length in place, using
// context as the preceding-block history available to the parser for
// back-references. src supplies randomness for perturbation moves; it
// may be nil only when opts.Perturbation is false.
func Optimize(d *block.Dynamic, context []byte, cache *rle.Cache, src *rng.Source, opts Options) error {
	bestBits, err := d.BitLength(cache)
	if err != nil {
		return err
	}
	bestCL := cloneInts(d.CLCodeLengths)

	updated := true
	for iter := 0; iter < opts.NumIteration; iter++ {
		if !updated {
			if src == nil || !opts.Perturbation {
				break
			}
			perturb.Apply(src, d.CLCodeLengths, opts.MaxWidthCL)
		}

		if err := litdp.Optimize(d, opts.MaxWidthLit); err != nil {
			return err
		}
		if err := distdp.Optimize(d, opts.MaxWidthDist); err != nil {
			return err
		}
		if clLens, ok := clcode.Choose(cache, d.LiteralCodeLengths, d.DistanceCodeLengths); ok {
			d.CLCodeLengths = clLens
		}

		oldCL := cloneInts(d.CLCodeLengths)
		oldTokens := cloneTokens(d.Tokens)

		if err := innerParseLoop(d, context, cache, opts); err != nil {
			return err
		}

		updated = !equalInts(oldCL, d.CLCodeLengths) || !equalTokens(oldTokens, d.Tokens)

		bits, err := d.BitLength(cache)
		if err != nil {
			return err
		}
		if bits <= bestBits {
			bestBits = bits
			bestCL = cloneInts(d.CLCodeLengths)
		} else if !updated {
			d.CLCodeLengths = bestCL
			if !opts.Perturbation {
				break
			}
		}
	}

	if err := litdp.Optimize(d, opts.MaxWidthLit); err != nil {
		return err
	}
	if err := distdp.Optimize(d, opts.MaxWidthDist); err != nil {
		return err
	}
	if clLens, ok := clcode.Choose(cache, d.LiteralCodeLengths, d.DistanceCodeLengths); ok {
		d.CLCodeLengths = clLens
	}
	return nil
}
