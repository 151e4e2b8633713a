// Package clcode implements the CL-alphabet chooser (component D):
// selecting the 19-entry code-length vector for the CL meta-alphabet
// that minimizes the total cost of RLE-encoding a literal/distance
// length sequence under it. Grounded in blocks.hpp's
// get_optimal_cl_code_lengths.
package clcode

import (
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/tables"
)

const maxCLCodeLength = 10
const inf = 1 << 28

// treeCost is the Kraft-budget unit consumed by a CL symbol of the
// given code length, under a budget of 2^maxCLCodeLength.
func treeCost(codeLength int) int {
	if codeLength == 0 {
		return 0
	}
	return 1 << uint(maxCLCodeLength-codeLength)
}

// Choose returns the 19-entry CL code-length vector minimizing the
// total emission cost of RLE-encoding literalLengths ++ distLengths,
// including the 3*HCLEN header cost. cache is extended as a side
// effect. Returns (nil, false) if no feasible assignment exists (never
// expected on well-formed inputs, since length 1 for every used symbol
// is always representable, but guarded defensively).
func Choose(cache *rle.Cache, literalLengths, distLengths []int) ([]int, bool) {
	concat := make([]int, 0, len(literalLengths)+len(distLengths))
	concat = append(concat, literalLengths...)
	concat = append(concat, distLengths...)
	runs := rle.LengthRLE(concat)

	runsByCode := make([][]int, 19)
	for _, r := range runs {
		runsByCode[r.Value] = append(runsByCode[r.Value], r.Count)
	}

	minHclen := 0
	for i := 0; i < 16; i++ {
		if len(runsByCode[tables.CLCodeOrder[i+3]]) > 0 {
			minHclen = i + 1
		}
	}

	bestCost := inf
	var bestResult []int

	budget := 1 << uint(maxCLCodeLength)
	for cost16 := 0; cost16 <= maxCLCodeLength; cost16++ {
		for cost17 := 0; cost17 <= maxCLCodeLength; cost17++ {
			for cost18 := 0; cost18 <= maxCLCodeLength; cost18++ {
				costStart := treeCost(cost16) + treeCost(cost17) + treeCost(cost18)
				if costStart >= budget {
					continue
				}

				dp := make([][]int, 17)
				prev := make([][]int, 17)
				for i := range dp {
					dp[i] = make([]int, budget+1)
					prev[i] = make([]int, budget+1)
					for j := range dp[i] {
						dp[i][j] = inf
						prev[i][j] = -1
					}
				}
				dp[0][costStart] = 0

				for i := 0; i < 16; i++ {
					clI := tables.CLCodeOrder[i+3]
					rlePartCost := make([]int, maxCLCodeLength+1)
					for cl := 0; cl <= maxCLCodeLength; cl++ {
						for _, count := range runsByCode[clI] {
							c := cache.OptimalParsingCost(clI, count, cl, cost16, cost17, cost18)
							rlePartCost[cl] += c
							if rlePartCost[cl] > inf {
								rlePartCost[cl] = inf
							}
						}
					}
					for j := costStart; j < budget; j++ {
						if dp[i][j] == inf {
							continue
						}
						for cl := 0; cl <= maxCLCodeLength; cl++ {
							newJ := j + treeCost(cl)
							if newJ > budget {
								continue
							}
							cost := dp[i][j] + rlePartCost[cl]
							if cost < dp[i+1][newJ] {
								dp[i+1][newJ] = cost
								prev[i+1][newJ] = cl
							}
						}
					}
				}

				localBest := 2 * inf
				bestI := 16
				j := budget
				for k := minHclen; k <= 16; k++ {
					if dp[k][j]+3*(k+3) < localBest {
						localBest = dp[k][j] + 3*(k+3)
						bestI = k
					}
				}
				if localBest >= inf {
					continue
				}

				clCodeLengths := make([]int, 19)
				i := bestI
				jj := j
				ok := true
				for i > 0 {
					cl := prev[i][jj]
					if cl == -1 {
						ok = false
						break
					}
					clCodeLengths[tables.CLCodeOrder[i+2]] = cl
					jj -= treeCost(cl)
					i--
				}
				if !ok {
					continue
				}
				clCodeLengths[16] = cost16
				clCodeLengths[17] = cost17
				clCodeLengths[18] = cost18

				if localBest < bestCost {
					bestCost = localBest
					bestResult = clCodeLengths
				}
			}
		}
	}

	if bestResult == nil {
		return nil, false
	}
	return bestResult, true
}

// HCLEN returns the number of CL positions that must be emitted for a
// given CL code-length vector: the count up to and including the
// furthest non-zero trailing position in CLCodeOrder, with a floor of 4
// per RFC 1951 (HCLEN - 4 is a 4-bit field).
func HCLEN(clCodeLengths []int) int {
	last := 3
	for i := 18; i >= 3; i-- {
		if clCodeLengths[tables.CLCodeOrder[i]] > 0 {
			last = i
			break
		}
	}
	return last + 1
}
