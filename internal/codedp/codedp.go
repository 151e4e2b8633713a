// Package codedp implements the shared three-axis code-length DP used
// by both the literal/length DP (component E) and the distance DP
// (component F): `dp[i][j][prev]` over the prefix of symbols assigned
// (i), Kraft budget consumed (j), and the code length of the previous
// symbol (prev, needed because PREV_RUN-based RLE collapsing depends on
// continuity). Grounded in optimal_lit_code_lengths.hpp's
// optimize_lit_code_huffman_slow and optimize_dist_code_huffman, which
// share this exact DP shape and differ only in trimming policy and
// which DP-failure type they report.
//
// This is the "slow" O(n * K * W * maxRun) form from the original; the
// sliding-window monotone-deque speedup described for large literal
// alphabets is a performance optimization over the same recurrence and
// is not required for correctness (see DESIGN.md).
package codedp

import "github.com/daanv2/deflopt/pkg/assert"

const inf = 1_000_000

// Solve runs the DP over freq (symbol frequencies, 0 meaning "unused")
// under CL symbol costs rleCosts (index 0..18, absent symbols already
// mapped to a very large cost by the caller) and Kraft budget
// 2^maxBitWidth. It returns the optimal code-length assignment, one
// entry per freq symbol, or ok=false if no finite-cost assignment
// exists.
func Solve(freq []int, rleCosts [19]int, maxBitWidth int) ([]int, bool) {
	n := len(freq)
	maxOccupancy := 1 << uint(maxBitWidth)

	dp := make([][][]int, n+1)
	lastCode := make([][][]int, n+1)
	lastLen := make([][][]int, n+1)
	for i := range dp {
		dp[i] = make([][]int, maxOccupancy+1)
		lastCode[i] = make([][]int, maxOccupancy+1)
		lastLen[i] = make([][]int, maxOccupancy+1)
		for j := range dp[i] {
			dp[i][j] = make([]int, maxBitWidth+1)
			lastCode[i][j] = make([]int, maxBitWidth+1)
			lastLen[i][j] = make([]int, maxBitWidth+1)
			for k := range dp[i][j] {
				dp[i][j][k] = inf
				lastCode[i][j][k] = -1
				lastLen[i][j][k] = -1
			}
		}
	}

	computeRunCost := func(prevCode, runCode, runLength int) int {
		if runLength == 1 {
			return rleCosts[runCode]
		}
		if prevCode == runCode {
			if runLength >= 3 && runLength <= 6 {
				return rleCosts[16] + 2
			}
		} else if runCode == 0 {
			if runLength >= 3 && runLength <= 10 {
				return rleCosts[17] + 3
			}
			if runLength >= 11 && runLength <= 138 {
				return rleCosts[18] + 7
			}
		}
		return inf
	}

	dp[0][0][1] = 0

	for i := 0; i < n; i++ {
		for j := 0; j <= maxOccupancy; j++ {
			for prevCode := 0; prevCode <= maxBitWidth; prevCode++ {
				if dp[i][j][prevCode] >= inf {
					continue
				}
				for code := 0; code <= maxBitWidth; code++ {
					maxRun := 6
					if code == 0 {
						maxRun = 138
					}
					nextJ := j
					symCost := 0
					for runLength := 1; runLength <= maxRun; runLength++ {
						if i+runLength > n {
							break
						}
						if code != 0 {
							nextJ += 1 << uint(maxBitWidth-code)
						}
						if nextJ > maxOccupancy {
							break
						}
						symCost += freq[i+runLength-1] * code
						if freq[i+runLength-1] != 0 && code == 0 {
							break
						}
						runCost := computeRunCost(prevCode, code, runLength)
						if runCost >= inf {
							continue
						}
						cost := dp[i][j][prevCode] + runCost + symCost
						if cost >= dp[i+runLength][nextJ][code] {
							continue
						}
						dp[i+runLength][nextJ][code] = cost
						lastCode[i+runLength][nextJ][code] = prevCode
						lastLen[i+runLength][nextJ][code] = runLength
					}
				}
			}
		}
	}

	bestCost, bestCode := inf, -1
	for prevCode := 0; prevCode <= maxBitWidth; prevCode++ {
		c := dp[n][maxOccupancy][prevCode]
		if c < bestCost {
			bestCost, bestCode = c, prevCode
		}
	}
	if bestCode == -1 || bestCost >= inf {
		return nil, false
	}

	lengths := make([]int, n)
	i, j, code := n, maxOccupancy, bestCode
	for i > 0 {
		prevCode := lastCode[i][j][code]
		runLength := lastLen[i][j][code]
		assert.Assert(runLength > 0)
		for k := 0; k < runLength; k++ {
			i--
			lengths[i] = code
			if code != 0 {
				j -= 1 << uint(maxBitWidth-code)
			}
		}
		code = prevCode
	}
	return lengths, true
}

// SanitizedCosts maps clCodeLengths (0 meaning "symbol absent") into
// RLE symbol costs suitable for Solve, treating an absent symbol as
// unusably expensive rather than free.
func SanitizedCosts(clCodeLengths []int) [19]int {
	var out [19]int
	for i := range out {
		if i < len(clCodeLengths) && clCodeLengths[i] != 0 {
			out[i] = clCodeLengths[i]
		} else {
			out[i] = inf
		}
	}
	return out
}
