// Package parser implements the optimal LZ77 parser (component G):
// given a block's reconstructed text and a history context, produce the
// token sequence of minimum weighted cost under the block's current
// literal/length and distance code lengths. Grounded in
// optimal_parsing.hpp's optimal_parse_block.
package parser

import (
	"fmt"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/tables"
)

const sentinel = 1_000_000_000

// CostModel supplies the current literal/length and distance code
// lengths the parser costs matches against. block.Dynamic implements
// this directly.
type CostModel interface {
	LiteralCodeLength(symbol int) int
	DistanceCodeLength(symbol int) int
}

type edge struct {
	cost int
	dist int
}

// OptimalParse re-parses text (context ++ text is the full matching
// universe) against the given cost model, returning the token sequence
// of minimum total bit cost. Matches never cross into text from before
// context begins. This always succeeds on well-formed inputs: the
// all-literal path exists whenever every byte's literal code has a
// finite cost, which is spec.md §7's stated invariant; if the model is
// pathological enough to break that, the failure is treated as fatal.
func OptimalParse(model CostModel, context, text []byte) ([]block.Token, error) {
	n := len(text)
	m := len(context) + n
	overall := make([]byte, 0, m)
	overall = append(overall, context...)
	overall = append(overall, text...)

	lcp := make([][]int, n+1)
	for i := range lcp {
		lcp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if text[i] == overall[j] {
				lcp[i][j] = lcp[i+1][j+1] + 1
			}
		}
	}

	g := make([][]edge, n+1)
	for i := range g {
		g[i] = make([]edge, n+1)
		for j := range g[i] {
			g[i][j] = edge{sentinel, sentinel}
		}
	}
	maxMatch := make([]int, n)
	for i := 0; i < n; i++ {
		maxMatch[i] = 1
		g[i][i+1] = edge{model.LiteralCodeLength(int(text[i])), -1}
	}

	for i := 0; i < n; i++ {
		for ref := 0; ref < len(context)+i; ref++ {
			lcpLen := lcp[i][ref]
			if lcpLen > 258 {
				lcpLen = 258
			}
			if lcpLen > maxMatch[i] {
				maxMatch[i] = lcpLen
			}
			dist := (i + len(context)) - ref
			distCode, err := tables.DistanceCode(dist)
			if err != nil {
				continue
			}
			extraDist, _ := tables.ExtraBitsForDistance(dist)
			distCost := model.DistanceCodeLength(distCode) + extraDist
			if distCost >= sentinel {
				continue
			}
			for length := 3; length <= lcpLen; length++ {
				lenCode, err := tables.LengthCode(length)
				if err != nil {
					continue
				}
				extraLen, _ := tables.ExtraBitsForLength(length)
				lenCost := model.LiteralCodeLength(lenCode) + extraLen
				if lenCost >= sentinel {
					continue
				}
				cost := lenCost + distCost
				if cost < g[i][i+length].cost {
					g[i][i+length] = edge{cost, dist}
				}
			}
		}
	}

	dp := make([]int, n+1)
	prev := make([]int, n+1)
	for i := range dp {
		dp[i] = sentinel
		prev[i] = sentinel
	}
	dp[0] = 0
	for i := 0; i < n; i++ {
		for j := i + 1; j <= i+maxMatch[i]; j++ {
			e := g[i][j]
			if dp[i]+e.cost <= dp[j] {
				dp[j] = dp[i] + e.cost
				prev[j] = i
			}
		}
	}
	if dp[n] >= sentinel {
		return nil, fmt.Errorf("parser: no path found in matching graph")
	}

	var tokens []block.Token
	now := n
	for now > 0 {
		p := prev[now]
		length := now - p
		dist := g[p][now].dist
		if length != 1 {
			if dist >= sentinel {
				return nil, fmt.Errorf("parser: invalid distance during backtrack")
			}
			tokens = append(tokens, block.M(length, dist))
		} else {
			tokens = append(tokens, block.L(text[p]))
		}
		now = p
	}
	for l, r := 0, len(tokens)-1; l < r; l, r = l+1, r-1 {
		tokens[l], tokens[r] = tokens[r], tokens[l]
	}
	return tokens, nil
}
