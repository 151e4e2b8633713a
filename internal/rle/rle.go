// Package rle implements the RLE-CL DP (component C): the optimal
// run-length encoding of a run of identical code-length values into the
// CL meta-alphabet {LITERAL, PREV_RUN, ZERO_RUN}, and a process-wide,
// monotonically growing cache of the DP tables keyed by exact CL cost
// tuples. Grounded in blocks.hpp's RLEDPTable and
// rle_dp_helper.py's RLETable.
package rle

import (
	"github.com/daanv2/deflopt/internal/dperr"
)

// Inf is the sentinel "infeasible" cost. Any real cost tuple has a
// finite value well below this, so comparisons `>= Inf` reliably mean
// "unreachable".
const Inf = 1 << 28

// DefaultMaxCount is the minimum table size grown on first use, matching
// the C++ original's DEFAULT_MAX_COUNT: most runs seen in practice are
// well under this, so tables are rarely resized past their initial grow.
const DefaultMaxCount = 300

// CodeType is one of LITERAL (value: the literal code length), PREV_RUN
// (value: repeat count 3..6), or ZERO_RUN (value: repeat count 3..138).
type CodeType int

const (
	Literal CodeType = iota
	PrevRun
	ZeroRun
)

// Code is one emitted RLE symbol.
type Code struct {
	Type  CodeType
	Value int // literal code length for Literal; run length otherwise
}

// NumAdditionalBits returns the number of extra bits following the CL
// symbol for this code.
func (c Code) NumAdditionalBits() int {
	switch c.Type {
	case Literal:
		return 0
	case PrevRun:
		return 2
	default: // ZeroRun
		if c.Value <= 10 {
			return 3
		}
		return 7
	}
}

// Symbol returns the CL meta-alphabet symbol id this code emits.
func (c Code) Symbol() int {
	switch c.Type {
	case Literal:
		return c.Value
	case PrevRun:
		return 16
	default:
		if c.Value <= 10 {
			return 17
		}
		return 18
	}
}

// Run is one run of a repeated code-length value to be RLE-encoded:
// Value repeated Count times.
type Run struct {
	Value int
	Count int
}

// table holds one Bellman DP over run lengths 0..N, plus a parallel
// choice trace for backtracking.
type table struct {
	dp     []int
	choice []int
}

type nonzeroKey struct {
	costValue int
	cost16    int
}

type zeroKey struct {
	cost0, cost16, cost17, cost18 int
}

// Cache is the process-wide RLE-CL DP cache (component C / §5). It grows
// monotonically and is never invalidated: distinct cost tuples produce
// disjoint entries, so entries can only be extended, never evicted.
// Not safe for concurrent use without external synchronization, matching
// spec.md §5's single-writer discipline.
type Cache struct {
	nonzero map[nonzeroKey]*table
	zero    map[zeroKey]*table
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		nonzero: make(map[nonzeroKey]*table),
		zero:    make(map[zeroKey]*table),
	}
}

// sanitizeCost maps a non-positive CL symbol cost (meaning "this symbol
// is absent from the CL code") to Inf, so absent symbols are never
// selected by a DP transition. This is the Go realization of spec.md
// §9's Open Question (i): the sanitize step is applied explicitly at
// each cache lookup rather than folded into a raw_length helper that
// conflates "index out of range" with "cost is zero".
func sanitizeCost(cost int) int {
	if cost > 0 {
		return cost
	}
	return Inf
}

func (c *Cache) ensureNonzero(t *table, singleCost, cost16, required int) {
	target := required
	if target < DefaultMaxCount {
		target = DefaultMaxCount
	}
	if len(t.dp) == 0 {
		t.dp = []int{0}
		t.choice = []int{0}
	}
	current := len(t.dp) - 1
	if target <= current {
		return
	}
	t.dp = append(t.dp, make([]int, target-current)...)
	t.choice = append(t.choice, make([]int, target-current)...)
	for j := current + 1; j <= target; j++ {
		best := Inf
		choice := 0
		if singleCost < Inf && t.dp[j-1] < Inf {
			if cand := t.dp[j-1] + singleCost; cand < best {
				best, choice = cand, 1
			}
		}
		if cost16 < Inf {
			add16 := cost16 + 2
			for run := 3; run <= 6 && run <= j; run++ {
				prevIdx := j - run
				if prevIdx < 1 || t.dp[prevIdx] >= Inf {
					continue
				}
				if cand := t.dp[prevIdx] + add16; cand < best {
					best, choice = cand, run
				}
			}
		}
		t.dp[j] = best
		t.choice[j] = choice
	}
}

func (c *Cache) ensureZero(t *table, single, c16, c17, c18, required int) {
	target := required
	if target < DefaultMaxCount {
		target = DefaultMaxCount
	}
	if len(t.dp) == 0 {
		t.dp = []int{0}
		t.choice = []int{0}
	}
	current := len(t.dp) - 1
	if target <= current {
		return
	}
	t.dp = append(t.dp, make([]int, target-current)...)
	t.choice = append(t.choice, make([]int, target-current)...)
	for j := current + 1; j <= target; j++ {
		best := Inf
		choice := 0
		if single < Inf && t.dp[j-1] < Inf {
			if cand := t.dp[j-1] + single; cand < best {
				best, choice = cand, 1
			}
		}
		if c17 < Inf {
			add17 := c17 + 3
			for run := 3; run <= 10 && run <= j; run++ {
				prevIdx := j - run
				if prevIdx < 0 || t.dp[prevIdx] >= Inf {
					continue
				}
				if cand := t.dp[prevIdx] + add17; cand < best {
					best, choice = cand, run
				}
			}
		}
		if c18 < Inf {
			add18 := c18 + 7
			for run := 11; run <= 138 && run <= j; run++ {
				prevIdx := j - run
				if prevIdx < 0 || t.dp[prevIdx] >= Inf {
					continue
				}
				if cand := t.dp[prevIdx] + add18; cand < best {
					best, choice = cand, run
				}
			}
		}
		if c16 < Inf {
			add16 := c16 + 2
			for run := 3; run <= 6 && run <= j; run++ {
				prevIdx := j - run
				if prevIdx < 1 || t.dp[prevIdx] >= Inf {
					continue
				}
				if cand := t.dp[prevIdx] + add16; cand < best {
					best, choice = cand, -run
				}
			}
		}
		t.dp[j] = best
		t.choice[j] = choice
	}
}

func (c *Cache) nonzeroEntry(costValue, cost16, required int) *table {
	key := nonzeroKey{costValue, cost16}
	t, ok := c.nonzero[key]
	if !ok {
		t = &table{}
		c.nonzero[key] = t
	}
	c.ensureNonzero(t, sanitizeCost(costValue), sanitizeCost(cost16), required)
	return t
}

func (c *Cache) zeroEntry(cost0, cost16, cost17, cost18, required int) *table {
	key := zeroKey{cost0, cost16, cost17, cost18}
	t, ok := c.zero[key]
	if !ok {
		t = &table{}
		c.zero[key] = t
	}
	c.ensureZero(t, sanitizeCost(cost0), sanitizeCost(cost16), sanitizeCost(cost17), sanitizeCost(cost18), required)
	return t
}

// rawLength returns clCodeLengths[idx] and true, or (0, false) if idx is
// out of range -- an absent CL symbol.
func rawLength(clCodeLengths []int, idx int) (int, bool) {
	if idx < 0 || idx >= len(clCodeLengths) {
		return 0, false
	}
	return clCodeLengths[idx], true
}

func costOrZero(clCodeLengths []int, idx int) int {
	v, ok := rawLength(clCodeLengths, idx)
	if !ok {
		return 0
	}
	return v
}

// OptimalParse computes the minimum-cost RLE encoding of run under the
// given CL code lengths, using and extending the process-wide cache.
// Returns dperr.RLEDPFailure if the run is infeasible under this cost
// assignment.
func (c *Cache) OptimalParse(run Run, clCodeLengths []int) ([]Code, error) {
	if run.Count == 0 {
		return nil, nil
	}
	if run.Count < 0 {
		panic("rle: run count must be non-negative")
	}

	var res []Code
	if run.Value != 0 {
		costValue := costOrZero(clCodeLengths, run.Value)
		cost16 := costOrZero(clCodeLengths, 16)
		t := c.nonzeroEntry(costValue, cost16, run.Count)
		if run.Count >= len(t.dp) || t.dp[run.Count] >= Inf {
			return nil, &dperr.RLEDPFailure{Value: run.Value, Count: run.Count}
		}
		i := run.Count
		for i > 0 {
			choice := t.choice[i]
			switch {
			case choice == 1:
				res = append(res, Code{Type: Literal, Value: run.Value})
				i--
			case choice >= 3:
				res = append(res, Code{Type: PrevRun, Value: choice})
				i -= choice
			default:
				panic("rle: invalid DP reconstruction (non-zero)")
			}
		}
	} else {
		cost0 := costOrZero(clCodeLengths, 0)
		cost16 := costOrZero(clCodeLengths, 16)
		cost17 := costOrZero(clCodeLengths, 17)
		cost18 := costOrZero(clCodeLengths, 18)
		t := c.zeroEntry(cost0, cost16, cost17, cost18, run.Count)
		if run.Count >= len(t.dp) || t.dp[run.Count] >= Inf {
			return nil, &dperr.RLEDPFailure{Value: 0, Count: run.Count}
		}
		i := run.Count
		for i > 0 {
			choice := t.choice[i]
			switch {
			case choice == 1:
				res = append(res, Code{Type: Literal, Value: 0})
				i--
			case choice > 0:
				res = append(res, Code{Type: ZeroRun, Value: choice})
				i -= choice
			case choice < 0:
				r := -choice
				res = append(res, Code{Type: PrevRun, Value: r})
				i -= r
			default:
				panic("rle: invalid DP reconstruction (zero)")
			}
		}
	}

	for l, r := 0, len(res)-1; l < r; l, r = l+1, r-1 {
		res[l], res[r] = res[r], res[l]
	}
	return res, nil
}

// OptimalParsingCost returns the minimum bit cost of RLE-encoding a run
// of value repeated count times, given unsanitized CL symbol costs
// costValue, cost16, cost17, cost18 (cost17/cost18 unused for non-zero
// values). Returns Inf if infeasible; never returns an error, matching
// the CL-alphabet chooser's need for a plain cost function during its
// search (see clcode package).
func (c *Cache) OptimalParsingCost(value, count, costValue, cost16, cost17, cost18 int) int {
	if count <= 0 {
		return 0
	}
	if value != 0 {
		t := c.nonzeroEntry(costValue, cost16, count)
		if count >= len(t.dp) || t.dp[count] >= Inf {
			return Inf
		}
		return t.dp[count]
	}
	t := c.zeroEntry(costValue, cost16, cost17, cost18, count)
	if count >= len(t.dp) || t.dp[count] >= Inf {
		return Inf
	}
	return t.dp[count]
}

// LengthRLE groups a code-length sequence into maximal runs of equal
// value, matching length_RLE in blocks.hpp.
func LengthRLE(lengths []int) []Run {
	var runs []Run
	i := 0
	for i < len(lengths) {
		j := i + 1
		for j < len(lengths) && lengths[j] == lengths[i] {
			j++
		}
		runs = append(runs, Run{Value: lengths[i], Count: j - i})
		i = j
	}
	return runs
}

// FlattenCodes reconstructs the code-length sequence a slice of Codes
// encodes, used by property tests to verify an RLE parse round-trips
// (spec.md §8 property 7).
func FlattenCodes(codes []Code, value int) []int {
	var out []int
	prev := value
	for _, c := range codes {
		switch c.Type {
		case Literal:
			out = append(out, c.Value)
			prev = c.Value
		case PrevRun:
			for k := 0; k < c.Value; k++ {
				out = append(out, prev)
			}
		case ZeroRun:
			for k := 0; k < c.Value; k++ {
				out = append(out, 0)
			}
			prev = 0
		}
	}
	return out
}
