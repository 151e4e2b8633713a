// Package ga implements the evolutionary outer search (component K):
// a population of (block, variable-assignment) states evolved by
// mutation (composing the coordinator and the variable-rename
// optimizer) and crossover (mixing CL vectors between two parents),
// selected by rank with hash-based deduplication for diversity.
// Grounded in geneticalgo.cpp.
package ga

import (
	"hash/fnv"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/clcode"
	"github.com/daanv2/deflopt/internal/coordinator"
	"github.com/daanv2/deflopt/internal/dperr"
	"github.com/daanv2/deflopt/internal/distdp"
	"github.com/daanv2/deflopt/internal/embed"
	"github.com/daanv2/deflopt/internal/litdp"
	"github.com/daanv2/deflopt/internal/parser"
	"github.com/daanv2/deflopt/internal/perturb"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/rng"
	"github.com/daanv2/deflopt/internal/variable"
	"github.com/daanv2/deflopt/pkg/ptr"
)

// InitialCLCodeLengths is a fixed bank of seed CL vectors observed to
// work well across a wide range of inputs, used to diversify the
// initial population before any generations run. Grounded in
// geneticalgo.cpp's INITIAL_CL_CODE_LENGTHS.
var InitialCLCodeLengths = [][]int{
	{0, 0, 0, 5, 3, 2, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 2, 5, 4},
	{2, 0, 5, 5, 5, 4, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 5},
	{0, 0, 0, 4, 4, 2, 3, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3, 4, 4},
	{1, 0, 5, 0, 3, 4, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5},
	{0, 0, 6, 6, 4, 2, 5, 4, 2, 0, 0, 0, 0, 0, 0, 0, 3, 3, 4},
	{3, 0, 0, 5, 3, 0, 2, 0, 3, 0, 0, 0, 0, 0, 0, 0, 2, 5, 4},
	{0, 0, 0, 6, 0, 1, 6, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3, 5, 4},
	{5, 0, 5, 5, 5, 2, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4},
	{0, 0, 5, 0, 3, 3, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 3, 5, 4},
	{1, 0, 5, 5, 5, 3, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5},
	{1, 0, 5, 0, 3, 4, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5},
	{2, 0, 0, 6, 5, 2, 2, 0, 4, 0, 0, 0, 0, 0, 0, 0, 4, 6, 4},
	{0, 0, 0, 6, 6, 2, 5, 0, 1, 0, 0, 0, 0, 0, 0, 0, 3, 5, 5},
	{5, 0, 5, 0, 2, 4, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4},
	{0, 0, 0, 5, 3, 3, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 5, 3, 4},
	{0, 0, 5, 5, 5, 2, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 3, 5},
	{3, 0, 0, 4, 3, 2, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 2, 0, 4},
	{1, 0, 0, 5, 4, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3, 0, 5},
	{1, 0, 5, 5, 5, 3, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5},
	{0, 0, 0, 5, 4, 5, 2, 0, 2, 0, 0, 0, 0, 0, 0, 0, 2, 4, 4},
	{2, 0, 5, 5, 3, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5, 5},
	{0, 0, 0, 5, 0, 1, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 3, 4, 5},
	{0, 0, 0, 5, 3, 2, 3, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3, 5, 4},
	{2, 0, 6, 6, 3, 2, 6, 0, 3, 0, 0, 0, 0, 0, 0, 0, 3, 6, 4},
	{1, 0, 5, 6, 6, 2, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4},
	{0, 0, 0, 5, 3, 3, 5, 2, 0, 0, 0, 0, 0, 0, 0, 0, 2, 3, 4},
	{6, 0, 6, 5, 5, 2, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 5, 4, 4},
	{0, 0, 5, 5, 4, 2, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4},
	{1, 0, 6, 5, 4, 3, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 6},
	{5, 0, 0, 5, 0, 2, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 4, 4, 4},
	{6, 0, 5, 6, 4, 2, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4},
	{2, 0, 0, 5, 3, 3, 3, 0, 3, 0, 0, 0, 0, 0, 0, 0, 3, 5, 4},
	{0, 0, 0, 4, 3, 3, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 3, 2, 4},
	{5, 0, 5, 5, 5, 2, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4},
	{0, 0, 5, 0, 6, 3, 2, 0, 2, 0, 0, 0, 0, 0, 0, 0, 2, 6, 4},
	{2, 5, 0, 5, 4, 2, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 5, 5, 4},
	{0, 0, 0, 4, 4, 2, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4},
	{6, 0, 6, 5, 5, 1, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 4, 4, 5},
	{1, 0, 5, 5, 0, 2, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4},
	{1, 0, 0, 5, 5, 3, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 5},
	{0, 0, 0, 5, 5, 2, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4, 4},
	{2, 0, 0, 6, 6, 2, 3, 0, 3, 0, 0, 0, 0, 0, 0, 0, 3, 4, 5},
	{6, 0, 6, 5, 5, 2, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 3, 5},
	{2, 0, 5, 5, 3, 6, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 6, 5},
	{0, 0, 0, 4, 3, 2, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3, 4, 3},
}

// State is one individual: a candidate block plus the variable
// assignment currently in effect over its text.
type State struct {
	Block     *block.Dynamic
	Variables []variable.Variable
}

// Clone deep-copies a state's mutable slices so mutation never aliases
// another individual's data.
func (s State) Clone() State {
	b := *s.Block
	b.Tokens = append([]block.Token(nil), s.Block.Tokens...)
	b.LiteralCodeLengths = append([]int(nil), s.Block.LiteralCodeLengths...)
	b.DistanceCodeLengths = append([]int(nil), s.Block.DistanceCodeLengths...)
	b.CLCodeLengths = append([]int(nil), s.Block.CLCodeLengths...)
	vars := make([]variable.Variable, len(s.Variables))
	for i, v := range s.Variables {
		vars[i] = variable.Variable{Name: v.Name, Occurrences: append([]int(nil), v.Occurrences...)}
	}
	return State{Block: &b, Variables: vars}
}

// VarAssignments concatenates each single-character variable's current
// name, giving a compact fingerprint of the assignment in effect.
func (s State) VarAssignments() string {
	buf := make([]byte, 0, len(s.Variables))
	for _, v := range s.Variables {
		if len(v.Name) == 1 {
			buf = append(buf, v.Name[0])
		}
	}
	return string(buf)
}

// BitLength scores a state; escaper may be nil to skip embed-overhead
// accounting.
func (s State) BitLength(cache *rle.Cache, escaper embed.Escaper) (int, error) {
	if escaper != nil {
		return s.Block.BitLengthWithEmbedOverhead(cache, escaper)
	}
	return s.Block.BitLength(cache)
}

// Hash combines the CL code lengths and the variable assignment string
// so ranking selection can deduplicate individuals that converged to
// the same configuration.
func (s State) Hash() uint64 {
	h := fnv.New64a()
	for _, v := range s.Block.CLCodeLengths {
		var b [4]byte
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
		h.Write(b[:])
	}
	h.Write([]byte(s.VarAssignments()))
	return h.Sum64()
}

// Options bundles the tunables the coordinator and DP stages need
// during mutation and crossover.
type Options struct {
	Coordinator      coordinator.Options
	MaxWidthLit      int
	MaxWidthDist     int
	NumIteration     int
	PopulationSize   int
	CrossoverSize    int
	ConflictMatrix   [][]bool
	SwappableVars    []int
	Escaper          embed.Escaper
}

// DefaultOptions mirrors geneticalgo.cpp's constants.
func DefaultOptions() Options {
	return Options{
		Coordinator:    coordinator.DefaultOptions(),
		MaxWidthLit:    9,
		MaxWidthDist:   6,
		NumIteration:   10,
		PopulationSize: 100,
		CrossoverSize:  100,
	}
}

func scoredKey(cache *rle.Cache, s State, escaper embed.Escaper) int {
	bits, err := s.BitLength(cache, escaper)
	if err != nil {
		return 1 << 30
	}
	return bits
}

// rankingSelection dedupes population by Hash, sorts ascending by bit
// length, then draws numSelect individuals with probability
// proportional to (n - rank), i.e. better individuals are more likely
// to survive without a hard cutoff. Grounded in geneticalgo.cpp's
// ranking_selection.
func rankingSelection(src *rng.Source, cache *rle.Cache, escaper embed.Escaper, population []State, numSelect int) []State {
	sortByBits(cache, escaper, population)

	seen := map[uint64]bool{}
	var unique []State
	for _, ind := range population {
		h := ind.Hash()
		if !seen[h] {
			seen[h] = true
			unique = append(unique, ind)
		}
	}
	population = unique

	n := len(population)
	if numSelect > n {
		numSelect = n
	}
	totalRank := n * (n + 1) / 2
	selected := map[int]bool{}
	var out []State
	for len(selected) < numSelect {
		r := src.Intn(totalRank)
		threshold := totalRank
		chosen := -1
		for i := 0; i < n; i++ {
			threshold -= n - i
			if r >= threshold {
				chosen = i
				break
			}
		}
		if selected[chosen] {
			continue
		}
		selected[chosen] = true
		out = append(out, population[chosen])
	}
	sortByBits(cache, escaper, out)
	return out
}

func sortByBits(cache *rle.Cache, escaper embed.Escaper, pop []State) {
	keys := make([]int, len(pop))
	for i, s := range pop {
		keys[i] = scoredKey(cache, s, escaper)
	}
	for i := 1; i < len(pop); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			pop[j-1], pop[j] = pop[j], pop[j-1]
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// trial mutates one state via a randomly chosen strategy, catching only
// the three recoverable DP failure kinds (returning ok=false when the
// attempt produced an infeasible block) and propagating everything else,
// matching geneticalgo.cpp's trial catching only LitCodeDPFailure,
// DistCodeDPFailure and RLEDPFailure.
func trial(src *rng.Source, cache *rle.Cache, opts Options, state State) (State, bool, error) {
	s := state.Clone()
	fail := func(err error) (State, bool, error) {
		if dperr.Recoverable(err) {
			return state, false, nil
		}
		return state, false, err
	}

	freqCount := variable.NumNonVarAsLiteral
	if src.Intn(2) == 0 {
		freqCount = variable.NumNonVarAll
	}

	const (
		moveBFS = iota
		moveNonVarFreq
		moveNoUpdate
		moveRandomSwapCL
		moveChangeVarSet
	)
	move := src.Intn(5)

	varAssign := variable.Injective
	if src.Intn(2) == 1 && opts.ConflictMatrix != nil {
		varAssign = variable.Greedy
	}
	updateCLCode := src.Intn(2) != 0
	iterative := src.Float64() < 0.2

	var err error
	switch move {
	case moveBFS, moveNonVarFreq:
		tie := variable.BFS
		if move == moveNonVarFreq {
			tie = variable.NonVarFreq
		}
		var mapping []int
		mapping, err = variable.Optimize(s.Block, s.Variables, opts.ConflictMatrix, freqCount, tie, varAssign)
		if err == nil {
			err = variable.ReplaceAndReparse(s.Block, s.Variables, mapping)
		}
	case moveChangeVarSet:
		var mapping []int
		mapping, err = variable.ChangeVariableSet(src, s.Block, s.Variables)
		if err == nil {
			err = variable.ReplaceAndReparse(s.Block, s.Variables, mapping)
		}
	case moveRandomSwapCL:
		perturb.Apply(src, s.Block.CLCodeLengths, opts.Coordinator.MaxWidthCL)
	case moveNoUpdate:
		text, rErr := s.Block.Reconstruct(nil)
		if rErr != nil {
			err = rErr
			break
		}
		var tokens []block.Token
		tokens, err = parser.OptimalParse(s.Block, nil, text)
		if err == nil {
			s.Block.Tokens = tokens
		}
	}
	if err != nil {
		return fail(err)
	}

	if iterative {
		if err := coordinator.Optimize(s.Block, nil, cache, src, opts.Coordinator); err != nil {
			return fail(err)
		}
	} else {
		if err := litdp.Optimize(s.Block, opts.MaxWidthLit); err != nil {
			return fail(err)
		}
		if err := distdp.Optimize(s.Block, opts.MaxWidthDist); err != nil {
			return fail(err)
		}
	}

	if updateCLCode {
		if clLens, ok := clcode.Choose(cache, s.Block.LiteralCodeLengths, s.Block.DistanceCodeLengths); ok {
			s.Block.CLCodeLengths = clLens
		}
		if iterative {
			if err := coordinator.Optimize(s.Block, nil, cache, src, opts.Coordinator); err != nil {
				return fail(err)
			}
		} else {
			if err := litdp.Optimize(s.Block, opts.MaxWidthLit); err != nil {
				return fail(err)
			}
			if err := distdp.Optimize(s.Block, opts.MaxWidthDist); err != nil {
				return fail(err)
			}
		}
	}

	if src.Intn(2) != 0 {
		text, rErr := s.Block.Reconstruct(nil)
		if rErr != nil {
			return fail(rErr)
		}
		tokens, pErr := parser.OptimalParse(s.Block, nil, text)
		if pErr != nil {
			return fail(pErr)
		}
		s.Block.Tokens = tokens
	}

	return s, true, nil
}

// crossover mixes parent1's block with parent2's CL vector (with 50%
// probability), then re-optimizes; on one of the three recoverable DP
// failures it falls back to returning parent1 unchanged with ok=false,
// and propagates every other error. Grounded in geneticalgo.cpp's
// cross_over.
func crossover(src *rng.Source, cache *rle.Cache, opts Options, parent1, parent2 State) (State, bool, error) {
	if src.Intn(2) == 0 {
		ptr.Swap(&parent1, &parent2)
	}
	s := parent1.Clone()
	fail := func(err error) (State, bool, error) {
		if dperr.Recoverable(err) {
			return parent1, false, nil
		}
		return parent1, false, err
	}

	useCLFromParent2 := src.Intn(2) == 0
	updateOptimalParse := src.Intn(2) != 0
	finallyUpdateOptimalParse := src.Intn(2) != 0
	updateCLCode := src.Intn(2) != 0
	iterative := src.Float64() < 0.2

	if useCLFromParent2 {
		s.Block.CLCodeLengths = append([]int(nil), parent2.Block.CLCodeLengths...)
		if err := litdp.Optimize(s.Block, opts.MaxWidthLit); err != nil {
			return fail(err)
		}
		if err := distdp.Optimize(s.Block, opts.MaxWidthDist); err != nil {
			return fail(err)
		}
	}
	if updateOptimalParse {
		text, err := s.Block.Reconstruct(nil)
		if err != nil {
			return fail(err)
		}
		tokens, err := parser.OptimalParse(s.Block, nil, text)
		if err != nil {
			return fail(err)
		}
		s.Block.Tokens = tokens
		if err := litdp.Optimize(s.Block, opts.MaxWidthLit); err != nil {
			return fail(err)
		}
		if err := distdp.Optimize(s.Block, opts.MaxWidthDist); err != nil {
			return fail(err)
		}
	}
	if iterative {
		if err := coordinator.Optimize(s.Block, nil, cache, src, opts.Coordinator); err != nil {
			return fail(err)
		}
	}
	if updateCLCode {
		if clLens, ok := clcode.Choose(cache, s.Block.LiteralCodeLengths, s.Block.DistanceCodeLengths); ok {
			s.Block.CLCodeLengths = clLens
		}
		if iterative {
			if err := coordinator.Optimize(s.Block, nil, cache, src, opts.Coordinator); err != nil {
				return fail(err)
			}
		} else {
			if err := litdp.Optimize(s.Block, opts.MaxWidthLit); err != nil {
				return fail(err)
			}
			if err := distdp.Optimize(s.Block, opts.MaxWidthDist); err != nil {
				return fail(err)
			}
		}
	}
	if finallyUpdateOptimalParse {
		text, err := s.Block.Reconstruct(nil)
		if err != nil {
			return fail(err)
		}
		tokens, err := parser.OptimalParse(s.Block, nil, text)
		if err != nil {
			return fail(err)
		}
		s.Block.Tokens = tokens
	}
	if _, err := s.Block.BitLength(cache); err != nil {
		return fail(err)
	}
	return s, true, nil
}

// Result reports the best individual found and how many generations
// ran before the population stopped producing new states.
type Result struct {
	Best        State
	Generations int
}

// Run seeds a population from InitialCLCodeLengths (falling back to the
// input state's own CL vector when every seed is infeasible), then
// iterates crossover+mutation for at most maxGenerations rounds.
// Grounded in geneticalgo.cpp's main loop, with the C++ version's
// unbounded while loop replaced by an explicit generation cap suited to
// a library call. Each round carries every surviving state forward
// unconditionally before mutating it, so the newStates-empty guard below
// can never fire once states is non-empty; it is kept as a direct,
// faithful mirror of the reference's own break condition (which is
// equally unreachable there) rather than the loop's real bound —
// maxGenerations is what actually terminates this function. Only the
// three recoverable DP failure kinds (dperr.Recoverable) are absorbed as
// a failed trial/crossover; any other error aborts the search.
func Run(src *rng.Source, cache *rle.Cache, opts Options, initial State, maxGenerations int) (Result, error) {
	best := initial.Clone()
	bestBits := scoredKey(cache, best, opts.Escaper)

	var states []State
	seeds := append([][]int(nil), InitialCLCodeLengths...)
	seeds = append(seeds, initial.Block.CLCodeLengths)
	for _, cl := range seeds {
		s := initial.Clone()
		s.Block.CLCodeLengths = append([]int(nil), cl...)
		if err := litdp.Optimize(s.Block, opts.MaxWidthLit); err != nil {
			if dperr.Recoverable(err) {
				continue
			}
			return Result{}, err
		}
		if err := distdp.Optimize(s.Block, opts.MaxWidthDist); err != nil {
			if dperr.Recoverable(err) {
				continue
			}
			return Result{}, err
		}
		result, ok, err := trial(src, cache, opts, s)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		if bits := scoredKey(cache, result, opts.Escaper); bits <= bestBits {
			best = result.Clone()
			bestBits = bits
		}
		states = append(states, result)
	}
	if len(states) == 0 {
		states = []State{best}
	}

	states = rankingSelection(src, cache, opts.Escaper, states, opts.PopulationSize)

	gen := 0
	for ; gen < maxGenerations; gen++ {
		var newStates []State
		for i := 0; i < opts.CrossoverSize; i++ {
			idx1 := src.Intn(len(states))
			idx2 := src.Intn(len(states))
			for idx2 == idx1 && len(states) > 1 {
				idx2 = src.Intn(len(states))
			}
			result, ok, err := crossover(src, cache, opts, states[idx1], states[idx2])
			if err != nil {
				return Result{}, err
			}
			if !ok {
				continue
			}
			if bits := scoredKey(cache, result, opts.Escaper); bits <= bestBits {
				best = result.Clone()
				bestBits = bits
			}
			newStates = append(newStates, result)
		}
		for _, s := range states {
			newStates = append(newStates, s)
			result, ok, err := trial(src, cache, opts, s)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				continue
			}
			if bits := scoredKey(cache, result, opts.Escaper); bits <= bestBits {
				best = result.Clone()
				bestBits = bits
			}
			newStates = append(newStates, result)
		}
		if len(newStates) == 0 {
			break
		}
		states = rankingSelection(src, cache, opts.Escaper, newStates, opts.PopulationSize)
	}

	if clLens, ok := clcode.Choose(cache, best.Block.LiteralCodeLengths, best.Block.DistanceCodeLengths); ok {
		best.Block.CLCodeLengths = clLens
	}
	return Result{Best: best, Generations: gen}, nil
}
