// Package variable implements the variable-rename optimizer (component
// J): treats single-character host-language identifiers embedded in a
// block's literal text as swappable with unused literal symbols that
// have cheaper Huffman codes, subject to a conflict matrix that forbids
// merging two identifiers that are live at the same time. Grounded in
// variable.hpp and variable_optimizer.hpp.
package variable

import (
	"fmt"
	"sort"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/parser"
	"github.com/daanv2/deflopt/internal/rng"
)

// Variable is a named identifier occurring at one or more byte offsets
// in a block's reconstructed text.
type Variable struct {
	Name        string
	Occurrences []int
}

// MergeSamename collapses variables sharing a name into one entry whose
// Occurrences is the union (sorted), OR-ing the conflict matrix rows and
// columns accordingly. Grounded in variable.hpp's
// merge_samename_variable.
func MergeSamename(vars []Variable, conflict [][]bool) ([]Variable, [][]bool) {
	if len(vars) == 0 {
		return vars, nil
	}

	nameToIndices := map[string][]int{}
	var orderedNames []string
	for i, v := range vars {
		if _, ok := nameToIndices[v.Name]; !ok {
			orderedNames = append(orderedNames, v.Name)
		}
		nameToIndices[v.Name] = append(nameToIndices[v.Name], i)
	}
	if len(orderedNames) == len(vars) {
		return vars, conflict
	}

	merged := make([]Variable, 0, len(orderedNames))
	for _, name := range orderedNames {
		mv := Variable{Name: name}
		for _, idx := range nameToIndices[name] {
			mv.Occurrences = append(mv.Occurrences, vars[idx].Occurrences...)
		}
		sort.Ints(mv.Occurrences)
		merged = append(merged, mv)
	}

	mergedConflict := make([][]bool, len(orderedNames))
	for i := range mergedConflict {
		mergedConflict[i] = make([]bool, len(orderedNames))
	}
	for i, ni := range orderedNames {
		for j, nj := range orderedNames {
			dependent := false
			for _, oi := range nameToIndices[ni] {
				for _, oj := range nameToIndices[nj] {
					if oi < len(conflict) && oj < len(conflict[oi]) && conflict[oi][oj] {
						dependent = true
						break
					}
				}
				if dependent {
					break
				}
			}
			mergedConflict[i][j] = dependent
		}
	}
	return merged, mergedConflict
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

// IsPReplaceable reports whether the byte 'p' occurs exactly once as a
// standalone [A-Za-z_]+ run in text, in which case it's safe to
// repurpose as a variable target (it isn't otherwise load-bearing, e.g.
// as a lone parameter name used just once). Grounded in
// variable_optimizer.hpp's is_p_replaceable; kept as a free function so
// alternate candidacy policies can be substituted.
func IsPReplaceable(text []byte) bool {
	pOcc := 0
	runLen := 0
	runIsLoneP := false
	flush := func() {
		if runLen == 1 && runIsLoneP {
			pOcc++
		}
		runLen = 0
		runIsLoneP = false
	}
	for _, c := range text {
		if isIdentChar(c) {
			if runLen == 0 {
				runIsLoneP = c == 'p'
			}
			runLen++
			continue
		}
		flush()
	}
	flush()
	return pOcc == 1
}

// CharStat tallies, for one literal byte value, how its occurrences
// split between "belongs to a tracked variable" and "does not", broken
// down by whether the occurrence was emitted as a literal token or
// absorbed inside a copy token, plus its current literal code length.
type CharStat struct {
	VarCandidate                    bool
	NumVarOccurrencesAsLiteral      int
	NumNonVarOccurrencesAsLiteral   int
	NumVarOccurrencesAsNonliteral   int
	NumNonVarOccurrencesAsNonliteral int
	LitCodeLength                   int
}

// CharStats computes per-byte-value statistics for d against the given
// variable set. Returns an error if a recorded occurrence position does
// not actually match the variable's name in d's reconstructed text
// (grounded in the original's fatal consistency check, turned into an
// error return rather than exit(1)).
func CharStats(d *block.Dynamic, vars []Variable) ([]CharStat, error) {
	text, err := d.Reconstruct(nil)
	if err != nil {
		return nil, err
	}

	isLiteralPosition := make([]bool, len(text))
	var literalFreq, nonliteralFreq [256]int
	ptr := 0
	for _, tok := range d.Tokens {
		if tok.Type == block.Literal {
			isLiteralPosition[ptr] = true
			literalFreq[tok.Lit]++
			ptr++
			continue
		}
		for i := 0; i < tok.Length; i++ {
			nonliteralFreq[text[ptr+i]]++
		}
		ptr += tok.Length
	}

	numLitOcc := make([]int, len(vars))
	numNonlitOcc := make([]int, len(vars))
	for i, v := range vars {
		for _, pos := range v.Occurrences {
			for j := 0; j < len(v.Name); j++ {
				if pos+j >= len(text) || text[pos+j] != v.Name[j] {
					return nil, fmt.Errorf("variable: occurrence of %q at position %d does not match text", v.Name, pos)
				}
			}
			if isLiteralPosition[pos] {
				numLitOcc[i]++
			} else {
				numNonlitOcc[i]++
			}
		}
	}

	var stats [256]CharStat
	for i := 'A'; i <= 'Z'; i++ {
		stats[i].VarCandidate = true
	}
	pReplaceable := IsPReplaceable(text)
	for i := 'a'; i <= 'z'; i++ {
		if i != 'p' || pReplaceable {
			stats[i].VarCandidate = true
		}
	}
	stats['_'].VarCandidate = true

	for i := 0; i < 256; i++ {
		stats[i].NumNonVarOccurrencesAsLiteral = literalFreq[i]
		stats[i].NumNonVarOccurrencesAsNonliteral = nonliteralFreq[i]
		stats[i].LitCodeLength = d.LiteralCodeLength(i)
	}

	for i, v := range vars {
		if len(v.Name) != 1 {
			continue
		}
		c := v.Name[0]
		if !stats[c].VarCandidate {
			continue
		}
		stats[c].NumVarOccurrencesAsLiteral = numLitOcc[i]
		stats[c].NumNonVarOccurrencesAsLiteral -= numLitOcc[i]
		stats[c].NumVarOccurrencesAsNonliteral = numNonlitOcc[i]
		stats[c].NumNonVarOccurrencesAsNonliteral -= numNonlitOcc[i]
	}
	return stats[:], nil
}

// ReplaceAndReparse applies mapping (indexed like vars; -1 means
// "unchanged") to vars' single-character names and to their occurrence
// positions in d's text, then discards d's token stream and reruns the
// optimal parser over the rewritten text with no history context.
// Grounded in variable_optimizer.hpp's replace_and_recompute_parsing.
func ReplaceAndReparse(d *block.Dynamic, vars []Variable, mapping []int) error {
	text, err := d.Reconstruct(nil)
	if err != nil {
		return err
	}
	for i := range vars {
		if mapping[i] == -1 {
			continue
		}
		newVal := byte(mapping[i])
		vars[i].Name = string(newVal)
		for _, pos := range vars[i].Occurrences {
			text[pos] = newVal
		}
	}

	tokens, err := parser.OptimalParse(d, nil, text)
	if err != nil {
		return err
	}
	d.Tokens = tokens
	return nil
}

// FreqCount selects which occurrence tally optimize_variables sorts and
// tie-breaks by.
type FreqCount int

const (
	NumNonVarAsLiteral FreqCount = iota
	NumNonVarAll
)

// TieBreak selects how same-code-length candidate symbols are ordered
// when multiple variables compete for the same Huffman code length.
type TieBreak int

const (
	BFS TieBreak = iota
	NonVarFreq
)

// Assignment selects how the chosen new-symbol-per-code-length list is
// mapped back onto variables.
type Assignment int

const (
	Injective Assignment = iota
	Greedy
)

// Optimize computes a variable-to-new-literal mapping (indexed like
// vars; -1 means "keep current name") that tries to move variables onto
// literal symbols with shorter Huffman codes. conflict may be nil only
// when assign is Injective. Grounded in variable_optimizer.hpp's
// optimize_variables.
func Optimize(d *block.Dynamic, vars []Variable, conflict [][]bool, freqCount FreqCount, tie TieBreak, assign Assignment) ([]int, error) {
	if conflict == nil && assign != Injective {
		return nil, fmt.Errorf("variable: conflict matrix required for non-injective assignment")
	}

	stats, err := CharStats(d, vars)
	if err != nil {
		return nil, err
	}

	var replaceCandVars []int
	variableCharToID := make([]int, 256)
	for i := range variableCharToID {
		variableCharToID[i] = -1
	}
	for i, v := range vars {
		if len(v.Name) != 1 {
			continue
		}
		c := int(v.Name[0])
		variableCharToID[c] = i
		if !stats[c].VarCandidate {
			continue
		}
		replaceCandVars = append(replaceCandVars, i)
	}

	weight := func(c int) int {
		if freqCount == NumNonVarAsLiteral {
			return stats[c].NumVarOccurrencesAsLiteral
		}
		return stats[c].NumVarOccurrencesAsLiteral + stats[c].NumVarOccurrencesAsNonliteral
	}
	sort.SliceStable(replaceCandVars, func(a, b int) bool {
		ca := int(vars[replaceCandVars[a]].Name[0])
		cb := int(vars[replaceCandVars[b]].Name[0])
		return weight(ca) > weight(cb)
	})

	usedChars := make([]bool, 256)
	var codeLengthSymbolMap [17][]int
	for i := 0; i < 256; i++ {
		if !stats[i].VarCandidate {
			continue
		}
		l := stats[i].LitCodeLength
		if l >= 0 && l <= 16 {
			codeLengthSymbolMap[l] = append(codeLengthSymbolMap[l], i)
		}
	}

	nonVarWeight := func(c int) int {
		if freqCount == NumNonVarAsLiteral {
			return stats[c].NumNonVarOccurrencesAsLiteral
		}
		return stats[c].NumNonVarOccurrencesAsLiteral + stats[c].NumNonVarOccurrencesAsNonliteral
	}

	assignedLiteralCode := make([]int, 0, len(replaceCandVars))
	ptr := 0

	for length := 1; length <= 16 && ptr < len(replaceCandVars); length++ {
		symbols := codeLengthSymbolMap[length]
		if len(symbols) == 0 {
			continue
		}
		switch tie {
		case BFS:
			if ptr == 0 {
				best := symbols[0]
				for _, s := range symbols[1:] {
					if nonVarWeight(s) > nonVarWeight(best) {
						best = s
					}
				}
				assignedLiteralCode = append(assignedLiteralCode, best)
				usedChars[best] = true
				ptr++
			}
			distance := make([]int, 256)
			for i := range distance {
				distance[i] = 1 << 30
			}
			var queue []int
			for j := 0; j < 256; j++ {
				if usedChars[j] {
					distance[j] = 0
					queue = append(queue, j)
				}
			}
			var traverse []int
			for len(queue) > 0 {
				v := queue[0]
				queue = queue[1:]
				if stats[v].LitCodeLength == length && !usedChars[v] && stats[v].VarCandidate {
					usedChars[v] = true
					traverse = append(traverse, v)
				}
				for _, u := range [2]int{v + 1, v - 1} {
					if u < 0 || u >= 256 {
						continue
					}
					if distance[u] > distance[v]+1 {
						distance[u] = distance[v] + 1
						queue = append(queue, u)
					}
				}
			}
			for _, v := range traverse {
				assignedLiteralCode = append(assignedLiteralCode, v)
				ptr++
				if ptr >= len(replaceCandVars) {
					break
				}
			}
		case NonVarFreq:
			ordered := append([]int(nil), symbols...)
			sort.SliceStable(ordered, func(a, b int) bool {
				return nonVarWeight(ordered[a]) > nonVarWeight(ordered[b])
			})
			for _, v := range ordered {
				if usedChars[v] {
					continue
				}
				assignedLiteralCode = append(assignedLiteralCode, v)
				usedChars[v] = true
				ptr++
				if ptr >= len(replaceCandVars) {
					break
				}
			}
		}
	}

	mapping := make([]int, len(vars))
	for i := range mapping {
		mapping[i] = -1
	}

	switch assign {
	case Injective:
		for idx, i := range replaceCandVars {
			if idx >= len(assignedLiteralCode) {
				break
			}
			charVal := int(vars[i].Name[0])
			newVal := assignedLiteralCode[idx]
			if newVal == charVal {
				continue
			}
			mapping[i] = newVal
		}
	case Greedy:
		assignedVarIDs := make([][]int, 256)
		for _, i := range replaceCandVars {
			charVal := int(vars[i].Name[0])
			for _, newVal := range assignedLiteralCode {
				ok := true
				for _, assignedID := range assignedVarIDs[newVal] {
					if conflict[i][assignedID] || conflict[assignedID][i] {
						ok = false
						break
					}
				}
				if !ok {
					continue
				}
				if newVal == charVal {
					continue
				}
				mapping[i] = newVal
				assignedVarIDs[newVal] = append(assignedVarIDs[newVal], i)
				break
			}
		}
	}

	return mapping, nil
}

// ChangeVariableSet proposes swapping up to three currently-used literal
// symbols with currently-unused (or non-variable) symbols at the edges
// of contiguous used-byte runs, giving the search a way to escape a
// local optimum that Optimize's code-length-preserving reassignment
// cannot reach on its own. Grounded in variable_optimizer.hpp's
// change_variable_set.
func ChangeVariableSet(src *rng.Source, d *block.Dynamic, vars []Variable) ([]int, error) {
	text, err := d.Reconstruct(nil)
	if err != nil {
		return nil, err
	}
	stats, err := CharStats(d, vars)
	if err != nil {
		return nil, err
	}

	var usedChars [256]bool
	for _, c := range text {
		usedChars[c] = true
	}
	type run struct{ start, end int }
	var runs []run
	for i := 0; i < 256; i++ {
		if !usedChars[i] {
			continue
		}
		j := i
		for j+1 < 256 && usedChars[j+1] {
			j++
		}
		runs = append(runs, run{i, j})
		i = j
	}

	var candidateChars []int
	for _, r := range runs {
		if r.start > 0 && stats[r.start].NumVarOccurrencesAsLiteral+stats[r.start].NumVarOccurrencesAsNonliteral > 0 {
			candidateChars = append(candidateChars, r.start)
		}
		if r.end+1 < 256 && stats[r.end].NumVarOccurrencesAsLiteral+stats[r.end].NumVarOccurrencesAsNonliteral > 0 {
			candidateChars = append(candidateChars, r.end)
		}
	}

	var replaceCandChars []int
	for i := 0; i < 256; i++ {
		if !stats[i].VarCandidate {
			continue
		}
		if stats[i].NumVarOccurrencesAsLiteral+stats[i].NumVarOccurrencesAsNonliteral > 0 {
			continue
		}
		if stats[i].NumNonVarOccurrencesAsLiteral+stats[i].NumNonVarOccurrencesAsNonliteral == 0 {
			continue
		}
		replaceCandChars = append(replaceCandChars, i)
	}
	for _, r := range runs {
		if r.start > 0 && stats[r.start-1].VarCandidate {
			replaceCandChars = append(replaceCandChars, r.start-1)
		}
		if r.end+1 < 256 && stats[r.end+1].VarCandidate {
			replaceCandChars = append(replaceCandChars, r.end+1)
		}
	}
	sort.Ints(replaceCandChars)
	replaceCandChars = dedupSorted(replaceCandChars)

	src.Shuffle(candidateChars)
	src.Shuffle(replaceCandChars)

	numChanges := min3(len(candidateChars), len(replaceCandChars), 3)
	mapping := make([]int, len(vars))
	for i := range mapping {
		mapping[i] = -1
	}
	if numChanges == 0 {
		return mapping, nil
	}
	numChanges = src.Intn(numChanges) + 1

	charToVarIndices := make([][]int, 256)
	for i, v := range vars {
		if len(v.Name) != 1 {
			continue
		}
		c := v.Name[0]
		charToVarIndices[c] = append(charToVarIndices[c], i)
	}

	for i := 0; i < numChanges; i++ {
		fromChar := candidateChars[i]
		toChar := replaceCandChars[i]
		if fromChar == toChar {
			charToVarIndices[fromChar] = nil
			continue
		}
		indices := charToVarIndices[fromChar]
		if len(indices) == 0 {
			continue
		}
		for _, idx := range indices {
			mapping[idx] = toChar
		}
		charToVarIndices[fromChar] = nil
	}
	return mapping, nil
}

func dedupSorted(v []int) []int {
	if len(v) == 0 {
		return v
	}
	out := v[:1]
	for _, x := range v[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
