// Package dump implements the whitespace-delimited textual dump format
// used to persist blocks and variable sets to disk between CLI
// invocations, grounded in blocks.hpp's dump_string/load_block_from_stream
// and variable.hpp's stream I/O.
package dump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/variable"
)

// scanner wraps bufio.Scanner configured to split on any whitespace,
// mirroring the C++ originals' `stream >> token` behavior.
type scanner struct {
	s   *bufio.Scanner
	err error
}

func newScanner(r io.Reader) *scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	s.Split(bufio.ScanWords)
	return &scanner{s: s}
}

func (sc *scanner) int() int {
	if sc.err != nil {
		return 0
	}
	if !sc.s.Scan() {
		sc.err = io.ErrUnexpectedEOF
		return 0
	}
	v, err := strconv.Atoi(sc.s.Text())
	if err != nil {
		sc.err = fmt.Errorf("dump: expected integer, got %q: %w", sc.s.Text(), err)
	}
	return v
}

func (sc *scanner) word() string {
	if sc.err != nil {
		return ""
	}
	if !sc.s.Scan() {
		sc.err = io.ErrUnexpectedEOF
		return ""
	}
	return sc.s.Text()
}

// WriteBlock serializes a single block in dump format: "bfinal btype",
// then the variant-specific body.
func WriteBlock(w io.Writer, b interface{}) error {
	switch v := b.(type) {
	case *block.Stored:
		return writeStored(w, v)
	case *block.Fixed:
		return writeFixed(w, v)
	case *block.Dynamic:
		return writeDynamic(w, v)
	default:
		return fmt.Errorf("dump: unsupported block type %T", b)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func writeStored(w io.Writer, b *block.Stored) error {
	if _, err := fmt.Fprintf(w, "%d %d\n", boolInt(b.BFinal), 0); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(b.Data)); err != nil {
		return err
	}
	return writeIntRow(w, byteInts(b.Data))
}

func byteInts(data []byte) []int {
	out := make([]int, len(data))
	for i, c := range data {
		out[i] = int(c)
	}
	return out
}

func writeFixed(w io.Writer, b *block.Fixed) error {
	if _, err := fmt.Fprintf(w, "%d %d\n", boolInt(b.BFinal), 1); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(b.Tokens)); err != nil {
		return err
	}
	return writeTokenRow(w, b.Tokens)
}

func writeDynamic(w io.Writer, b *block.Dynamic) error {
	if _, err := fmt.Fprintf(w, "%d %d\n", boolInt(b.BFinal), 2); err != nil {
		return err
	}
	if err := writeIntRow(w, b.CLCodeLengths); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(b.LiteralCodeLengths)); err != nil {
		return err
	}
	if err := writeIntRow(w, b.LiteralCodeLengths); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(b.DistanceCodeLengths)); err != nil {
		return err
	}
	if err := writeIntRow(w, b.DistanceCodeLengths); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(b.Tokens)); err != nil {
		return err
	}
	return writeTokenRow(w, b.Tokens)
}

func writeIntRow(w io.Writer, vals []int) error {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.Itoa(v)
	}
	_, err := fmt.Fprintln(w, strings.Join(strs, " "))
	return err
}

func writeTokenRow(w io.Writer, tokens []block.Token) error {
	strs := make([]string, len(tokens))
	for i, t := range tokens {
		if t.Type == block.Literal {
			strs[i] = fmt.Sprintf("L %d", t.Lit)
		} else {
			strs[i] = fmt.Sprintf("M %d %d", t.Length, t.Distance)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(strs, " "))
	return err
}

// ReadBlock parses one dump-format block from r.
func ReadBlock(r io.Reader) (interface{}, error) {
	sc := newScanner(r)
	bfinal := sc.int() != 0
	btype := sc.int()
	if sc.err != nil {
		return nil, sc.err
	}
	switch btype {
	case 0:
		n := sc.int()
		data := make([]byte, n)
		for i := 0; i < n; i++ {
			data[i] = byte(sc.int())
		}
		if sc.err != nil {
			return nil, sc.err
		}
		return &block.Stored{BFinal: bfinal, Data: data}, nil
	case 1:
		n := sc.int()
		tokens, err := readTokens(sc, n)
		if err != nil {
			return nil, err
		}
		return &block.Fixed{BFinal: bfinal, Tokens: tokens}, nil
	case 2:
		cl := make([]int, 19)
		for i := range cl {
			cl[i] = sc.int()
		}
		nLit := sc.int()
		lit := make([]int, nLit)
		for i := range lit {
			lit[i] = sc.int()
		}
		nDist := sc.int()
		dist := make([]int, nDist)
		for i := range dist {
			dist[i] = sc.int()
		}
		nTok := sc.int()
		tokens, err := readTokens(sc, nTok)
		if err != nil {
			return nil, err
		}
		if sc.err != nil {
			return nil, sc.err
		}
		return &block.Dynamic{
			BFinal:              bfinal,
			Tokens:              tokens,
			LiteralCodeLengths:  lit,
			DistanceCodeLengths: dist,
			CLCodeLengths:       cl,
		}, nil
	default:
		return nil, fmt.Errorf("dump: unsupported block type %d", btype)
	}
}

func readTokens(sc *scanner, n int) ([]block.Token, error) {
	tokens := make([]block.Token, n)
	for i := 0; i < n; i++ {
		kind := sc.word()
		switch kind {
		case "L":
			tokens[i] = block.L(byte(sc.int()))
		case "M":
			length := sc.int()
			distance := sc.int()
			tokens[i] = block.M(length, distance)
		default:
			if sc.err == nil {
				sc.err = fmt.Errorf("dump: invalid token type %q", kind)
			}
		}
	}
	return tokens, sc.err
}

// WriteVariables serializes variables (and, if dependency is non-nil,
// the conflict matrix) in variable.hpp's stream format, merging
// same-named variables first.
func WriteVariables(w io.Writer, vars []variable.Variable, dependency [][]bool) error {
	vars, dependency = variable.MergeSamename(vars, dependency)
	if _, err := fmt.Fprintf(w, "%d\n", len(vars)); err != nil {
		return err
	}
	for _, v := range vars {
		if _, err := fmt.Fprintf(w, "%s %d\n", v.Name, len(v.Occurrences)); err != nil {
			return err
		}
		if err := writeIntRow(w, v.Occurrences); err != nil {
			return err
		}
	}
	if dependency == nil {
		return nil
	}
	for i := range dependency {
		row := make([]int, len(dependency[i]))
		for j, v := range dependency[i] {
			row[j] = boolInt(v)
		}
		if err := writeIntRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// ReadVariables parses a variable set. withDependency selects whether a
// trailing num_vars x num_vars conflict matrix is expected.
func ReadVariables(r io.Reader, withDependency bool) ([]variable.Variable, [][]bool, error) {
	sc := newScanner(r)
	n := sc.int()
	vars := make([]variable.Variable, n)
	for i := 0; i < n; i++ {
		vars[i].Name = sc.word()
		m := sc.int()
		vars[i].Occurrences = make([]int, m)
		for j := 0; j < m; j++ {
			vars[i].Occurrences[j] = sc.int()
		}
	}
	if sc.err != nil {
		return nil, nil, sc.err
	}
	if !withDependency {
		return vars, nil, nil
	}
	dependency := make([][]bool, n)
	for i := range dependency {
		dependency[i] = make([]bool, n)
		for j := range dependency[i] {
			dependency[i][j] = sc.int() != 0
		}
	}
	if sc.err != nil {
		return nil, nil, sc.err
	}
	return vars, dependency, nil
}
