// Package block implements the data model (§3): tokens, and the three
// DEFLATE block variants (stored, fixed Huffman, dynamic Huffman) as a
// tagged variant rather than the C++ original's virtual dispatch. Only
// the dynamic variant carries code-length vectors and participates in
// optimization.
package block

import (
	"fmt"

	"github.com/daanv2/deflopt/internal/tables"
)

// TokenType distinguishes a literal byte from a back-reference.
type TokenType int

const (
	Literal TokenType = iota
	Copy
)

// Token is either a literal byte (0-255) or a back-reference with
// length in [3,258] and distance in [1,32768].
type Token struct {
	Type     TokenType
	Lit      byte
	Length   int
	Distance int
}

// L constructs a literal token.
func L(b byte) Token { return Token{Type: Literal, Lit: b} }

// M constructs a back-reference (match) token.
func M(length, distance int) Token { return Token{Type: Copy, Length: length, Distance: distance} }

// String renders a token in the textual dump format ("L <byte>" or
// "M <length> <distance>").
func (t Token) String() string {
	if t.Type == Literal {
		return fmt.Sprintf("L %d", t.Lit)
	}
	return fmt.Sprintf("M %d %d", t.Length, t.Distance)
}

// Equal reports whether two tokens denote the same symbol.
func (t Token) Equal(o Token) bool {
	if t.Type != o.Type {
		return false
	}
	if t.Type == Literal {
		return t.Lit == o.Lit
	}
	return t.Length == o.Length && t.Distance == o.Distance
}

// LengthCode returns this token's literal/length alphabet symbol: the
// raw literal byte for a Literal token, or the DEFLATE length code
// (257-285) for a Copy token.
func (t Token) LengthCode() (int, error) {
	if t.Type == Literal {
		return int(t.Lit), nil
	}
	return tables.LengthCode(t.Length)
}

// DistanceCode returns this token's distance alphabet symbol. Panics if
// called on a Literal token.
func (t Token) DistanceCode() (int, error) {
	if t.Type == Literal {
		panic("block: DistanceCode called on a literal token")
	}
	return tables.DistanceCode(t.Distance)
}

// Reconstruct decodes a token sequence back into bytes, using context as
// the preceding history a back-reference distance may reach into. A
// back-reference's distance is measured from the end of the
// context-plus-decoded-so-far stream, so it may point into context, into
// already-decoded output, or (for overlapping copies) into output
// decoded earlier within the same call.
func Reconstruct(tokens []Token, context []byte) ([]byte, error) {
	res := make([]byte, 0, len(context)+len(tokens))
	for _, tok := range tokens {
		if tok.Type == Literal {
			res = append(res, tok.Lit)
			continue
		}
		total := len(context) + len(res)
		if tok.Distance <= 0 || tok.Distance > total {
			return nil, fmt.Errorf("block: copy distance out of bounds at token %v", tok)
		}
		pos := total - tok.Distance
		for k := 0; k < tok.Length; k, pos = k+1, pos+1 {
			if pos < len(context) {
				res = append(res, context[pos])
				continue
			}
			rpos := pos - len(context)
			if rpos < 0 || rpos >= len(res) {
				return nil, fmt.Errorf("block: copy source not yet available at token %v", tok)
			}
			res = append(res, res[rpos])
		}
	}
	return res, nil
}
