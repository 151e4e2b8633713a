package block

import "github.com/daanv2/deflopt/internal/tables"

// Fixed is a btype=1 block: tokens encoded under RFC 1951's fixed
// Huffman code-length assignment.
type Fixed struct {
	BFinal bool
	Tokens []Token
}

// LiteralCodeLength returns the fixed literal/length code length for a
// symbol, per RFC 1951 §3.2.6.
func (f *Fixed) LiteralCodeLength(symbol int) int {
	switch {
	case symbol <= 143:
		return 8
	case symbol <= 255:
		return 9
	case symbol <= 279:
		return 7
	default:
		return 8
	}
}

// DistanceCodeLength returns the fixed distance code length: always 5.
func (f *Fixed) DistanceCodeLength(int) int {
	return 5
}

// BitLength returns the block's total bit length under the fixed code.
func (f *Fixed) BitLength() (int, error) {
	length := 3
	for _, tok := range f.Tokens {
		if tok.Type == Literal {
			length += f.LiteralCodeLength(int(tok.Lit))
			continue
		}
		litCode, err := tok.LengthCode()
		if err != nil {
			return 0, err
		}
		length += f.LiteralCodeLength(litCode)
		extra, err := tables.ExtraBitsForLength(tok.Length)
		if err != nil {
			return 0, err
		}
		length += extra
		distCode, err := tok.DistanceCode()
		if err != nil {
			return 0, err
		}
		length += f.DistanceCodeLength(distCode)
		extraD, err := tables.ExtraBitsForDistance(tok.Distance)
		if err != nil {
			return 0, err
		}
		length += extraD
	}
	length += f.LiteralCodeLength(tables.EndOfBlock)
	return length, nil
}

// Reconstruct decodes the block's tokens back to bytes.
func (f *Fixed) Reconstruct(context []byte) ([]byte, error) {
	return Reconstruct(f.Tokens, context)
}
