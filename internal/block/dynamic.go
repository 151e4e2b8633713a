package block

import (
	"fmt"

	"github.com/daanv2/deflopt/internal/bitio"
	"github.com/daanv2/deflopt/internal/clcode"
	"github.com/daanv2/deflopt/internal/embed"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/tables"
	"github.com/daanv2/deflopt/pkg/assert"
)

// kraftSumWithinBudget checks the Kraft inequality (sum of 2^-length
// over all used symbols must not exceed 1) that any valid canonical
// prefix code must satisfy; a violation here means a DP stage produced
// an unrealizable code-length assignment, which is a programming error
// rather than recoverable input.
func kraftSumWithinBudget(lengths []int) bool {
	maxLen := 0
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
	}
	if maxLen == 0 {
		return true
	}
	budget := uint64(1) << uint(maxLen)
	var used uint64
	for _, l := range lengths {
		if l <= 0 {
			continue
		}
		used += uint64(1) << uint(maxLen-l)
	}
	return used <= budget
}

// Dynamic is a btype=2 block: tokens plus three code-length vectors
// (literal/length, distance, and the CL meta-alphabet). Only this
// variant carries code-length vectors and participates in optimization;
// see spec.md §9's "polymorphism over block variants" note.
type Dynamic struct {
	BFinal              bool
	Tokens              []Token
	LiteralCodeLengths  []int // 257 <= len <= 286
	DistanceCodeLengths []int // 1 <= len <= 32
	CLCodeLengths       []int // exactly 19, canonical-symbol order
}

// LiteralCodeLength returns the assigned length for a literal/length
// symbol, or a very large sentinel if the symbol is absent, matching
// the C++ original's 1e9 sentinel semantics.
func (d *Dynamic) LiteralCodeLength(symbol int) int {
	if symbol < 0 || symbol >= len(d.LiteralCodeLengths) || d.LiteralCodeLengths[symbol] == 0 {
		return 1_000_000_000
	}
	return d.LiteralCodeLengths[symbol]
}

// DistanceCodeLength returns the assigned length for a distance symbol,
// or the same large sentinel if absent.
func (d *Dynamic) DistanceCodeLength(symbol int) int {
	if symbol < 0 || symbol >= len(d.DistanceCodeLengths) || d.DistanceCodeLengths[symbol] == 0 {
		return 1_000_000_000
	}
	return d.DistanceCodeLengths[symbol]
}

// RLECodes returns the RLE-encoded representation of
// LiteralCodeLengths ++ DistanceCodeLengths under CLCodeLengths, using
// and extending cache. This is "not optimal" in the sense that spec.md
// §4.C calls out: each run is parsed independently of the CL alphabet's
// own Huffman coding, matching compute_RLE_encoded_representation.
func (d *Dynamic) RLECodes(cache *rle.Cache) ([]rle.Code, error) {
	concat := make([]int, 0, len(d.LiteralCodeLengths)+len(d.DistanceCodeLengths))
	concat = append(concat, d.LiteralCodeLengths...)
	concat = append(concat, d.DistanceCodeLengths...)
	runs := rle.LengthRLE(concat)

	var codes []rle.Code
	for _, run := range runs {
		c, err := cache.OptimalParse(run, d.CLCodeLengths)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c...)
	}
	return codes, nil
}

// HCLEN returns the number of CL positions that must be transmitted,
// per RFC 1951 §3.2.7 (the 4-bit HCLEN field encodes HCLEN-4, so this
// is never less than 4).
func (d *Dynamic) HCLEN() int {
	hclen := 4
	for i := 18; i >= 0; i-- {
		if d.CLCodeLengths[tables.CLCodeOrder[i]] > 0 {
			hclen = i + 1
			break
		}
	}
	if hclen < 4 {
		hclen = 4
	}
	return hclen
}

// BitLength returns the block's total on-the-wire bit length: header +
// CL-encoded length tables + token stream + end-of-block symbol.
func (d *Dynamic) BitLength(cache *rle.Cache) (int, error) {
	length := 3 + 5 + 5 + 4
	length += d.HCLEN() * 3

	rleCodes, err := d.RLECodes(cache)
	if err != nil {
		return 0, err
	}
	for _, c := range rleCodes {
		length += d.CLCodeLengths[c.Symbol()]
		length += c.NumAdditionalBits()
	}

	for _, tok := range d.Tokens {
		if tok.Type == Literal {
			length += d.LiteralCodeLength(int(tok.Lit))
			continue
		}
		litCode, err := tok.LengthCode()
		if err != nil {
			return 0, err
		}
		distCode, err := tok.DistanceCode()
		if err != nil {
			return 0, err
		}
		extraLen, _ := tables.ExtraBitsForLength(tok.Length)
		extraDist, _ := tables.ExtraBitsForDistance(tok.Distance)
		length += d.LiteralCodeLength(litCode) + extraLen
		length += d.DistanceCodeLength(distCode) + extraDist
	}
	length += d.LiteralCodeLength(tables.EndOfBlock)
	return length, nil
}

// BitLengthWithEmbedOverhead returns BitLength plus the embed-aware
// overhead (component L) of the emitted bytes under escaper. This is
// the evolutionary search's fitness function (§4.K).
func (d *Dynamic) BitLengthWithEmbedOverhead(cache *rle.Cache, escaper embed.Escaper) (int, error) {
	raw, bits, err := d.EncodeToBytes(cache)
	if err != nil {
		return 0, err
	}
	if escaper == nil {
		return bits, nil
	}
	return bits + embed.OverheadBits(escaper, raw), nil
}

// EncodeToBytes emits the block's exact wire bytes and returns the
// unpadded bit length, per RFC 1951 §3.2.7. All Huffman codes are
// bit-reversed to LSB-first packing order.
func (d *Dynamic) EncodeToBytes(cache *rle.Cache) ([]byte, int, error) {
	if len(d.LiteralCodeLengths) < 257 || len(d.LiteralCodeLengths) > 286 {
		return nil, 0, fmt.Errorf("block: invalid literal code length table size %d", len(d.LiteralCodeLengths))
	}
	if len(d.DistanceCodeLengths) == 0 || len(d.DistanceCodeLengths) > 32 {
		return nil, 0, fmt.Errorf("block: invalid distance code length table size %d", len(d.DistanceCodeLengths))
	}
	if len(d.CLCodeLengths) != 19 {
		return nil, 0, fmt.Errorf("block: invalid CL alphabet size %d", len(d.CLCodeLengths))
	}

	w := bitio.NewWriter()
	if d.BFinal {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
	w.WriteBits(0b10, 2)

	hlit := len(d.LiteralCodeLengths) - 257
	if hlit < 0 || hlit > 31 {
		return nil, 0, fmt.Errorf("block: HLIT out of range: %d", hlit)
	}
	w.WriteBits(uint32(hlit), 5)

	hdist := len(d.DistanceCodeLengths) - 1
	if hdist < 0 || hdist > 31 {
		return nil, 0, fmt.Errorf("block: HDIST out of range: %d", hdist)
	}
	w.WriteBits(uint32(hdist), 5)

	hclen := d.HCLEN()
	w.WriteBits(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		symbol := tables.CLCodeOrder[i]
		l := d.CLCodeLengths[symbol]
		if l < 0 || l > 7 {
			return nil, 0, fmt.Errorf("block: invalid CL code length %d", l)
		}
		w.WriteBits(uint32(l), 3)
	}

	clCodes := bitio.ReversedCanonicalCodes(d.CLCodeLengths)
	rleCodes, err := d.RLECodes(cache)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range rleCodes {
		symbol := c.Symbol()
		if symbol < 0 || symbol >= len(d.CLCodeLengths) {
			return nil, 0, fmt.Errorf("block: CL symbol out of range: %d", symbol)
		}
		l := d.CLCodeLengths[symbol]
		if l <= 0 {
			return nil, 0, fmt.Errorf("block: unused CL symbol referenced: %d", symbol)
		}
		w.WriteCode(clCodes[symbol], l)
		switch c.Type {
		case rle.PrevRun:
			if c.Value < 3 || c.Value > 6 {
				return nil, 0, fmt.Errorf("block: invalid PREV_RUN length %d", c.Value)
			}
			w.WriteBits(uint32(c.Value-3), 2)
		case rle.ZeroRun:
			if c.Value <= 10 {
				w.WriteBits(uint32(c.Value-3), 3)
			} else {
				w.WriteBits(uint32(c.Value-11), 7)
			}
		}
	}

	assert.Assert(kraftSumWithinBudget(d.LiteralCodeLengths))
	assert.Assert(kraftSumWithinBudget(d.DistanceCodeLengths))

	literalCodes := bitio.ReversedCanonicalCodes(d.LiteralCodeLengths)
	distanceCodes := bitio.ReversedCanonicalCodes(d.DistanceCodeLengths)

	for _, tok := range d.Tokens {
		if tok.Type == Literal {
			symbol := int(tok.Lit)
			l := d.LiteralCodeLengths[symbol]
			if l <= 0 {
				return nil, 0, fmt.Errorf("block: literal code has zero length: %d", symbol)
			}
			w.WriteCode(literalCodes[symbol], l)
			continue
		}
		lengthCode, err := tok.LengthCode()
		if err != nil {
			return nil, 0, err
		}
		if lengthCode >= len(d.LiteralCodeLengths) || d.LiteralCodeLengths[lengthCode] <= 0 {
			return nil, 0, fmt.Errorf("block: length code undefined: %d", lengthCode)
		}
		w.WriteCode(literalCodes[lengthCode], d.LiteralCodeLengths[lengthCode])
		extraLenBits, _ := tables.ExtraBitsForLength(tok.Length)
		if extraLenBits > 0 {
			extraVal, _ := tables.ExtraValueForLength(tok.Length)
			w.WriteBits(uint32(extraVal), extraLenBits)
		}

		distCode, err := tok.DistanceCode()
		if err != nil {
			return nil, 0, err
		}
		if distCode >= len(d.DistanceCodeLengths) || d.DistanceCodeLengths[distCode] <= 0 {
			return nil, 0, fmt.Errorf("block: distance code undefined: %d", distCode)
		}
		w.WriteCode(distanceCodes[distCode], d.DistanceCodeLengths[distCode])
		extraDistBits, _ := tables.ExtraBitsForDistance(tok.Distance)
		if extraDistBits > 0 {
			extraVal, _ := tables.ExtraValueForDistance(tok.Distance)
			w.WriteBits(uint32(extraVal), extraDistBits)
		}
	}

	if len(d.LiteralCodeLengths) <= tables.EndOfBlock || d.LiteralCodeLengths[tables.EndOfBlock] <= 0 {
		return nil, 0, fmt.Errorf("block: end-of-block code undefined")
	}
	w.WriteCode(literalCodes[tables.EndOfBlock], d.LiteralCodeLengths[tables.EndOfBlock])

	totalBits := w.BitLength()
	bytes := w.TakeBytes()
	return bytes, totalBits, nil
}

// Reconstruct decodes the block's tokens back to bytes.
func (d *Dynamic) Reconstruct(context []byte) ([]byte, error) {
	return Reconstruct(d.Tokens, context)
}

// ResetAsStaticBlock overwrites the code-length tables with RFC 1951's
// fixed Huffman assignment, so a fresh block can be bootstrapped before
// the first coordinator round runs. The CL vector is derived from that
// fixed assignment too (rather than left empty), since the coordinator's
// literal/distance DPs cost their own RLE encoding against it on their
// very first call. Grounded in reset_code_length_as_static_block from the
// C++ original's Dynamic block (the same fixed-code constants as
// Fixed.LiteralCodeLength).
func (d *Dynamic) ResetAsStaticBlock(cache *rle.Cache) {
	f := &Fixed{}
	d.LiteralCodeLengths = make([]int, 288)
	for i := range d.LiteralCodeLengths {
		d.LiteralCodeLengths[i] = f.LiteralCodeLength(i)
	}
	d.DistanceCodeLengths = make([]int, 30)
	for i := range d.DistanceCodeLengths {
		d.DistanceCodeLengths[i] = f.DistanceCodeLength(i)
	}
	if chosen, ok := clcode.Choose(cache, d.LiteralCodeLengths, d.DistanceCodeLengths); ok {
		d.CLCodeLengths = chosen
	} else {
		d.CLCodeLengths = make([]int, 19)
	}
}

// SplitAtPosition splits the block's token stream at byte offset pos of
// its reconstructed text into two independent Dynamic blocks with
// disjoint token streams; used by the two-block splitter (§4.M).
// Both halves are reset to the fixed-Huffman code lengths with a chosen
// CL vector (ResetAsStaticBlock); the caller runs the coordinator on each
// to optimize them.
func (d *Dynamic) SplitAtPosition(pos int, cache *rle.Cache) (*Dynamic, *Dynamic, error) {
	decoded := make([]byte, 0, len(d.Tokens))
	splitIdx := -1
	for i, tok := range d.Tokens {
		before := len(decoded)
		var err error
		decoded, err = appendToken(decoded, tok)
		if err != nil {
			return nil, nil, err
		}
		if before < pos && len(decoded) >= pos {
			splitIdx = i + 1
			if len(decoded) != pos {
				return nil, nil, fmt.Errorf("block: split position %d falls inside a token", pos)
			}
			break
		}
	}
	if splitIdx == -1 {
		return nil, nil, fmt.Errorf("block: split position %d out of range", pos)
	}

	b1 := &Dynamic{BFinal: false, Tokens: append([]Token(nil), d.Tokens[:splitIdx]...)}
	b2 := &Dynamic{BFinal: d.BFinal, Tokens: append([]Token(nil), d.Tokens[splitIdx:]...)}
	b1.ResetAsStaticBlock(cache)
	b2.ResetAsStaticBlock(cache)
	return b1, b2, nil
}

func appendToken(decoded []byte, tok Token) ([]byte, error) {
	if tok.Type == Literal {
		return append(decoded, tok.Lit), nil
	}
	total := len(decoded)
	if tok.Distance <= 0 || tok.Distance > total {
		return nil, fmt.Errorf("block: copy distance out of bounds at token %v", tok)
	}
	pos := total - tok.Distance
	for k := 0; k < tok.Length; k, pos = k+1, pos+1 {
		decoded = append(decoded, decoded[pos])
	}
	return decoded, nil
}
