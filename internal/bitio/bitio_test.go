package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseBits(t *testing.T) {
	assert.Equal(t, uint16(0b100), ReverseBits(0b001, 3))
	assert.Equal(t, uint16(0b0110), ReverseBits(0b0110, 4))
	assert.Equal(t, uint16(0), ReverseBits(0, 5))
}

func TestReversedCanonicalCodesFixedLengthTree(t *testing.T) {
	// Three symbols with lengths 1,2,2: a valid Kraft-tight code.
	lengths := []int{1, 2, 2}
	codes := ReversedCanonicalCodes(lengths)
	assert.Len(t, codes, 3)

	// Canonical assignment (pre-reversal) is 0:"0", 1:"10", 2:"11".
	assert.Equal(t, ReverseBits(0b0, 1), codes[0])
	assert.Equal(t, ReverseBits(0b10, 2), codes[1])
	assert.Equal(t, ReverseBits(0b11, 2), codes[2])
}

func TestWriterRoundTripsBits(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBits(0b1, 1)
	w.WriteBits(0b0011, 4)
	assert.Equal(t, 8, w.BitLength())

	bytes := w.TakeBytes()
	assert.Len(t, bytes, 1)
	// LSB-first packing: bit0=1 bit1=0 bit2=1 bit3=1 bit4=1 bit5=1 bit6=0 bit7=0
	assert.Equal(t, byte(0b00111101), bytes[0])
}

func TestWriterFlushesPartialByte(t *testing.T) {
	w := NewWriter()
	w.WriteBits(1, 1)
	assert.Equal(t, 1, w.BitLength())
	bytes := w.TakeBytes()
	assert.Len(t, bytes, 1)
	assert.Equal(t, byte(1), bytes[0])
}

func TestReversedCanonicalCodesAbsentSymbolsAreZero(t *testing.T) {
	lengths := []int{0, 2, 0, 2}
	codes := ReversedCanonicalCodes(lengths)
	assert.Equal(t, uint16(0), codes[0])
	assert.Equal(t, uint16(0), codes[2])
	assert.NotEqual(t, codes[1], codes[3])
}
