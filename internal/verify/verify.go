// Package verify round-trips an encoded DEFLATE block through a decoder
// this repository did not write, so a bug shared between the encoder
// and its own Reconstruct() can't silently pass. Grounded in spec.md
// §8's testable property 1 ("decoding with an independent
// implementation reproduces the input").
package verify

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"

	"github.com/icza/bitio"
	"github.com/klauspost/compress/flate"
)

// Header is the 3-bit block header (BFINAL, BTYPE) read independently
// of this repository's own bitio.Writer, using icza/bitio's reader.
// DEFLATE packs bits LSB-first within each byte (RFC 1951 §3.1.1) but
// icza/bitio reads MSB-first, so each source byte is bit-reversed
// before handing it to the reader — a different implementation walking
// the same bit order, to catch a header-packing bug that a self-check
// couldn't.
type Header struct {
	Final bool
	Type  uint8
}

// ReadHeader reads the first block header from data using an
// independent bit reader.
func ReadHeader(data []byte) (Header, error) {
	if len(data) == 0 {
		return Header{}, fmt.Errorf("verify: empty block")
	}
	reversed := make([]byte, len(data))
	for i, b := range data {
		reversed[i] = bits.Reverse8(b)
	}
	r := bitio.NewReader(bytes.NewReader(reversed))
	final, err := r.ReadBool()
	if err != nil {
		return Header{}, fmt.Errorf("verify: reading BFINAL: %w", err)
	}
	btype, err := r.ReadBits(2)
	if err != nil {
		return Header{}, fmt.Errorf("verify: reading BTYPE: %w", err)
	}
	// BTYPE is stored least-significant bit first, so its two bits come
	// out of the MSB-first reader in swapped order.
	btype = (btype&1)<<1 | btype>>1
	return Header{Final: final, Type: uint8(btype)}, nil
}

// RoundTrip decompresses data as given (a byte-aligned stream ending in a
// BFINAL block) with klauspost/compress/flate, returning an error if
// the result doesn't match want exactly.
func RoundTrip(data []byte, want []byte) error {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("verify: independent decode failed: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("verify: round-trip mismatch: got %d bytes, want %d bytes", len(got), len(want))
	}
	return nil
}

// Decode runs bfinal-terminated raw DEFLATE bytes (as produced by
// block.Dynamic.EncodeToBytes, embedded in a single-block stream) and
// returns the decoded plaintext without comparing it, for callers that
// want the bytes rather than a pass/fail check.
func Decode(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("verify: independent decode failed: %w", err)
	}
	return got, nil
}
