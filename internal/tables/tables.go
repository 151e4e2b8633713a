// Package tables holds the fixed numeric tables of the DEFLATE wire
// format: length/distance base values and extra-bit counts for codes
// 257-285 and 0-29, and the permuted order in which the CL meta-alphabet
// is transmitted.
package tables

import "fmt"

// LengthBase holds the base match length for length codes 257..285,
// indexed from 0.
var LengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10,
	11, 13, 15, 17,
	19, 23, 27, 31,
	35, 43, 51, 59,
	67, 83, 99, 115,
	131, 163, 195, 227,
	258,
}

// LengthExtra holds the number of extra bits for length codes 257..285.
var LengthExtra = [29]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1,
	2, 2, 2, 2,
	3, 3, 3, 3,
	4, 4, 4, 4,
	5, 5, 5, 5,
	0,
}

// DistBase holds the base distance for distance codes 0..29.
var DistBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13,
	17, 25, 33, 49,
	65, 97, 129, 193,
	257, 385, 513, 769,
	1025, 1537, 2049, 3073,
	4097, 6145, 8193, 12289,
	16385, 24577,
}

// DistExtra holds the number of extra bits for distance codes 0..29.
var DistExtra = [30]int{
	0, 0, 0, 0, 1, 1, 2, 2,
	3, 3, 4, 4,
	5, 5, 6, 6,
	7, 7, 8, 8,
	9, 9, 10, 10,
	11, 11, 12, 12,
	13, 13,
}

// CLCodeOrder is the order the 19 CL meta-symbols are transmitted in a
// dynamic Huffman header, per RFC 1951 §3.2.7.
var CLCodeOrder = [19]int{
	16, 17, 18, 0, 8, 7, 9, 6,
	10, 5, 11, 4, 12, 3, 13, 2,
	14, 1, 15,
}

// EndOfBlock is the literal/length symbol marking the end of a block.
const EndOfBlock = 256

// LengthCode maps a match length in [3,258] to its DEFLATE length code
// (257..285).
func LengthCode(length int) (int, error) {
	switch {
	case length < 3:
		return 0, fmt.Errorf("tables: invalid match length %d", length)
	case length <= 10:
		return 257 + (length - 3), nil
	case length <= 18:
		return 265 + (length-11)/2, nil
	case length <= 34:
		return 269 + (length-19)/4, nil
	case length <= 66:
		return 273 + (length-35)/8, nil
	case length <= 130:
		return 277 + (length-67)/16, nil
	case length <= 257:
		return 281 + (length-131)/32, nil
	case length == 258:
		return 285, nil
	default:
		return 0, fmt.Errorf("tables: invalid match length %d", length)
	}
}

// DistanceCode maps a match distance in [1,32768] to its DEFLATE
// distance code (0..29).
func DistanceCode(distance int) (int, error) {
	switch {
	case distance < 1:
		return 0, fmt.Errorf("tables: invalid match distance %d", distance)
	case distance <= 4:
		return distance - 1, nil
	case distance <= 8:
		return 4 + (distance-5)/2, nil
	case distance <= 16:
		return 6 + (distance-9)/4, nil
	case distance <= 32:
		return 8 + (distance-17)/8, nil
	case distance <= 64:
		return 10 + (distance-33)/16, nil
	case distance <= 128:
		return 12 + (distance-65)/32, nil
	case distance <= 256:
		return 14 + (distance-129)/64, nil
	case distance <= 512:
		return 16 + (distance-257)/128, nil
	case distance <= 1024:
		return 18 + (distance-513)/256, nil
	case distance <= 2048:
		return 20 + (distance-1025)/512, nil
	case distance <= 4096:
		return 22 + (distance-2049)/1024, nil
	case distance <= 8192:
		return 24 + (distance-4097)/2048, nil
	case distance <= 16384:
		return 26 + (distance-8193)/4096, nil
	case distance <= 32768:
		return 28 + (distance-16385)/8192, nil
	default:
		return 0, fmt.Errorf("tables: invalid match distance %d", distance)
	}
}

// ExtraBitsForLength returns the number of extra bits following a
// length code for the given raw match length.
func ExtraBitsForLength(length int) (int, error) {
	code, err := LengthCode(length)
	if err != nil {
		return 0, err
	}
	return LengthExtra[code-257], nil
}

// ExtraBitsForDistance returns the number of extra bits following a
// distance code for the given raw match distance.
func ExtraBitsForDistance(distance int) (int, error) {
	code, err := DistanceCode(distance)
	if err != nil {
		return 0, err
	}
	return DistExtra[code], nil
}

// ExtraValueForLength returns the extra-bits payload to emit after the
// length code for the given raw match length.
func ExtraValueForLength(length int) (int, error) {
	code, err := LengthCode(length)
	if err != nil {
		return 0, err
	}
	return length - LengthBase[code-257], nil
}

// ExtraValueForDistance returns the extra-bits payload to emit after
// the distance code for the given raw match distance.
func ExtraValueForDistance(distance int) (int, error) {
	code, err := DistanceCode(distance)
	if err != nil {
		return 0, err
	}
	return distance - DistBase[code], nil
}
