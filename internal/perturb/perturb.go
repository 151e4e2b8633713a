// Package perturb implements the Kraft-preserving CL-vector perturbation
// moves (component I): small random edits applied to a stalled CL code
// length vector to escape a local optimum before the coordinator
// retries. Grounded in optimizer.hpp's randomly_update_code_lengths.
package perturb

import "github.com/daanv2/deflopt/internal/rng"

// DefaultMaxBitWidth matches the C++ default used by the coordinator's
// perturbation call site (optimizer.hpp passes 7 explicitly).
const DefaultMaxBitWidth = 7

// Apply mutates lengths in place with one randomly chosen move, retrying
// with a freshly chosen move whenever the chosen move finds no eligible
// target. It never changes len(lengths), never produces a negative
// length, and never exceeds maxBitWidth.
func Apply(src *rng.Source, lengths []int, maxBitWidth int) {
	for {
		switch src.Intn(5) {
		case 0:
			if adjacentSwap(src, lengths, maxBitWidth) {
				return
			}
		case 1:
			if randomSwap(src, lengths) {
				return
			}
		case 2:
			if dropAndShorten(src, lengths, maxBitWidth) {
				return
			}
		case 3:
			if liftFromZero(src, lengths, maxBitWidth) {
				return
			}
		default:
			if threeWay(src, lengths, maxBitWidth) {
				return
			}
		}
	}
}

func buckets(lengths []int, maxBitWidth int) [][]int {
	b := make([][]int, maxBitWidth+1)
	for i, l := range lengths {
		if l >= 0 && l <= maxBitWidth {
			b[l] = append(b[l], i)
		}
	}
	return b
}

// adjacentSwap swaps a random nonzero-length symbol with one drawn from
// the neighboring length bucket (length-1 or length+1).
func adjacentSwap(src *rng.Source, lengths []int, maxBitWidth int) bool {
	target1 := src.Intn(len(lengths))
	if lengths[target1] == 0 {
		return false
	}
	b := buckets(lengths, maxBitWidth)
	var candidates []int
	if lengths[target1] > 1 {
		candidates = append(candidates, b[lengths[target1]-1]...)
	}
	if lengths[target1] < maxBitWidth {
		candidates = append(candidates, b[lengths[target1]+1]...)
	}
	if len(candidates) == 0 {
		return false
	}
	target2 := candidates[src.Intn(len(candidates))]
	lengths[target1], lengths[target2] = lengths[target2], lengths[target1]
	return true
}

// randomSwap swaps two distinct, distinct-length, nonzero symbols.
func randomSwap(src *rng.Source, lengths []int) bool {
	target1 := src.Intn(len(lengths))
	target2 := src.Intn(len(lengths))
	if target1 == target2 {
		return false
	}
	if lengths[target1] == lengths[target2] {
		return false
	}
	if lengths[target1] == 0 || lengths[target2] == 0 {
		return false
	}
	lengths[target1], lengths[target2] = lengths[target2], lengths[target1]
	return true
}

// dropAndShorten picks a length bucket with at least two members, zeroes
// one member and shortens another by one (e.g. 3,3,3 -> 0,2,3). Length-1
// buckets are skipped: shortening a length-1 symbol would leave it at 0.
func dropAndShorten(src *rng.Source, lengths []int, maxBitWidth int) bool {
	b := buckets(lengths, maxBitWidth)
	var candidateLengths []int
	for l := 2; l <= maxBitWidth; l++ {
		if len(b[l]) >= 2 {
			candidateLengths = append(candidateLengths, l)
		}
	}
	if len(candidateLengths) == 0 {
		return false
	}
	targetLen := candidateLengths[src.Intn(len(candidateLengths))]
	members := b[targetLen]
	perm := src.Perm(len(members))
	toZero := members[perm[0]]
	toShorten := members[perm[1]]
	lengths[toZero] = 0
	lengths[toShorten]--
	return true
}

// liftFromZero takes an unused symbol and gives it the length of a
// randomly chosen nonzero symbol whose own length is then extended by
// one, keeping the Kraft sum unchanged.
func liftFromZero(src *rng.Source, lengths []int, maxBitWidth int) bool {
	b := buckets(lengths, maxBitWidth)
	if len(b[0]) == 0 {
		return false
	}
	var nonZero []int
	for l := 1; l < maxBitWidth; l++ {
		nonZero = append(nonZero, b[l]...)
	}
	if len(nonZero) == 0 {
		return false
	}
	zeroIdx := b[0][src.Intn(len(b[0]))]
	targetIdx := nonZero[src.Intn(len(nonZero))]
	newLength := lengths[targetIdx] + 1
	if newLength > maxBitWidth {
		return false
	}
	lengths[targetIdx]++
	lengths[zeroIdx] = newLength
	return true
}

// threeWay picks a length bucket with at least three members and shifts
// one symbol shorter while two others grow longer, preserving the Kraft
// sum exactly: the shortened symbol gains 2^-L of budget, and the two
// lengthened symbols each give back 2^-(L+1).
func threeWay(src *rng.Source, lengths []int, maxBitWidth int) bool {
	if maxBitWidth < 2 {
		return false
	}
	targetLen := src.Intn(maxBitWidth-1) + 1
	b := buckets(lengths, maxBitWidth)
	if len(b[targetLen]) < 3 {
		return false
	}
	perm := src.Perm(len(b[targetLen]))
	lengths[b[targetLen][perm[0]]]--
	lengths[b[targetLen][perm[1]]]++
	lengths[b[targetLen][perm[2]]]++
	return true
}
