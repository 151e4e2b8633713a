package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRemapsZeroSeed(t *testing.T) {
	a := New(0)
	b := New(0xdeadbeefcafebabe)
	assert.Equal(t, a.Uint64(), b.Uint64())
}

func TestSourceIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestIntnStaysInRange(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Intn(5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}
}

func TestIntnPanicsOnNonPositive(t *testing.T) {
	s := New(1)
	assert.Panics(t, func() { s.Intn(0) })
}

func TestPermIsAPermutation(t *testing.T) {
	s := New(9)
	p := s.Perm(20)
	seen := make([]bool, 20)
	for _, v := range p {
		assert.False(t, seen[v], "duplicate value %d in permutation", v)
		seen[v] = true
	}
}

func TestShuffleKeepsSameElements(t *testing.T) {
	s := New(3)
	v := []int{1, 2, 3, 4, 5}
	Shuffle(s, v)
	sum := 0
	for _, x := range v {
		sum += x
	}
	assert.Equal(t, 15, sum)
}
