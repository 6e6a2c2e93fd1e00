// Package adapter provides the bitstring genome together with the variation
// and scoring operators the CLI driver plugs into the generation engine.
package adapter

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
	"strings"
)

const (
	wordShift = 6
	wordMask  = 63
)

// Bitstring is a fixed-length string of bits packed into 64-bit words.
// Operators treat it as immutable and modify clones only.
type Bitstring struct {
	n     int
	words []uint64
}

// NewBitstring returns n zero bits.
func NewBitstring(n int) Bitstring {
	return Bitstring{n: n, words: make([]uint64, (n+wordMask)>>wordShift)}
}

// Ones returns n set bits.
func Ones(n int) Bitstring {
	b := NewBitstring(n)
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}

	b.trim()

	return b
}

// RandomBitstring returns n bits, each set with probability one half.
func RandomBitstring(n int, rng *rand.Rand) Bitstring {
	b := NewBitstring(n)
	for i := range b.words {
		b.words[i] = rng.Uint64()
	}

	b.trim()

	return b
}

// ParseBitstring reads a string of '0' and '1'; the first character is bit 0.
func ParseBitstring(s string) (Bitstring, error) {
	b := NewBitstring(len(s))

	for i, c := range s {
		switch c {
		case '1':
			b.set(i)
		case '0':
		default:
			return Bitstring{}, fmt.Errorf("bitstring: invalid character %q at %d", c, i)
		}
	}

	return b, nil
}

// Len returns the number of bits.
func (b Bitstring) Len() int { return b.n }

// Has reports whether bit i is set.
func (b Bitstring) Has(i int) bool {
	return b.words[i>>wordShift]&(1<<(uint(i)&wordMask)) != 0
}

// OnesCount returns the number of set bits.
func (b Bitstring) OnesCount() int {
	count := 0
	for _, w := range b.words {
		count += bits.OnesCount64(w)
	}

	return count
}

// Clone returns an independent copy.
func (b Bitstring) Clone() Bitstring {
	words := make([]uint64, len(b.words))
	copy(words, b.words)

	return Bitstring{n: b.n, words: words}
}

// Equal reports whether both strings hold the same bits.
func (b Bitstring) Equal(other Bitstring) bool {
	if b.n != other.n {
		return false
	}

	for i, w := range b.words {
		if w != other.words[i] {
			return false
		}
	}

	return true
}

func (b Bitstring) String() string {
	var sb strings.Builder

	sb.Grow(b.n)

	for i := range b.n {
		if b.Has(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

func (b Bitstring) set(i int) {
	b.words[i>>wordShift] |= 1 << (uint(i) & wordMask)
}

func (b Bitstring) flip(i int) {
	b.words[i>>wordShift] ^= 1 << (uint(i) & wordMask)
}

// trim clears the unused high bits of the last word.
func (b Bitstring) trim() {
	if rem := uint(b.n) & wordMask; rem != 0 {
		b.words[len(b.words)-1] &= (1 << rem) - 1
	}
}
