package adapter

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/mouse-blink/evolve/internal/domain"
)

// ErrParentCount indicates that a crossover received other than two parents.
var ErrParentCount = errors.New("crossover needs exactly two parents")

// ErrLengthMismatch indicates that crossover parents differ in length.
var ErrLengthMismatch = errors.New("parents differ in length")

var (
	_ domain.Recombinator[Bitstring] = TwoPointCrossover{}
	_ domain.Recombinator[Bitstring] = UniformCrossover{}
)

// TwoPointCrossover copies the first parent and splices in a random
// contiguous run of bits from the second.
type TwoPointCrossover struct{}

// Apply implements domain.Recombinator.
func (TwoPointCrossover) Apply(parents []Bitstring, rng *rand.Rand) (Bitstring, error) {
	first, second, err := parentPair(parents)
	if err != nil {
		return Bitstring{}, err
	}

	child := first.Clone()

	n := child.Len()
	if n == 0 {
		return child, nil
	}

	start := rng.IntN(n)
	end := start + rng.IntN(n-start+1)

	for i := start; i < end; i++ {
		if child.Has(i) != second.Has(i) {
			child.flip(i)
		}
	}

	return child, nil
}

// UniformCrossover takes each bit from either parent with equal probability.
type UniformCrossover struct{}

// Apply implements domain.Recombinator.
func (UniformCrossover) Apply(parents []Bitstring, rng *rand.Rand) (Bitstring, error) {
	first, second, err := parentPair(parents)
	if err != nil {
		return Bitstring{}, err
	}

	child := NewBitstring(first.Len())
	for i := range child.words {
		mask := rng.Uint64()
		child.words[i] = first.words[i]&mask | second.words[i]&^mask
	}

	return child, nil
}

func parentPair(parents []Bitstring) (Bitstring, Bitstring, error) {
	if len(parents) != 2 {
		return Bitstring{}, Bitstring{}, fmt.Errorf("%w: got %d", ErrParentCount, len(parents))
	}

	if parents[0].Len() != parents[1].Len() {
		return Bitstring{}, Bitstring{}, fmt.Errorf("%w: %d and %d bits", ErrLengthMismatch, parents[0].Len(), parents[1].Len())
	}

	return parents[0], parents[1], nil
}
