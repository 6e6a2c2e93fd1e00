package adapter

import (
	"fmt"
	"math/rand/v2"

	"github.com/mouse-blink/evolve/internal/domain"
)

var (
	_ domain.Mutator[Bitstring] = FlipWithRate{}
	_ domain.Mutator[Bitstring] = FlipOneOverLength{}
)

// FlipWithRate flips each bit independently with a fixed probability.
type FlipWithRate struct {
	rate float64
}

// NewFlipWithRate returns a mutator flipping bits with probability rate.
func NewFlipWithRate(rate float64) (FlipWithRate, error) {
	if rate < 0 || rate > 1 {
		return FlipWithRate{}, fmt.Errorf("mutation rate must be in [0, 1], got %v", rate)
	}

	return FlipWithRate{rate: rate}, nil
}

// Rate returns the per-bit flip probability.
func (f FlipWithRate) Rate() float64 { return f.rate }

// Apply implements domain.Mutator.
func (f FlipWithRate) Apply(genome Bitstring, rng *rand.Rand) (Bitstring, error) {
	return flipEach(genome, f.rate, rng), nil
}

// FlipOneOverLength flips each bit with probability 1/len, so one bit is
// flipped on average whatever the genome length.
type FlipOneOverLength struct{}

// Apply implements domain.Mutator.
func (FlipOneOverLength) Apply(genome Bitstring, rng *rand.Rand) (Bitstring, error) {
	if genome.Len() == 0 {
		return genome.Clone(), nil
	}

	return flipEach(genome, 1/float64(genome.Len()), rng), nil
}

func flipEach(genome Bitstring, rate float64, rng *rand.Rand) Bitstring {
	child := genome.Clone()

	for i := range child.Len() {
		if rng.Float64() < rate {
			child.flip(i)
		}
	}

	return child
}
