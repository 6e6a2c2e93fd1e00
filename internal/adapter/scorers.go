package adapter

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/mouse-blink/evolve/internal/domain"
	m "github.com/mouse-blink/evolve/internal/model"
)

// Cases is the per-test-case result type produced by the bitstring scorers.
type Cases = m.TestResults[m.Score[int64]]

// ErrBlockSize indicates that a genome does not split into whole trap blocks.
var ErrBlockSize = errors.New("genome length is not a multiple of the block size")

var (
	_ domain.Scorer[Bitstring, Cases] = CountOnes{}
	_ domain.Scorer[Bitstring, Cases] = HIFF{}
	_ domain.Scorer[Bitstring, Cases] = Trap{}
)

// CountOnes scores one case per bit: 1 when the bit is set, 0 otherwise.
type CountOnes struct{}

// Apply implements domain.Scorer.
func (CountOnes) Apply(genome Bitstring, _ *rand.Rand) (Cases, error) {
	results := make([]m.Score[int64], genome.Len())
	for i := range results {
		if genome.Has(i) {
			results[i] = m.NewScore[int64](1)
		}
	}

	return m.NewTestResults(results), nil
}

// HIFF is the hierarchical-if-and-only-if problem. Every node of the binary
// block tree is a case, listed in post-order: a leaf scores 1 and an inner
// block scores its length when all of its bits agree, 0 otherwise. A genome
// of n bits has 2n-1 cases.
type HIFF struct{}

// Apply implements domain.Scorer.
func (HIFF) Apply(genome Bitstring, _ *rand.Rand) (Cases, error) {
	if genome.Len() == 0 {
		return m.NewTestResults[m.Score[int64]](nil), nil
	}

	results := make([]m.Score[int64], 0, 2*genome.Len()-1)
	hiffBlock(genome, 0, genome.Len(), &results)

	return m.NewTestResults(results), nil
}

// hiffBlock appends the cases of bits [start, start+n) and reports whether
// they all agree.
func hiffBlock(genome Bitstring, start, n int, results *[]m.Score[int64]) bool {
	if n < 2 {
		*results = append(*results, m.NewScore(int64(n)))
		return true
	}

	half := n / 2
	left := hiffBlock(genome, start, half, results)
	right := hiffBlock(genome, start+half, n-half, results)

	if left && right && genome.Has(start) == genome.Has(start+half) {
		*results = append(*results, m.NewScore(int64(n)))
		return true
	}

	*results = append(*results, m.NewScore[int64](0))

	return false
}

// Trap is the concatenated deceptive trap of block size k, one case per
// block. A block of all ones scores k; otherwise it scores k-1-ones, which
// leads hill climbers towards all zeros.
type Trap struct {
	k int
}

// NewTrap returns a Trap scorer over blocks of k bits.
func NewTrap(k int) (Trap, error) {
	if k < 1 {
		return Trap{}, fmt.Errorf("trap block size must be positive, got %d", k)
	}

	return Trap{k: k}, nil
}

// BlockSize returns k.
func (t Trap) BlockSize() int { return t.k }

// Apply implements domain.Scorer.
func (t Trap) Apply(genome Bitstring, _ *rand.Rand) (Cases, error) {
	if t.k < 1 || genome.Len()%t.k != 0 {
		return Cases{}, fmt.Errorf("%w: %d bits, block size %d", ErrBlockSize, genome.Len(), t.k)
	}

	results := make([]m.Score[int64], genome.Len()/t.k)

	for block := range results {
		ones := 0
		for j := block * t.k; j < (block+1)*t.k; j++ {
			if genome.Has(j) {
				ones++
			}
		}

		if ones == t.k {
			results[block] = m.NewScore(int64(t.k))
		} else {
			results[block] = m.NewScore(int64(t.k - ones - 1))
		}
	}

	return m.NewTestResults(results), nil
}

// Optimum returns the best total scorer can give a genome of n bits. All
// three bitstring problems are maximised by the all-ones string.
func Optimum(scorer domain.Scorer[Bitstring, Cases], n int) (int64, error) {
	best, err := scorer.Apply(Ones(n), nil)
	if err != nil {
		return 0, err
	}

	total, ok := best.Total()
	if !ok {
		return 0, nil
	}

	return total.Value(), nil
}
