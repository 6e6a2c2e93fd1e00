package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	m "github.com/mouse-blink/evolve/internal/model"
)

// Weight maps a score to a non-negative selection weight.
type Weight[S any] func(score S) float64

// Weighted is fitness-proportional selection.
type Weighted[G, S any] struct {
	weight Weight[S]
}

// NewWeighted returns a fitness-proportional selector using weight.
func NewWeighted[G, S any](weight Weight[S]) Weighted[G, S] {
	return Weighted[G, S]{weight: weight}
}

// Select builds the cumulative table for pop and draws once from it.
// Use Prepare to amortise the table over many selections.
func (w Weighted[G, S]) Select(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error) {
	table, err := w.table(pop)
	if err != nil {
		return m.Individual[G, S]{}, err
	}

	return table.Select(pop, rng)
}

// Prepare builds the cumulative weight table for pop once.
func (w Weighted[G, S]) Prepare(pop m.Population[G, S]) (Selector[G, S], error) {
	return w.table(pop)
}

func (w Weighted[G, S]) table(pop m.Population[G, S]) (*cumulativeTable[G, S], error) {
	if pop.IsEmpty() {
		return nil, ErrEmptyPopulation
	}

	cumulative := make([]float64, pop.Size())

	var total float64

	for i, ind := range pop.All() {
		weight := w.weight(ind.Score())
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return nil, fmt.Errorf("%w: individual %d has weight %v", ErrNoViableCandidates, i, weight)
		}

		total += weight
		cumulative[i] = total
	}

	if total <= 0 || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total weight is %v", ErrNoViableCandidates, total)
	}

	return &cumulativeTable[G, S]{cumulative: cumulative, size: pop.Size()}, nil
}

// cumulativeTable is a Weighted selector bound to one population.
type cumulativeTable[G, S any] struct {
	cumulative []float64
	size       int
}

// Select draws u in [0, total) and returns the first slot whose running
// total exceeds u, so zero-weight slots are never returned.
func (t *cumulativeTable[G, S]) Select(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error) {
	if pop.Size() != t.size {
		return m.Individual[G, S]{}, fmt.Errorf("weighted table built for %d individuals, got %d", t.size, pop.Size())
	}

	total := t.cumulative[len(t.cumulative)-1]
	u := rng.Float64() * total

	i := sort.Search(len(t.cumulative), func(i int) bool { return t.cumulative[i] > u })
	if i == len(t.cumulative) {
		// u rounded up to total; fall back to the last positive slot
		i = sort.SearchFloat64s(t.cumulative, total)
	}

	return pop.At(i), nil
}
