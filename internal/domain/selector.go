package domain

import (
	"fmt"
	"math/rand/v2"

	m "github.com/mouse-blink/evolve/internal/model"
)

// Selector chooses a parent from a population. Selectors never modify the
// population and are safe for concurrent use.
type Selector[G, S any] interface {
	Select(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error)
}

// Preparer is implemented by selectors that can precompute per-population
// tables. The returned selector is bound to pop and must only be used with it.
type Preparer[G, S any] interface {
	Prepare(pop m.Population[G, S]) (Selector[G, S], error)
}

// Prepare binds selector to pop when it supports preparation and returns it
// unchanged otherwise.
func Prepare[G, S any](selector Selector[G, S], pop m.Population[G, S]) (Selector[G, S], error) {
	if p, ok := selector.(Preparer[G, S]); ok {
		return p.Prepare(pop)
	}

	return selector, nil
}

// SelectOperator adapts a Selector to the Operator interface.
type SelectOperator[G, S any] struct {
	selector Selector[G, S]
}

// Select wraps selector as an Operator over populations.
func Select[G, S any](selector Selector[G, S]) SelectOperator[G, S] {
	return SelectOperator[G, S]{selector: selector}
}

// Apply implements Operator.
func (s SelectOperator[G, S]) Apply(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error) {
	return s.selector.Select(pop, rng)
}

// GenomeOf extracts the genome of an individual.
type GenomeOf[G, S any] struct{}

// Apply implements Operator.
func (GenomeOf[G, S]) Apply(ind m.Individual[G, S], _ *rand.Rand) (G, error) {
	return ind.Genome(), nil
}

// Compare orders two scores; positive means a is better.
type Compare[S any] func(a, b S) int

// Best selects the individual with the best score. Ties go to the earliest.
type Best[G, S any] struct {
	compare Compare[S]
}

// NewBest returns a Best selector ordering scores with compare.
func NewBest[G, S any](compare Compare[S]) Best[G, S] {
	return Best[G, S]{compare: compare}
}

// Select implements Selector.
func (b Best[G, S]) Select(pop m.Population[G, S], _ *rand.Rand) (m.Individual[G, S], error) {
	if pop.IsEmpty() {
		return m.Individual[G, S]{}, ErrEmptyPopulation
	}

	best := pop.At(0)
	for _, ind := range pop.All() {
		if b.compare(ind.Score(), best.Score()) > 0 {
			best = ind
		}
	}

	return best, nil
}

// Worst selects the individual with the worst score. Ties go to the earliest.
type Worst[G, S any] struct {
	compare Compare[S]
}

// NewWorst returns a Worst selector ordering scores with compare.
func NewWorst[G, S any](compare Compare[S]) Worst[G, S] {
	return Worst[G, S]{compare: compare}
}

// Select implements Selector.
func (w Worst[G, S]) Select(pop m.Population[G, S], _ *rand.Rand) (m.Individual[G, S], error) {
	if pop.IsEmpty() {
		return m.Individual[G, S]{}, ErrEmptyPopulation
	}

	worst := pop.At(0)
	for _, ind := range pop.All() {
		if w.compare(ind.Score(), worst.Score()) < 0 {
			worst = ind
		}
	}

	return worst, nil
}

// Random selects an individual uniformly.
type Random[G, S any] struct{}

// Select implements Selector.
func (Random[G, S]) Select(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error) {
	if pop.IsEmpty() {
		return m.Individual[G, S]{}, ErrEmptyPopulation
	}

	return pop.At(rng.IntN(pop.Size())), nil
}

// Tournament samples size distinct individuals and returns the best of them.
type Tournament[G, S any] struct {
	size    int
	compare Compare[S]
}

// NewTournament returns a Tournament selector of the given size.
func NewTournament[G, S any](size int, compare Compare[S]) (Tournament[G, S], error) {
	if size < 1 {
		return Tournament[G, S]{}, fmt.Errorf("tournament size must be positive, got %d", size)
	}

	return Tournament[G, S]{size: size, compare: compare}, nil
}

// Select implements Selector.
func (t Tournament[G, S]) Select(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error) {
	n := pop.Size()
	if n == 0 {
		return m.Individual[G, S]{}, ErrEmptyPopulation
	}

	if t.size > n {
		return m.Individual[G, S]{}, fmt.Errorf("%w: size %d, population %d", ErrTournamentTooLarge, t.size, n)
	}

	// Partial Fisher-Yates over a pooled index buffer.
	buf := getIndexBuffer(n)
	defer putIndexBuffer(buf)

	idx := (*buf)[:n]
	for i := range idx {
		idx[i] = i
	}

	best := -1

	for i := range t.size {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]

		if best < 0 || t.compare(pop.At(idx[i]).Score(), pop.At(best).Score()) > 0 {
			best = idx[i]
		}
	}

	return pop.At(best), nil
}

type weightedSelector[G, S any] struct {
	selector Selector[G, S]
	weight   uint
}

// WeightedSelectors delegates each selection to one of several selectors,
// chosen with probability proportional to its weight.
type WeightedSelectors[G, S any] struct {
	selectors []weightedSelector[G, S]
	total     uint
}

// NewWeightedSelectors starts a mix with a single selector.
func NewWeightedSelectors[G, S any](selector Selector[G, S], weight uint) *WeightedSelectors[G, S] {
	return (&WeightedSelectors[G, S]{}).With(selector, weight)
}

// With adds selector with the given weight and returns the mix.
func (w *WeightedSelectors[G, S]) With(selector Selector[G, S], weight uint) *WeightedSelectors[G, S] {
	w.selectors = append(w.selectors, weightedSelector[G, S]{selector: selector, weight: weight})
	w.total += weight

	return w
}

// Select implements Selector.
func (w *WeightedSelectors[G, S]) Select(pop m.Population[G, S], rng *rand.Rand) (m.Individual[G, S], error) {
	if pop.IsEmpty() {
		return m.Individual[G, S]{}, ErrEmptyPopulation
	}

	if w.total == 0 {
		return m.Individual[G, S]{}, fmt.Errorf("%w: all selector weights are zero", ErrNoViableCandidates)
	}

	draw := rng.UintN(w.total)
	for _, ws := range w.selectors {
		if draw < ws.weight {
			return ws.selector.Select(pop, rng)
		}

		draw -= ws.weight
	}

	// unreachable while total is the sum of the weights
	return m.Individual[G, S]{}, ErrNoViableCandidates
}

// Prepare prepares every child selector that supports it.
func (w *WeightedSelectors[G, S]) Prepare(pop m.Population[G, S]) (Selector[G, S], error) {
	prepared := &WeightedSelectors[G, S]{
		selectors: make([]weightedSelector[G, S], len(w.selectors)),
		total:     w.total,
	}

	for i, ws := range w.selectors {
		s := ws.selector

		if ws.weight > 0 {
			var err error

			s, err = Prepare(s, pop)
			if err != nil {
				return nil, err
			}
		}

		prepared.selectors[i] = weightedSelector[G, S]{selector: s, weight: ws.weight}
	}

	return prepared, nil
}
