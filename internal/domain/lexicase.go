package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"

	m "github.com/mouse-blink/evolve/internal/model"
)

type lexicaseConfig struct {
	epsilon float64
	mad     bool
}

// LexicaseOption configures a Lexicase selector.
type LexicaseOption func(*lexicaseConfig)

// WithEpsilon keeps every candidate within epsilon of the best on each case.
func WithEpsilon(epsilon float64) LexicaseOption {
	return func(c *lexicaseConfig) {
		c.epsilon = max(epsilon, 0)
	}
}

// WithMADEpsilon derives a per-case epsilon from the median absolute
// deviation of that case across the population.
func WithMADEpsilon() LexicaseOption {
	return func(c *lexicaseConfig) {
		c.mad = true
	}
}

// Lexicase selects by filtering candidates on the test cases taken one at a
// time in random order.
type Lexicase[G any, R m.Result[R]] struct {
	cfg lexicaseConfig
}

// NewLexicase returns a Lexicase selector.
func NewLexicase[G any, R m.Result[R]](opts ...LexicaseOption) Lexicase[G, R] {
	var cfg lexicaseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return Lexicase[G, R]{cfg: cfg}
}

// Select implements Selector.
func (l Lexicase[G, R]) Select(pop m.Population[G, m.TestResults[R]], rng *rand.Rand) (m.Individual[G, m.TestResults[R]], error) {
	cases, err := caseCount(pop)
	if err != nil {
		return m.Individual[G, m.TestResults[R]]{}, err
	}

	return l.selectShuffled(pop, cases, l.epsilons(pop, cases), rng), nil
}

// SelectOrdered runs lexicase with a fixed case order instead of a random
// one. order must be a permutation of the case indices.
func (l Lexicase[G, R]) SelectOrdered(pop m.Population[G, m.TestResults[R]], order []int, rng *rand.Rand) (m.Individual[G, m.TestResults[R]], error) {
	cases, err := caseCount(pop)
	if err != nil {
		return m.Individual[G, m.TestResults[R]]{}, err
	}

	if err := validateOrder(order, cases); err != nil {
		return m.Individual[G, m.TestResults[R]]{}, err
	}

	return l.filter(pop, order, l.epsilons(pop, cases), rng), nil
}

// Prepare validates case counts and computes epsilons once for pop.
func (l Lexicase[G, R]) Prepare(pop m.Population[G, m.TestResults[R]]) (Selector[G, m.TestResults[R]], error) {
	cases, err := caseCount(pop)
	if err != nil {
		return nil, err
	}

	return &preparedLexicase[G, R]{
		lexicase: l,
		size:     pop.Size(),
		cases:    cases,
		epsilons: l.epsilons(pop, cases),
	}, nil
}

func (l Lexicase[G, R]) selectShuffled(pop m.Population[G, m.TestResults[R]], cases int, epsilons []float64, rng *rand.Rand) m.Individual[G, m.TestResults[R]] {
	buf := getIndexBuffer(cases)
	defer putIndexBuffer(buf)

	order := *buf
	for i := range order {
		order[i] = i
	}

	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	return l.filter(pop, order, epsilons, rng)
}

// filter narrows an index set in place, one case at a time.
func (l Lexicase[G, R]) filter(pop m.Population[G, m.TestResults[R]], order []int, epsilons []float64, rng *rand.Rand) m.Individual[G, m.TestResults[R]] {
	buf := getIndexBuffer(pop.Size())
	defer putIndexBuffer(buf)

	candidates := *buf
	for i := range candidates {
		candidates[i] = i
	}

	for _, c := range order {
		if len(candidates) == 1 {
			break
		}

		best := pop.At(candidates[0]).Score().At(c)
		for _, idx := range candidates[1:] {
			if v := pop.At(idx).Score().At(c); v.Compare(best) > 0 {
				best = v
			}
		}

		tolerance := l.cfg.epsilon
		if epsilons != nil {
			tolerance = epsilons[c]
		}

		kept := 0

		for _, idx := range candidates {
			v := pop.At(idx).Score().At(c)
			if v.Compare(best) == 0 || (tolerance > 0 && m.Distance(v, best) <= tolerance) {
				candidates[kept] = idx
				kept++
			}
		}

		candidates = candidates[:kept]
	}

	return pop.At(candidates[rng.IntN(len(candidates))])
}

// epsilons returns per-case MAD tolerances, or nil when a fixed epsilon applies.
func (l Lexicase[G, R]) epsilons(pop m.Population[G, m.TestResults[R]], cases int) []float64 {
	if !l.cfg.mad {
		return nil
	}

	eps := make([]float64, cases)
	values := make([]float64, pop.Size())

	for c := range cases {
		for i, ind := range pop.All() {
			values[i] = ind.Score().At(c).Float()
		}

		eps[c] = medianAbsoluteDeviation(values)
	}

	return eps
}

// medianAbsoluteDeviation reorders values.
func medianAbsoluteDeviation(values []float64) float64 {
	slices.Sort(values)
	median := stat.Quantile(0.5, stat.Empirical, values, nil)

	for i, v := range values {
		values[i] = math.Abs(v - median)
	}

	slices.Sort(values)

	return stat.Quantile(0.5, stat.Empirical, values, nil)
}

type preparedLexicase[G any, R m.Result[R]] struct {
	lexicase Lexicase[G, R]
	size     int
	cases    int
	epsilons []float64
}

// Select implements Selector for the population the selector was prepared with.
func (p *preparedLexicase[G, R]) Select(pop m.Population[G, m.TestResults[R]], rng *rand.Rand) (m.Individual[G, m.TestResults[R]], error) {
	if pop.Size() != p.size {
		return m.Individual[G, m.TestResults[R]]{}, fmt.Errorf("lexicase prepared for %d individuals, got %d", p.size, pop.Size())
	}

	return p.lexicase.selectShuffled(pop, p.cases, p.epsilons, rng), nil
}

func caseCount[G any, R m.Result[R]](pop m.Population[G, m.TestResults[R]]) (int, error) {
	if pop.IsEmpty() {
		return 0, ErrEmptyPopulation
	}

	cases := pop.At(0).Score().Len()
	for i, ind := range pop.All() {
		if n := ind.Score().Len(); n != cases {
			return 0, fmt.Errorf("%w: individual %d has %d cases, individual 0 has %d", ErrMismatchedCaseCounts, i, n, cases)
		}
	}

	return cases, nil
}

func validateOrder(order []int, cases int) error {
	if len(order) != cases {
		return fmt.Errorf("%w: %d indices for %d cases", ErrInvalidCaseOrder, len(order), cases)
	}

	seen := make([]bool, cases)
	for _, c := range order {
		if c < 0 || c >= cases || seen[c] {
			return fmt.Errorf("%w: index %d", ErrInvalidCaseOrder, c)
		}

		seen[c] = true
	}

	return nil
}
