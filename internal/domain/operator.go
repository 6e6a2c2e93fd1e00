// Package domain implements operator composition, selection and the
// generation engine.
package domain

import (
	"fmt"
	"math/rand/v2"
)

// Operator maps an input to an output, possibly consulting rng.
// Operators keep only their construction-time parameters and never hold on
// to rng between calls.
type Operator[In, Out any] interface {
	Apply(in In, rng *rand.Rand) (Out, error)
}

// OperatorFunc adapts a function to the Operator interface.
type OperatorFunc[In, Out any] func(in In, rng *rand.Rand) (Out, error)

// Apply calls f.
func (f OperatorFunc[In, Out]) Apply(in In, rng *rand.Rand) (Out, error) {
	return f(in, rng)
}

// Scorer evaluates a genome.
type Scorer[G, S any] interface {
	Operator[G, S]
}

// Mutator produces a modified copy of a genome.
type Mutator[G any] interface {
	Operator[G, G]
}

// Recombinator produces one child genome from two or more parents.
type Recombinator[G any] interface {
	Operator[[]G, G]
}

// Pair holds the two outputs of an And.
type Pair[A, B any] struct {
	First  A
	Second B
}

// ThenOperator feeds the output of one operator into another.
type ThenOperator[A, B, C any] struct {
	first  Operator[A, B]
	second Operator[B, C]
}

// Then applies first and then second to its output. second is never called
// when first fails.
func Then[A, B, C any](first Operator[A, B], second Operator[B, C]) ThenOperator[A, B, C] {
	return ThenOperator[A, B, C]{first: first, second: second}
}

// Apply implements Operator.
func (t ThenOperator[A, B, C]) Apply(in A, rng *rand.Rand) (C, error) {
	var zero C

	mid, err := t.first.Apply(in, rng)
	if err != nil {
		return zero, err
	}

	return t.second.Apply(mid, rng)
}

// AndOperator applies two operators to the same input.
type AndOperator[In, A, B any] struct {
	f Operator[In, A]
	g Operator[In, B]
}

// And applies f and g to the same input and pairs their outputs.
func And[In, A, B any](f Operator[In, A], g Operator[In, B]) AndOperator[In, A, B] {
	return AndOperator[In, A, B]{f: f, g: g}
}

// Apply implements Operator.
func (a AndOperator[In, A, B]) Apply(in In, rng *rand.Rand) (Pair[A, B], error) {
	first, err := a.f.Apply(in, rng)
	if err != nil {
		return Pair[A, B]{}, err
	}

	second, err := a.g.Apply(in, rng)
	if err != nil {
		return Pair[A, B]{}, err
	}

	return Pair[A, B]{First: first, Second: second}, nil
}

// MapOperator applies an operator to every element of a slice.
type MapOperator[In, Out any] struct {
	f Operator[In, Out]
}

// Map lifts f to work element-wise on slices.
func Map[In, Out any](f Operator[In, Out]) MapOperator[In, Out] {
	return MapOperator[In, Out]{f: f}
}

// Apply implements Operator.
func (m MapOperator[In, Out]) Apply(in []In, rng *rand.Rand) ([]Out, error) {
	out := make([]Out, len(in))

	for i, x := range in {
		y, err := m.f.Apply(x, rng)
		if err != nil {
			return nil, fmt.Errorf("map element %d: %w", i, err)
		}

		out[i] = y
	}

	return out, nil
}

// RepeatOperator applies an operator several times to the same input.
type RepeatOperator[In, Out any] struct {
	f     Operator[In, Out]
	times int
}

// Repeat applies f times times to the same input and collects the outputs.
func Repeat[In, Out any](f Operator[In, Out], times int) RepeatOperator[In, Out] {
	return RepeatOperator[In, Out]{f: f, times: max(times, 0)}
}

// Apply implements Operator.
func (r RepeatOperator[In, Out]) Apply(in In, rng *rand.Rand) ([]Out, error) {
	out := make([]Out, r.times)

	for i := range r.times {
		y, err := r.f.Apply(in, rng)
		if err != nil {
			return nil, err
		}

		out[i] = y
	}

	return out, nil
}

// Identity returns its input unchanged.
type Identity[T any] struct{}

// Apply implements Operator.
func (Identity[T]) Apply(in T, _ *rand.Rand) (T, error) { return in, nil }

// ConstantOperator ignores its input and returns a fixed value.
type ConstantOperator[In, T any] struct {
	value T
}

// Constant returns an operator that always yields value.
func Constant[In, T any](value T) ConstantOperator[In, T] {
	return ConstantOperator[In, T]{value: value}
}

// Apply implements Operator.
func (c ConstantOperator[In, T]) Apply(_ In, _ *rand.Rand) (T, error) { return c.value, nil }
