package model

import (
	"fmt"
	"iter"
	"slices"
)

// TotalPolicy derives the aggregate of a non-empty sequence of case results.
type TotalPolicy[R Result[R]] func(results []R) R

// SumTotal adds every case result together.
func SumTotal[R Result[R]](results []R) R {
	total := results[0]
	for _, r := range results[1:] {
		total = total.Add(r)
	}

	return total
}

// BestTotal uses the best case result as the total.
func BestTotal[R Result[R]](results []R) R {
	best := results[0]
	for _, r := range results[1:] {
		if r.Compare(best) > 0 {
			best = r
		}
	}

	return best
}

// WorstTotal uses the worst case result as the total.
func WorstTotal[R Result[R]](results []R) R {
	worst := results[0]
	for _, r := range results[1:] {
		if r.Compare(worst) < 0 {
			worst = r
		}
	}

	return worst
}

// TestResults keeps per-case results distinct, in case order, together with
// a total derived from them.
type TestResults[R Result[R]] struct {
	results  []R
	total    R
	hasTotal bool
	policy   TotalPolicy[R]
}

// NewTestResults copies results and computes their total with SumTotal.
func NewTestResults[R Result[R]](results []R) TestResults[R] {
	return NewTestResultsWithTotal(results, SumTotal[R])
}

// NewTestResultsWithTotal copies results and computes their total with policy.
func NewTestResultsWithTotal[R Result[R]](results []R, policy TotalPolicy[R]) TestResults[R] {
	if policy == nil {
		policy = SumTotal[R]
	}

	tr := TestResults[R]{
		results: slices.Clone(results),
		policy:  policy,
	}
	tr.recompute()

	return tr
}

// ScoresOf builds per-case Score results from raw values.
func ScoresOf[T Number](values ...T) TestResults[Score[T]] {
	results := make([]Score[T], len(values))
	for i, v := range values {
		results[i] = NewScore(v)
	}

	return NewTestResults(results)
}

// ErrorsOf builds per-case Error results from raw values.
func ErrorsOf[T Number](values ...T) TestResults[Error[T]] {
	results := make([]Error[T], len(values))
	for i, v := range values {
		results[i] = NewError(v)
	}

	return NewTestResults(results)
}

func (tr *TestResults[R]) recompute() {
	var zero R

	tr.total, tr.hasTotal = zero, false
	if len(tr.results) == 0 {
		return
	}

	tr.total, tr.hasTotal = tr.policy(tr.results), true
}

// Len returns the number of cases.
func (tr TestResults[R]) Len() int { return len(tr.results) }

// At returns the result of case i.
func (tr TestResults[R]) At(i int) R { return tr.results[i] }

// Results returns a copy of the per-case results.
func (tr TestResults[R]) Results() []R { return slices.Clone(tr.results) }

// All iterates over the cases in order.
func (tr TestResults[R]) All() iter.Seq2[int, R] {
	return func(yield func(int, R) bool) {
		for i, r := range tr.results {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Total returns the aggregate result; ok is false when there are no cases.
func (tr TestResults[R]) Total() (total R, ok bool) {
	return tr.total, tr.hasTotal
}

// Replace returns a copy with case i set to r and the total recomputed.
func (tr TestResults[R]) Replace(i int, r R) TestResults[R] {
	if tr.policy == nil {
		tr.policy = SumTotal[R]
	}

	next := TestResults[R]{
		results: slices.Clone(tr.results),
		policy:  tr.policy,
	}
	next.results[i] = r
	next.recompute()

	return next
}

// Compare ranks two TestResults by total. Results without a total rank
// below results with one.
func (tr TestResults[R]) Compare(other TestResults[R]) int {
	switch {
	case !tr.hasTotal && !other.hasTotal:
		return 0
	case !tr.hasTotal:
		return -1
	case !other.hasTotal:
		return 1
	}

	return tr.total.Compare(other.total)
}

// CompareTotals is Compare as a plain function, handy for selectors.
func CompareTotals[R Result[R]](a, b TestResults[R]) int {
	return a.Compare(b)
}

func (tr TestResults[R]) String() string {
	if !tr.hasTotal {
		return "Total: N/A (no cases)"
	}

	return fmt.Sprintf("Total: %v over %d cases", tr.total, len(tr.results))
}
