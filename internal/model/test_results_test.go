package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestResults_SumTotal(t *testing.T) {
	tr := ErrorsOf(1, 2, 3)

	total, ok := tr.Total()
	require.True(t, ok)
	assert.Equal(t, NewError(6), total)
	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, NewError(2), tr.At(1))
}

func TestNewTestResults_Empty(t *testing.T) {
	tr := ScoresOf[int]()

	_, ok := tr.Total()
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, "Total: N/A (no cases)", tr.String())
}

func TestNewTestResults_CopiesInput(t *testing.T) {
	raw := []Score[int]{NewScore(1), NewScore(2)}
	tr := NewTestResults(raw)

	raw[0] = NewScore(100)

	assert.Equal(t, NewScore(1), tr.At(0))

	out := tr.Results()
	out[1] = NewScore(100)

	assert.Equal(t, NewScore(2), tr.At(1))
}

func TestTotalPolicies(t *testing.T) {
	results := []Error[int]{NewError(4), NewError(1), NewError(9)}

	tests := []struct {
		name   string
		policy TotalPolicy[Error[int]]
		want   Error[int]
	}{
		{name: "sum", policy: SumTotal[Error[int]], want: NewError(14)},
		{name: "best", policy: BestTotal[Error[int]], want: NewError(1)},
		{name: "worst", policy: WorstTotal[Error[int]], want: NewError(9)},
		{name: "nil falls back to sum", policy: nil, want: NewError(14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTestResultsWithTotal(results, tt.policy)

			total, ok := tr.Total()
			require.True(t, ok)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestTestResults_Replace(t *testing.T) {
	tr := ScoresOf(1, 2, 3)

	next := tr.Replace(0, NewScore(10))

	total, _ := next.Total()
	assert.Equal(t, NewScore(15), total)
	assert.Equal(t, NewScore(10), next.At(0))

	// original untouched
	orig, _ := tr.Total()
	assert.Equal(t, NewScore(6), orig)
	assert.Equal(t, NewScore(1), tr.At(0))
}

func TestTestResults_ReplaceKeepsPolicy(t *testing.T) {
	tr := NewTestResultsWithTotal([]Score[int]{NewScore(1), NewScore(2)}, BestTotal[Score[int]])

	total, _ := tr.Replace(1, NewScore(0)).Total()
	assert.Equal(t, NewScore(1), total)
}

func TestTestResults_Compare(t *testing.T) {
	low := ErrorsOf(0, 1)
	high := ErrorsOf(5, 5)
	empty := ErrorsOf[int]()

	assert.Positive(t, low.Compare(high))
	assert.Negative(t, high.Compare(low))
	assert.Zero(t, low.Compare(ErrorsOf(1, 0)))
	assert.Negative(t, empty.Compare(high))
	assert.Positive(t, high.Compare(empty))
	assert.Zero(t, empty.Compare(ErrorsOf[int]()))
	assert.Equal(t, low.Compare(high), CompareTotals(low, high))
}

func TestTestResults_All(t *testing.T) {
	tr := ScoresOf(3, 1, 4)

	var got []int
	for i, r := range tr.All() {
		assert.Equal(t, tr.At(i), r)
		got = append(got, r.Value())
	}

	assert.Equal(t, []int{3, 1, 4}, got)
}

func TestTestResults_String(t *testing.T) {
	assert.Equal(t, "Total: Score(3) over 2 cases", ScoresOf(1, 2).String())
}
