package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	m "github.com/mouse-blink/evolve/internal/model"
)

func errorPopulation(values ...int) m.Population[string, m.Error[int]] {
	members := make([]m.Individual[string, m.Error[int]], len(values))
	for i, v := range values {
		members[i] = m.NewIndividual(string(rune('A'+i)), m.NewError(v))
	}

	return m.NewPopulation(members)
}

func inverseError(e m.Error[int]) float64 { return 1 / (1 + e.Float()) }

func TestWeighted_UniformWeightsAreUniform(t *testing.T) {
	// Arrange
	const (
		size  = 5
		draws = 5000
	)

	pop := scoredPopulation(1, 1, 1, 1, 1)
	sel, err := Prepare[string, m.Score[int]](NewWeighted[string](func(m.Score[int]) float64 { return 1 }), pop)
	require.NoError(t, err)

	counts := map[string]float64{}
	rng := newTestRand()

	// Act
	for range draws {
		got, err := sel.Select(pop, rng)
		require.NoError(t, err)

		counts[got.Genome()]++
	}

	// Assert
	expected := float64(draws) / size

	var chi2 float64
	for _, observed := range counts {
		chi2 += (observed - expected) * (observed - expected) / expected
	}

	critical := distuv.ChiSquared{K: size - 1}.Quantile(0.999)
	assert.Len(t, counts, size)
	assert.Less(t, chi2, critical)
}

func TestWeighted_InverseErrorFavoursSmallestError(t *testing.T) {
	pop := errorPopulation(3, 1, 5)
	sel := NewWeighted[string](inverseError)
	rng := newTestRand()
	counts := map[string]int{}

	for range 3000 {
		got, err := sel.Select(pop, rng)
		require.NoError(t, err)

		counts[got.Genome()]++
	}

	assert.Greater(t, counts["B"], counts["A"])
	assert.Greater(t, counts["A"], counts["C"])
	// expected share of B is 0.5 / (0.25 + 0.5 + 1/6)
	assert.InDelta(t, 6.0/11.0, float64(counts["B"])/3000, 0.04)
}

func TestWeighted_ZeroWeightNeverSelected(t *testing.T) {
	pop := scoredPopulation(0, 2, 0, 3)
	sel, err := Prepare[string, m.Score[int]](NewWeighted[string](func(s m.Score[int]) float64 { return s.Float() }), pop)
	require.NoError(t, err)

	rng := newTestRand()
	for range 1000 {
		got, err := sel.Select(pop, rng)
		require.NoError(t, err)
		assert.NotContains(t, []string{"a", "c"}, got.Genome())
	}
}

func TestWeighted_Errors(t *testing.T) {
	tests := []struct {
		name   string
		pop    m.Population[string, m.Score[int]]
		weight Weight[m.Score[int]]
		want   error
	}{
		{
			name:   "empty population",
			pop:    scoredPopulation(),
			weight: func(m.Score[int]) float64 { return 1 },
			want:   ErrEmptyPopulation,
		},
		{
			name:   "all zero",
			pop:    scoredPopulation(1, 2),
			weight: func(m.Score[int]) float64 { return 0 },
			want:   ErrNoViableCandidates,
		},
		{
			name:   "negative weight",
			pop:    scoredPopulation(1, 2),
			weight: func(s m.Score[int]) float64 { return 1.5 - s.Float() },
			want:   ErrNoViableCandidates,
		},
		{
			name:   "NaN weight",
			pop:    scoredPopulation(1),
			weight: func(m.Score[int]) float64 { return math.NaN() },
			want:   ErrNoViableCandidates,
		},
		{
			name:   "infinite weight",
			pop:    scoredPopulation(1),
			weight: func(m.Score[int]) float64 { return math.Inf(1) },
			want:   ErrNoViableCandidates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewWeighted[string](tt.weight)

			_, err := sel.Select(tt.pop, newTestRand())
			require.ErrorIs(t, err, tt.want)

			_, err = sel.Prepare(tt.pop)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWeighted_PreparedRejectsOtherPopulation(t *testing.T) {
	sel, err := NewWeighted[string](func(m.Score[int]) float64 { return 1 }).Prepare(scoredPopulation(1, 2, 3))
	require.NoError(t, err)

	_, err = sel.Select(scoredPopulation(1), newTestRand())
	assert.Error(t, err)
}
