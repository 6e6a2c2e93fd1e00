package domain

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	m "github.com/mouse-blink/evolve/internal/model"
)

// Summary describes the spread of one scalar over a population.
type Summary struct {
	Size   int
	Best   float64
	Worst  float64
	Mean   float64
	StdDev float64
}

// Summarize computes a Summary of value over pop. value must rank larger
// numbers as better.
func Summarize[G, S any](pop m.Population[G, S], value func(S) float64) Summary {
	if pop.IsEmpty() {
		return Summary{}
	}

	values := make([]float64, pop.Size())
	for i, ind := range pop.All() {
		values[i] = value(ind.Score())
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}

	return Summary{
		Size:   len(values),
		Best:   floats.Max(values),
		Worst:  floats.Min(values),
		Mean:   mean,
		StdDev: std,
	}
}
