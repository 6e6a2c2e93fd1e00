package model

import (
	"fmt"
	"iter"
	"slices"
)

// Individual pairs a genome with its evaluated score.
type Individual[G, S any] struct {
	genome G
	score  S
}

// NewIndividual creates an Individual. It is never modified afterwards.
func NewIndividual[G, S any](genome G, score S) Individual[G, S] {
	return Individual[G, S]{genome: genome, score: score}
}

// Genome returns the individual's genome.
func (i Individual[G, S]) Genome() G { return i.genome }

// Score returns the individual's score.
func (i Individual[G, S]) Score() S { return i.score }

func (i Individual[G, S]) String() string {
	return fmt.Sprintf("[%v] %v", i.genome, i.score)
}

// Population is an ordered collection of individuals.
type Population[G, S any] struct {
	members []Individual[G, S]
}

// NewPopulation copies members into a new Population.
func NewPopulation[G, S any](members []Individual[G, S]) Population[G, S] {
	return Population[G, S]{members: slices.Clone(members)}
}

// Size returns the number of individuals.
func (p Population[G, S]) Size() int { return len(p.members) }

// IsEmpty reports whether the population holds no individuals.
func (p Population[G, S]) IsEmpty() bool { return len(p.members) == 0 }

// At returns the individual in slot i.
func (p Population[G, S]) At(i int) Individual[G, S] { return p.members[i] }

// Members returns a copy of the individuals.
func (p Population[G, S]) Members() []Individual[G, S] { return slices.Clone(p.members) }

// All iterates over the individuals in order.
func (p Population[G, S]) All() iter.Seq2[int, Individual[G, S]] {
	return func(yield func(int, Individual[G, S]) bool) {
		for i, ind := range p.members {
			if !yield(i, ind) {
				return
			}
		}
	}
}
