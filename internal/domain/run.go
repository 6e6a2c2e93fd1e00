package domain

import (
	"context"
)

// Termination decides whether a run stops at gen.
type Termination[G, S any] func(gen *Generation[G, S]) bool

// MaxGenerations stops once n advances have been made.
func MaxGenerations[G, S any](n int) Termination[G, S] {
	return func(gen *Generation[G, S]) bool {
		return gen.Number() >= n
	}
}

// Target stops once some individual's value reaches goal.
func Target[G, S any](value func(S) float64, goal float64) Termination[G, S] {
	return func(gen *Generation[G, S]) bool {
		for _, ind := range gen.Population().All() {
			if value(ind.Score()) >= goal {
				return true
			}
		}

		return false
	}
}

// AnyOf stops as soon as one of the predicates does.
func AnyOf[G, S any](predicates ...Termination[G, S]) Termination[G, S] {
	return func(gen *Generation[G, S]) bool {
		for _, stop := range predicates {
			if stop(gen) {
				return true
			}
		}

		return false
	}
}

// Run advances start until stop holds, calling observe after each successful
// advance. It returns the last good generation, together with the error that
// ended the run early if there was one.
func Run[G, S any](ctx context.Context, start *Generation[G, S], stop Termination[G, S], observe func(*Generation[G, S])) (*Generation[G, S], error) {
	current := start

	for !stop(current) {
		next, err := current.Advance(ctx)
		if err != nil {
			return current, err
		}

		current = next

		if observe != nil {
			observe(current)
		}
	}

	return current, nil
}
