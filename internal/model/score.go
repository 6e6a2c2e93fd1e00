// Package model defines the data structures evolved and compared by the engine.
package model

import (
	"cmp"
	"fmt"
	"math"
)

// Number is the set of scalar types a Score or Error can wrap. Unsigned
// types are excluded so that Negate is always defined.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Result is a single comparable performance value, such as the outcome of one
// test case.
type Result[R any] interface {
	// Compare returns a positive number when the receiver is better than
	// other, a negative number when it is worse and zero when they tie.
	Compare(other R) int
	// Add combines two results of the same kind, used to derive totals.
	Add(other R) R
	// Float returns the wrapped value as a float64.
	Float() float64
}

// Distance is the absolute difference between the raw values of two results.
func Distance[R Result[R]](a, b R) float64 {
	return math.Abs(a.Float() - b.Float())
}

// Score wraps a value where larger is better.
type Score[T Number] struct {
	value T
}

// NewScore wraps value as a Score.
func NewScore[T Number](value T) Score[T] {
	return Score[T]{value: value}
}

// Value returns the wrapped value.
func (s Score[T]) Value() T { return s.value }

// Float returns the wrapped value as a float64.
func (s Score[T]) Float() float64 { return float64(s.value) }

// Compare ranks larger scores as better.
func (s Score[T]) Compare(other Score[T]) int {
	return cmp.Compare(s.value, other.value)
}

// Add returns the sum of two scores.
func (s Score[T]) Add(other Score[T]) Score[T] {
	return Score[T]{value: s.value + other.value}
}

// Negate converts a score into the error that ranks identically.
func (s Score[T]) Negate() Error[T] {
	return Error[T]{value: -s.value}
}

func (s Score[T]) String() string {
	return fmt.Sprintf("Score(%v)", s.value)
}

// Error wraps a value where smaller is better.
type Error[T Number] struct {
	value T
}

// NewError wraps value as an Error.
func NewError[T Number](value T) Error[T] {
	return Error[T]{value: value}
}

// Value returns the wrapped value.
func (e Error[T]) Value() T { return e.value }

// Float returns the wrapped value as a float64.
func (e Error[T]) Float() float64 { return float64(e.value) }

// Compare ranks smaller errors as better.
func (e Error[T]) Compare(other Error[T]) int {
	return cmp.Compare(other.value, e.value)
}

// Add returns the sum of two errors.
func (e Error[T]) Add(other Error[T]) Error[T] {
	return Error[T]{value: e.value + other.value}
}

// Negate converts an error into the score that ranks identically.
func (e Error[T]) Negate() Score[T] {
	return Score[T]{value: -e.value}
}

func (e Error[T]) String() string {
	return fmt.Sprintf("Error(%v)", e.value)
}
