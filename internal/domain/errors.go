package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyPopulation indicates that selection or advancement was attempted on zero individuals.
var ErrEmptyPopulation = errors.New("empty population")

// ErrNoViableCandidates indicates that weighted selection found no positive, finite weight.
var ErrNoViableCandidates = errors.New("no viable candidates")

// ErrMismatchedCaseCounts indicates that individuals carry test results of differing lengths.
var ErrMismatchedCaseCounts = errors.New("mismatched test case counts")

// ErrInvalidCaseOrder indicates that a lexicase case order is not a permutation of the cases.
var ErrInvalidCaseOrder = errors.New("invalid case order")

// ErrTournamentTooLarge indicates that a tournament needs more individuals than the population holds.
var ErrTournamentTooLarge = errors.New("tournament larger than population")

// ErrInvalidPipeline indicates that a pipeline is missing a required operator.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// ErrInvalidChildren indicates that Next was given the wrong number of children.
var ErrInvalidChildren = errors.New("invalid children")

// ErrSelection classifies failures raised while selecting parents.
var ErrSelection = errors.New("selection failed")

// ErrVariation classifies failures raised by mutators and recombinators.
var ErrVariation = errors.New("variation failed")

// ErrScoring classifies failures raised by scorers.
var ErrScoring = errors.New("scoring failed")

// Stage names the step of child construction that failed.
type Stage string

const (
	// StageSelection is parent selection.
	StageSelection Stage = "selection"
	// StageVariation is recombination and mutation.
	StageVariation Stage = "variation"
	// StageScoring is evaluation of the child genome.
	StageScoring Stage = "scoring"
)

func (s Stage) sentinel() error {
	switch s {
	case StageSelection:
		return ErrSelection
	case StageVariation:
		return ErrVariation
	case StageScoring:
		return ErrScoring
	}

	return nil
}

// StageError tags a collaborator error with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is matches the stage sentinel (ErrSelection, ErrVariation or ErrScoring).
func (e *StageError) Is(target error) bool {
	return target != nil && target == e.Stage.sentinel()
}

// ChildError reports which child slot failed during an advance, and on
// which attempt.
type ChildError struct {
	Slot    int
	Attempt int
	Err     error
}

func (e *ChildError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("child %d (attempt %d): %v", e.Slot, e.Attempt, e.Err)
	}

	return fmt.Sprintf("child %d: %v", e.Slot, e.Err)
}

func (e *ChildError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}

	return "", false
}
