package domain

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/evolve/internal/domain/mocks"
	m "github.com/mouse-blink/evolve/internal/model"
)

type intPop = m.Population[int, m.Score[int]]

func identityScore(g int, _ *rand.Rand) (m.Score[int], error) { return m.NewScore(g), nil }

func jitter(g int, rng *rand.Rand) (int, error) { return g + rng.IntN(10), nil }

func intPopulation(genomes ...int) intPop {
	members := make([]m.Individual[int, m.Score[int]], len(genomes))
	for i, g := range genomes {
		members[i] = m.NewIndividual(g, m.NewScore(g))
	}

	return m.NewPopulation(members)
}

func testPipeline() *Pipeline[int, m.Score[int]] {
	return &Pipeline[int, m.Score[int]]{
		Selector: Random[int, m.Score[int]]{},
		Mutator:  OperatorFunc[int, int](jitter),
		Scorer:   OperatorFunc[int, m.Score[int]](identityScore),
	}
}

func genomes(pop intPop) []int {
	out := make([]int, pop.Size())
	for i, ind := range pop.All() {
		out[i] = ind.Genome()
	}

	return out
}

func newTestGeneration(t *testing.T, pop intPop, pipeline *Pipeline[int, m.Score[int]], config Config) *Generation[int, m.Score[int]] {
	t.Helper()

	gen, err := NewGeneration(pop, pipeline, WithConfig(config))
	require.NoError(t, err)

	return gen
}

func TestAdvance_KeepsSizeAndParent(t *testing.T) {
	// Arrange
	pop := intPopulation(1, 2, 3, 4, 5, 6, 7, 8)
	gen := newTestGeneration(t, pop, testPipeline(), Config{Seed: 42})
	before := genomes(gen.Population())

	// Act
	next, err := gen.Advance(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 8, next.Population().Size())
	assert.Equal(t, 1, next.Number())
	assert.Equal(t, 0, gen.Number())
	assert.Equal(t, before, genomes(gen.Population()))
	assert.Same(t, gen.Pipeline(), next.Pipeline())
	assert.Equal(t, gen.Config(), next.Config())

	for _, ind := range next.Population().All() {
		assert.Equal(t, ind.Genome(), ind.Score().Value(), "child is scored from its own genome")
	}
}

func TestAdvance_ChildCount(t *testing.T) {
	gen := newTestGeneration(t, intPopulation(1, 2, 3), testPipeline(), Config{ChildCount: 10, Seed: 1})

	next, err := gen.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, next.Population().Size())
}

func TestAdvance_ReproducibleAcrossWorkerCounts(t *testing.T) {
	pop := intPopulation(0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110)

	run := func(workers int) [][]int {
		gen := newTestGeneration(t, pop, testPipeline(), Config{Workers: workers, Seed: 7})

		var history [][]int
		for range 4 {
			var err error

			gen, err = gen.Advance(context.Background())
			require.NoError(t, err)

			history = append(history, genomes(gen.Population()))
		}

		return history
	}

	serial := run(1)
	assert.Equal(t, serial, run(3))
	assert.Equal(t, serial, run(16))
	assert.Equal(t, serial, run(0))
}

func TestAdvance_SeedChangesOutcome(t *testing.T) {
	pop := intPopulation(0, 100, 200, 300, 400, 500, 600, 700)

	a, err := newTestGeneration(t, pop, testPipeline(), Config{Seed: 1}).Advance(context.Background())
	require.NoError(t, err)

	b, err := newTestGeneration(t, pop, testPipeline(), Config{Seed: 2}).Advance(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, genomes(a.Population()), genomes(b.Population()))
}

func TestAdvance_Recombination(t *testing.T) {
	recombinator := mocks.NewMockOperator[[]int, int](t)
	recombinator.EXPECT().
		Apply(mock.MatchedBy(func(parents []int) bool { return len(parents) == 2 }), mock.Anything).
		RunAndReturn(func(parents []int, _ *rand.Rand) (int, error) { return parents[0] + parents[1], nil }).
		Times(4)

	pipeline := &Pipeline[int, m.Score[int]]{
		Selector:     Random[int, m.Score[int]]{},
		Parents:      2,
		Recombinator: recombinator,
		Scorer:       OperatorFunc[int, m.Score[int]](identityScore),
	}

	next, err := newTestGeneration(t, intPopulation(1, 1, 1, 1), pipeline, Config{Workers: 2}).Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2, 2}, genomes(next.Population()))
}

func TestAdvance_ErrorClassification(t *testing.T) {
	boom := errors.New("boom")
	fail := func(int, *rand.Rand) (int, error) { return 0, boom }

	tooLarge, err := NewTournament[int](10, func(a, b m.Score[int]) int { return a.Compare(b) })
	require.NoError(t, err)

	tests := []struct {
		name     string
		pipeline *Pipeline[int, m.Score[int]]
		stage    error
	}{
		{
			name: "scorer",
			pipeline: &Pipeline[int, m.Score[int]]{
				Selector: Random[int, m.Score[int]]{},
				Scorer: OperatorFunc[int, m.Score[int]](func(int, *rand.Rand) (m.Score[int], error) {
					return m.Score[int]{}, boom
				}),
			},
			stage: ErrScoring,
		},
		{
			name: "mutator",
			pipeline: &Pipeline[int, m.Score[int]]{
				Selector: Random[int, m.Score[int]]{},
				Mutator:  OperatorFunc[int, int](fail),
				Scorer:   OperatorFunc[int, m.Score[int]](identityScore),
			},
			stage: ErrVariation,
		},
		{
			name: "selector",
			pipeline: &Pipeline[int, m.Score[int]]{
				Selector: tooLarge,
				Scorer:   OperatorFunc[int, m.Score[int]](identityScore),
			},
			stage: ErrSelection,
		},
		{
			name: "prepare",
			pipeline: &Pipeline[int, m.Score[int]]{
				Selector: NewWeighted[int](func(m.Score[int]) float64 { return -1 }),
				Scorer:   OperatorFunc[int, m.Score[int]](identityScore),
			},
			stage: ErrSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, workers := range []int{1, 4} {
				gen := newTestGeneration(t, intPopulation(1, 2, 3, 4), tt.pipeline, Config{Workers: workers})

				next, err := gen.Advance(context.Background())

				require.Error(t, err)
				assert.Nil(t, next)
				assert.ErrorIs(t, err, tt.stage)

				for _, other := range []error{ErrScoring, ErrVariation, ErrSelection} {
					if other != tt.stage {
						assert.NotErrorIs(t, err, other)
					}
				}

				// the receiver is still usable
				assert.Equal(t, 4, gen.Population().Size())
			}
		})
	}
}

func TestAdvance_ChildErrorKeepsCause(t *testing.T) {
	boom := errors.New("boom")
	pipeline := &Pipeline[int, m.Score[int]]{
		Selector: NewBest[int](func(a, b m.Score[int]) int { return a.Compare(b) }),
		Scorer: OperatorFunc[int, m.Score[int]](func(int, *rand.Rand) (m.Score[int], error) {
			return m.Score[int]{}, boom
		}),
	}

	_, err := newTestGeneration(t, intPopulation(5), pipeline, Config{Workers: 1}).Advance(context.Background())

	var childErr *ChildError
	require.ErrorAs(t, err, &childErr)
	assert.Equal(t, 0, childErr.Slot)
	assert.ErrorIs(t, err, boom)

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageScoring, stage)
}

func TestAdvance_FailFast(t *testing.T) {
	var calls atomic.Int64

	pipeline := &Pipeline[int, m.Score[int]]{
		Selector: Random[int, m.Score[int]]{},
		Scorer: OperatorFunc[int, m.Score[int]](func(int, *rand.Rand) (m.Score[int], error) {
			calls.Add(1)
			return m.Score[int]{}, errors.New("always")
		}),
	}

	_, err := newTestGeneration(t, intPopulation(1, 2), pipeline, Config{ChildCount: 1000, Workers: 2}).Advance(context.Background())

	require.ErrorIs(t, err, ErrScoring)
	assert.Less(t, calls.Load(), int64(100))
}

func TestAdvance_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := newTestGeneration(t, intPopulation(1, 2, 3), testPipeline(), Config{Workers: workers}).Advance(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestAdvanceSlot_MatchesAdvance(t *testing.T) {
	gen := newTestGeneration(t, intPopulation(3, 6, 9, 12, 15), testPipeline(), Config{Seed: 99, Workers: 3})

	next, err := gen.Advance(context.Background())
	require.NoError(t, err)

	for slot := range next.Population().Size() {
		child, err := gen.AdvanceSlot(context.Background(), slot, 0)
		require.NoError(t, err)
		assert.Equal(t, next.Population().At(slot).Genome(), child.Genome(), "slot %d", slot)
	}

	_, err = gen.AdvanceSlot(context.Background(), 5, 0)
	assert.Error(t, err)

	_, err = gen.AdvanceSlot(context.Background(), 0, -1)
	assert.Error(t, err)
}

var errFlaky = errors.New("flaky evaluation")

// flakyScore fails on roughly one draw in four.
func flakyScore(g int, rng *rand.Rand) (m.Score[int], error) {
	if rng.IntN(4) == 0 {
		return m.Score[int]{}, errFlaky
	}

	return m.NewScore(g), nil
}

func flakyPipeline() *Pipeline[int, m.Score[int]] {
	pipeline := testPipeline()
	pipeline.Scorer = OperatorFunc[int, m.Score[int]](flakyScore)

	return pipeline
}

// retrySlots rebuilds every slot, moving to the next attempt until the slot succeeds.
func retrySlots(t *testing.T, gen *Generation[int, m.Score[int]], slots int) ([]m.Individual[int, m.Score[int]], int) {
	t.Helper()

	children := make([]m.Individual[int, m.Score[int]], slots)
	retried := 0

	for slot := range slots {
		for attempt := 0; ; attempt++ {
			require.Less(t, attempt, 50, "slot %d never succeeded", slot)

			child, err := gen.AdvanceSlot(context.Background(), slot, attempt)
			if err == nil {
				children[slot] = child
				break
			}

			require.ErrorIs(t, err, errFlaky)
			retried++
		}
	}

	return children, retried
}

func TestAdvanceSlot_RetryCompletesFailedGeneration(t *testing.T) {
	// Arrange
	const slots = 64
	gen := newTestGeneration(t, intPopulation(1, 2, 3, 4), flakyPipeline(), Config{Seed: 3, Workers: 1, ChildCount: slots})

	_, advanceErr := gen.Advance(context.Background())

	var childErr *ChildError
	require.ErrorAs(t, advanceErr, &childErr)
	require.ErrorIs(t, advanceErr, errFlaky)

	// Act
	_, replayErr := gen.AdvanceSlot(context.Background(), childErr.Slot, 0)
	retryChild, retryErr := gen.AdvanceSlot(context.Background(), childErr.Slot, childErr.Attempt+1)
	for attempt := childErr.Attempt + 2; retryErr != nil && attempt < 50; attempt++ {
		retryChild, retryErr = gen.AdvanceSlot(context.Background(), childErr.Slot, attempt)
	}

	children, retried := retrySlots(t, gen, slots)
	next, err := gen.Next(children)

	// Assert
	assert.EqualError(t, replayErr, advanceErr.Error(), "attempt 0 replays the failed cycle")
	require.NoError(t, retryErr, "a later attempt draws a fresh stream")
	assert.Equal(t, children[childErr.Slot].Genome(), retryChild.Genome())
	assert.Positive(t, retried)

	require.NoError(t, err)
	assert.Equal(t, 1, next.Number())
	assert.Equal(t, slots, next.Population().Size())
	assert.Same(t, gen.Pipeline(), next.Pipeline())
}

func TestAdvance_RetriesMatchManualRetry(t *testing.T) {
	const slots = 64
	pop := intPopulation(1, 2, 3, 4)

	manual := newTestGeneration(t, pop, flakyPipeline(), Config{Seed: 3, Workers: 1, ChildCount: slots})
	children, _ := retrySlots(t, manual, slots)
	want, err := manual.Next(children)
	require.NoError(t, err)

	for _, workers := range []int{1, 8} {
		gen := newTestGeneration(t, pop, flakyPipeline(), Config{Seed: 3, Workers: workers, ChildCount: slots, Retries: 50})

		next, err := gen.Advance(context.Background())
		require.NoError(t, err, "workers %d", workers)
		assert.Equal(t, genomes(want.Population()), genomes(next.Population()), "workers %d", workers)
	}
}

func TestAdvance_RetriesExhausted(t *testing.T) {
	pipeline := &Pipeline[int, m.Score[int]]{
		Selector: Random[int, m.Score[int]]{},
		Scorer: OperatorFunc[int, m.Score[int]](func(int, *rand.Rand) (m.Score[int], error) {
			return m.Score[int]{}, errFlaky
		}),
	}

	_, err := newTestGeneration(t, intPopulation(1), pipeline, Config{Workers: 1, Retries: 2}).Advance(context.Background())

	var childErr *ChildError
	require.ErrorAs(t, err, &childErr)
	assert.Equal(t, 2, childErr.Attempt)
	assert.ErrorIs(t, err, ErrScoring)
	assert.Contains(t, err.Error(), "child 0 (attempt 2)")
}

func TestNext_RejectsWrongChildCount(t *testing.T) {
	gen := newTestGeneration(t, intPopulation(1, 2, 3), testPipeline(), Config{})

	_, err := gen.Next(intPopulation(1, 2).Members())
	assert.ErrorIs(t, err, ErrInvalidChildren)

	next, err := gen.Next(intPopulation(7, 8, 9).Members())
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, genomes(next.Population()))
	assert.Equal(t, 1, next.Number())
}

func TestNewGeneration_Validation(t *testing.T) {
	_, err := NewGeneration(intPopulation(), testPipeline())
	assert.ErrorIs(t, err, ErrEmptyPopulation)

	_, err = NewGeneration[int, m.Score[int]](intPopulation(1), nil)
	assert.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = NewGeneration(intPopulation(1), testPipeline(), WithConfig(Config{Retries: -1}))
	assert.Error(t, err)

	_, err = NewGeneration(intPopulation(1), &Pipeline[int, m.Score[int]]{Selector: Random[int, m.Score[int]]{}})
	assert.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = NewGeneration(intPopulation(1), &Pipeline[int, m.Score[int]]{
		Selector: Random[int, m.Score[int]]{},
		Parents:  2,
		Scorer:   OperatorFunc[int, m.Score[int]](identityScore),
	})
	assert.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = NewGeneration(intPopulation(1), testPipeline(), WithConfig(Config{Workers: -1}))
	assert.Error(t, err)
}

func TestAdvance_LogsAtDebug(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gen, err := NewGeneration(intPopulation(1, 2), testPipeline(), WithLogger(logger))
	require.NoError(t, err)

	_, err = gen.Advance(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "generation advanced")
	assert.Contains(t, buf.String(), "generation=1")
}
