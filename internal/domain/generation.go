package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	m "github.com/mouse-blink/evolve/internal/model"
)

// Pipeline names the operators used to turn a population into children.
type Pipeline[G, S any] struct {
	// Selector picks each parent from the frozen parent population.
	Selector Selector[G, S]
	// Parents is the number of parents per child. Zero means one.
	Parents int
	// Recombinator merges the parent genomes. Required when Parents > 1.
	Recombinator Recombinator[G]
	// Mutator is applied to the (recombined) genome. Optional.
	Mutator Mutator[G]
	// Scorer evaluates the child genome.
	Scorer Scorer[G, S]
}

// Validate reports whether the pipeline can make children.
func (p *Pipeline[G, S]) Validate() error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil pipeline", ErrInvalidPipeline)
	case p.Selector == nil:
		return fmt.Errorf("%w: missing selector", ErrInvalidPipeline)
	case p.Scorer == nil:
		return fmt.Errorf("%w: missing scorer", ErrInvalidPipeline)
	case p.Parents < 0:
		return fmt.Errorf("%w: negative parent count %d", ErrInvalidPipeline, p.Parents)
	case p.parents() > 1 && p.Recombinator == nil:
		return fmt.Errorf("%w: %d parents need a recombinator", ErrInvalidPipeline, p.parents())
	}

	return nil
}

func (p *Pipeline[G, S]) parents() int {
	return max(p.Parents, 1)
}

// childMaker composes select -> vary -> score into a single operator.
func (p *Pipeline[G, S]) childMaker(selector Selector[G, S]) Operator[m.Population[G, S], m.Individual[G, S]] {
	selectParents := staged[m.Population[G, S], []G](
		Then[m.Population[G, S], []m.Individual[G, S], []G](
			Repeat[m.Population[G, S], m.Individual[G, S]](Select(selector), p.parents()),
			Map[m.Individual[G, S], G](GenomeOf[G, S]{}),
		),
		StageSelection,
	)

	var recombine Operator[[]G, G] = OperatorFunc[[]G, G](firstGenome[G])
	if p.Recombinator != nil {
		recombine = p.Recombinator
	}

	var mutate Operator[G, G] = Identity[G]{}
	if p.Mutator != nil {
		mutate = p.Mutator
	}

	vary := staged[[]G, G](Then[[]G, G, G](recombine, mutate), StageVariation)

	evaluate := Then[G, Pair[G, S], m.Individual[G, S]](
		And[G, G, S](Identity[G]{}, staged[G, S](p.Scorer, StageScoring)),
		OperatorFunc[Pair[G, S], m.Individual[G, S]](toIndividual[G, S]),
	)

	return Then[m.Population[G, S], G, m.Individual[G, S]](
		Then[m.Population[G, S], []G, G](selectParents, vary),
		evaluate,
	)
}

func firstGenome[G any](genomes []G, _ *rand.Rand) (G, error) {
	if len(genomes) == 0 {
		var zero G
		return zero, fmt.Errorf("no parent genomes")
	}

	return genomes[0], nil
}

func toIndividual[G, S any](p Pair[G, S], _ *rand.Rand) (m.Individual[G, S], error) {
	return m.NewIndividual(p.First, p.Second), nil
}

// stagedOperator tags errors from the wrapped operator with a stage.
type stagedOperator[In, Out any] struct {
	op    Operator[In, Out]
	stage Stage
}

func staged[In, Out any](op Operator[In, Out], stage Stage) stagedOperator[In, Out] {
	return stagedOperator[In, Out]{op: op, stage: stage}
}

func (s stagedOperator[In, Out]) Apply(in In, rng *rand.Rand) (Out, error) {
	out, err := s.op.Apply(in, rng)
	if err != nil {
		return out, &StageError{Stage: s.stage, Err: err}
	}

	return out, nil
}

// Config holds the engine parameters of a run.
type Config struct {
	// ChildCount is the size of the next population. Zero means the size of
	// the current population.
	ChildCount int
	// Workers bounds the number of concurrent child cycles. Zero means
	// GOMAXPROCS; one runs the cycles serially.
	Workers int
	// Seed is the run seed from which every per-child random source is derived.
	Seed uint64
	// Retries is how many more attempts a failing child cycle gets, each with
	// a fresh random stream. Zero fails the advance on the first error.
	Retries int
}

type generationOptions struct {
	config Config
	logger *slog.Logger
}

// GenerationOption is a functional option for NewGeneration.
type GenerationOption func(*generationOptions)

// WithConfig sets the engine parameters.
func WithConfig(config Config) GenerationOption {
	return func(o *generationOptions) {
		o.config = config
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *slog.Logger) GenerationOption {
	return func(o *generationOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Generation is a scored population together with the pipeline that makes
// the next one. A Generation is never modified; Advance returns a new one.
type Generation[G, S any] struct {
	number     int
	population m.Population[G, S]
	pipeline   *Pipeline[G, S]
	config     Config
	logger     *slog.Logger
}

// NewGeneration creates generation zero from a scored population.
func NewGeneration[G, S any](pop m.Population[G, S], pipeline *Pipeline[G, S], opts ...GenerationOption) (*Generation[G, S], error) {
	if pop.IsEmpty() {
		return nil, ErrEmptyPopulation
	}

	if err := pipeline.Validate(); err != nil {
		return nil, err
	}

	o := generationOptions{logger: slog.Default().With("component", "generation")}
	for _, opt := range opts {
		opt(&o)
	}

	if o.config.ChildCount < 0 || o.config.Workers < 0 || o.config.Retries < 0 {
		return nil, fmt.Errorf("child count, workers and retries must not be negative: %+v", o.config)
	}

	return &Generation[G, S]{
		population: pop,
		pipeline:   pipeline,
		config:     o.config,
		logger:     o.logger,
	}, nil
}

// Number returns how many advances separate this generation from the first.
func (g *Generation[G, S]) Number() int { return g.number }

// Population returns the generation's population.
func (g *Generation[G, S]) Population() m.Population[G, S] { return g.population }

// Pipeline returns the pipeline shared by every generation of the run.
func (g *Generation[G, S]) Pipeline() *Pipeline[G, S] { return g.pipeline }

// Config returns the engine parameters.
func (g *Generation[G, S]) Config() Config { return g.config }

// Advance builds the next generation. Every child is made from the current,
// unchanged population with its own random source, so the result depends
// only on the seed and not on the number of workers. The first failure
// stops dispatching further children and is returned; the receiver stays
// valid either way.
func (g *Generation[G, S]) Advance(ctx context.Context) (*Generation[G, S], error) {
	start := time.Now()

	maker, err := g.maker()
	if err != nil {
		g.logger.Warn("advance failed", "generation", g.number, "error", err)
		return nil, err
	}

	count := g.childCount()
	workers := g.workers(count)
	children := make([]m.Individual[G, S], count)

	if workers == 1 {
		err = g.makeSerial(ctx, maker, children)
	} else {
		err = g.makeParallel(ctx, maker, children, workers)
	}

	if err != nil {
		g.logger.Warn("advance failed", "generation", g.number, "error", err)
		return nil, err
	}

	next := g.next(children)

	g.logger.Debug("generation advanced",
		"generation", next.number,
		"children", count,
		"workers", workers,
		"duration", time.Since(start),
	)

	return next, nil
}

// AdvanceSlot builds only the child for slot. Attempt 0 uses the random
// stream of Advance's first try at that slot, and each later attempt gets its
// own stream, so a driver can retry the slot of a ChildError with attempt
// ChildError.Attempt+1 and collect the children for Next.
func (g *Generation[G, S]) AdvanceSlot(ctx context.Context, slot, attempt int) (m.Individual[G, S], error) {
	if err := ctx.Err(); err != nil {
		return m.Individual[G, S]{}, err
	}

	if slot < 0 || slot >= g.childCount() {
		return m.Individual[G, S]{}, fmt.Errorf("slot %d out of range [0, %d)", slot, g.childCount())
	}

	if attempt < 0 {
		return m.Individual[G, S]{}, fmt.Errorf("negative attempt %d", attempt)
	}

	maker, err := g.maker()
	if err != nil {
		return m.Individual[G, S]{}, err
	}

	child, err := maker.Apply(g.population, g.rng(slot, attempt))
	if err != nil {
		return m.Individual[G, S]{}, &ChildError{Slot: slot, Attempt: attempt, Err: err}
	}

	return child, nil
}

// Next builds the following generation from children made by the caller,
// typically with AdvanceSlot. It expects one child per slot.
func (g *Generation[G, S]) Next(children []m.Individual[G, S]) (*Generation[G, S], error) {
	if len(children) != g.childCount() {
		return nil, fmt.Errorf("%w: %d children for %d slots", ErrInvalidChildren, len(children), g.childCount())
	}

	return g.next(slices.Clone(children)), nil
}

func (g *Generation[G, S]) next(children []m.Individual[G, S]) *Generation[G, S] {
	return &Generation[G, S]{
		number:     g.number + 1,
		population: m.NewPopulation(children),
		pipeline:   g.pipeline,
		config:     g.config,
		logger:     g.logger,
	}
}

// makeChild runs the cycle for slot, retrying up to Config.Retries times.
func (g *Generation[G, S]) makeChild(ctx context.Context, maker Operator[m.Population[G, S], m.Individual[G, S]], slot int) (m.Individual[G, S], error) {
	var err error

	for attempt := 0; attempt <= g.config.Retries; attempt++ {
		if attempt > 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return m.Individual[G, S]{}, ctxErr
			}

			g.logger.Debug("retrying child", "generation", g.number, "slot", slot, "attempt", attempt, "error", err)
		}

		var child m.Individual[G, S]

		child, err = maker.Apply(g.population, g.rng(slot, attempt))
		if err == nil {
			return child, nil
		}

		err = &ChildError{Slot: slot, Attempt: attempt, Err: err}
	}

	return m.Individual[G, S]{}, err
}

func (g *Generation[G, S]) maker() (Operator[m.Population[G, S], m.Individual[G, S]], error) {
	selector, err := Prepare(g.pipeline.Selector, g.population)
	if err != nil {
		return nil, fmt.Errorf("prepare selector: %w", &StageError{Stage: StageSelection, Err: err})
	}

	return g.pipeline.childMaker(selector), nil
}

func (g *Generation[G, S]) makeSerial(ctx context.Context, maker Operator[m.Population[G, S], m.Individual[G, S]], children []m.Individual[G, S]) error {
	for slot := range children {
		if err := ctx.Err(); err != nil {
			return err
		}

		child, err := g.makeChild(ctx, maker, slot)
		if err != nil {
			return err
		}

		children[slot] = child
	}

	return nil
}

func (g *Generation[G, S]) makeParallel(ctx context.Context, maker Operator[m.Population[G, S], m.Individual[G, S]], children []m.Individual[G, S], workers int) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for slot := range children {
		if egCtx.Err() != nil {
			break
		}

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			child, err := g.makeChild(egCtx, maker, slot)
			if err != nil {
				return err
			}

			children[slot] = child

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

func (g *Generation[G, S]) childCount() int {
	if g.config.ChildCount > 0 {
		return g.config.ChildCount
	}

	return g.population.Size()
}

func (g *Generation[G, S]) workers(count int) int {
	workers := g.config.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return max(min(workers, count), 1)
}

// attemptMix spreads attempt numbers across the seed space.
const attemptMix = 0x9e3779b97f4a7c15

// rng derives the random source of one child cycle from the run seed, the
// generation number, the slot and the attempt.
func (g *Generation[G, S]) rng(slot, attempt int) *rand.Rand {
	stream := uint64(g.number)<<32 | uint64(uint32(slot))
	return rand.New(rand.NewPCG(g.config.Seed^uint64(attempt)*attemptMix, stream))
}
