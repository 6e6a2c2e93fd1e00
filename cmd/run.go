package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/evolve/internal/adapter"
	"github.com/mouse-blink/evolve/internal/controller"
	"github.com/mouse-blink/evolve/internal/domain"
	m "github.com/mouse-blink/evolve/internal/model"
)

const runLongDescription = `Run an evolutionary search on a bitstring benchmark.

Problems:
  count-ones  one case per bit, scoring 1 for every set bit
  hiff        hierarchical if-and-only-if, 2n-1 cases
  trap        concatenated deceptive traps, one case per block

Selectors:
  lexicase          filter on the cases in a random order
  epsilon-lexicase  lexicase keeping candidates within --epsilon of the best
                    (0 derives a per-case epsilon from the median absolute deviation)
  tournament        best of --tournament-size random individuals by total
  weighted          fitness-proportional on the total
  mixed             lexicase most of the time, tournament otherwise`

type (
	bitGeneration = domain.Generation[adapter.Bitstring, adapter.Cases]
	bitSelector   = domain.Selector[adapter.Bitstring, adapter.Cases]
)

var (
	runProblemFlag        string
	runBitsFlag           int
	runTrapSizeFlag       int
	runPopulationFlag     int
	runGenerationsFlag    int
	runSelectorFlag       string
	runEpsilonFlag        float64
	runTournamentSizeFlag int
	runMutationRateFlag   float64
	runCrossoverFlag      string
	runParallelFlag       int
	runSeedFlag           uint64
	runStopAtOptimumFlag  bool
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an evolutionary search",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := runOptions{
				problem:        runProblemFlag,
				bits:           runBitsFlag,
				trapSize:       runTrapSizeFlag,
				population:     runPopulationFlag,
				generations:    runGenerationsFlag,
				selector:       runSelectorFlag,
				epsilon:        runEpsilonFlag,
				tournamentSize: runTournamentSizeFlag,
				mutationRate:   runMutationRateFlag,
				crossover:      runCrossoverFlag,
				workers:        runParallelFlag,
				seed:           runSeedFlag,
				stopAtOptimum:  runStopAtOptimumFlag,
			}
			if !cmd.Flags().Changed("seed") {
				opts.seed = rand.Uint64()
			}

			return runEvolution(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&runProblemFlag, "problem", "hiff", "benchmark problem: count-ones, hiff or trap")
	cmd.Flags().IntVar(&runBitsFlag, "bits", 64, "genome length in bits")
	cmd.Flags().IntVar(&runTrapSizeFlag, "trap-size", 4, "block size of the trap problem")
	cmd.Flags().IntVarP(&runPopulationFlag, "population", "n", 200, "population size")
	cmd.Flags().IntVarP(&runGenerationsFlag, "generations", "g", 100, "maximum number of generations")
	cmd.Flags().StringVar(&runSelectorFlag, "selector", "lexicase", "parent selection: lexicase, epsilon-lexicase, tournament, weighted or mixed")
	cmd.Flags().Float64Var(&runEpsilonFlag, "epsilon", 0, "epsilon for epsilon-lexicase (0 derives it per case)")
	cmd.Flags().IntVar(&runTournamentSizeFlag, "tournament-size", 2, "tournament size")
	cmd.Flags().Float64Var(&runMutationRateFlag, "mutation-rate", 0, "per-bit flip probability (0 means one over the genome length)")
	cmd.Flags().StringVar(&runCrossoverFlag, "crossover", "two-point", "recombination: two-point, uniform or none")
	cmd.Flags().IntVarP(&runParallelFlag, "parallel", "p", 0, "number of parallel workers (0 uses every CPU)")
	cmd.Flags().Uint64Var(&runSeedFlag, "seed", 0, "run seed (random when unset)")
	cmd.Flags().BoolVar(&runStopAtOptimumFlag, "stop-at-optimum", false, "stop as soon as some individual reaches the optimum")

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runOptions holds the validated flags of one run.
type runOptions struct {
	problem        string
	bits           int
	trapSize       int
	population     int
	generations    int
	selector       string
	epsilon        float64
	tournamentSize int
	mutationRate   float64
	crossover      string
	workers        int
	seed           uint64
	stopAtOptimum  bool
}

func (o runOptions) validate() error {
	var errs []error

	if o.bits < 1 {
		errs = append(errs, fmt.Errorf("--bits must be positive, got %d", o.bits))
	}

	if o.population < 1 {
		errs = append(errs, fmt.Errorf("--population must be positive, got %d", o.population))
	}

	if o.generations < 0 {
		errs = append(errs, fmt.Errorf("--generations must not be negative, got %d", o.generations))
	}

	if o.workers < 0 {
		errs = append(errs, fmt.Errorf("--parallel must not be negative, got %d", o.workers))
	}

	if o.epsilon < 0 {
		errs = append(errs, fmt.Errorf("--epsilon must not be negative, got %v", o.epsilon))
	}

	if o.problem == "trap" && (o.trapSize < 1 || o.bits%o.trapSize != 0) {
		errs = append(errs, fmt.Errorf("--bits (%d) must be a positive multiple of --trap-size (%d)", o.bits, o.trapSize))
	}

	if (o.selector == "tournament" || o.selector == "mixed") && (o.tournamentSize < 1 || o.tournamentSize > o.population) {
		errs = append(errs, fmt.Errorf("--tournament-size must be in [1, %d], got %d", o.population, o.tournamentSize))
	}

	return errors.Join(errs...)
}

func (o runOptions) scorer() (domain.Scorer[adapter.Bitstring, adapter.Cases], error) {
	switch o.problem {
	case "count-ones":
		return adapter.CountOnes{}, nil
	case "hiff":
		return adapter.HIFF{}, nil
	case "trap":
		return adapter.NewTrap(o.trapSize)
	}

	return nil, fmt.Errorf("unknown problem %q", o.problem)
}

func (o runOptions) parentSelector() (bitSelector, error) {
	lexicase := domain.NewLexicase[adapter.Bitstring, m.Score[int64]]()

	switch o.selector {
	case "lexicase":
		return lexicase, nil
	case "epsilon-lexicase":
		if o.epsilon > 0 {
			return domain.NewLexicase[adapter.Bitstring, m.Score[int64]](domain.WithEpsilon(o.epsilon)), nil
		}

		return domain.NewLexicase[adapter.Bitstring, m.Score[int64]](domain.WithMADEpsilon()), nil
	case "tournament":
		return domain.NewTournament[adapter.Bitstring](o.tournamentSize, m.CompareTotals[m.Score[int64]])
	case "weighted":
		return domain.NewWeighted[adapter.Bitstring](shiftedTotal), nil
	case "mixed":
		tournament, err := domain.NewTournament[adapter.Bitstring](o.tournamentSize, m.CompareTotals[m.Score[int64]])
		if err != nil {
			return nil, err
		}

		return domain.NewWeightedSelectors[adapter.Bitstring, adapter.Cases](lexicase, 4).With(tournament, 1), nil
	}

	return nil, fmt.Errorf("unknown selector %q", o.selector)
}

func (o runOptions) pipeline() (*domain.Pipeline[adapter.Bitstring, adapter.Cases], error) {
	scorer, err := o.scorer()
	if err != nil {
		return nil, err
	}

	selector, err := o.parentSelector()
	if err != nil {
		return nil, err
	}

	var mutator domain.Mutator[adapter.Bitstring] = adapter.FlipOneOverLength{}
	if o.mutationRate != 0 {
		mutator, err = adapter.NewFlipWithRate(o.mutationRate)
		if err != nil {
			return nil, err
		}
	}

	p := &domain.Pipeline[adapter.Bitstring, adapter.Cases]{
		Selector: selector,
		Parents:  2,
		Mutator:  mutator,
		Scorer:   scorer,
	}

	switch o.crossover {
	case "two-point":
		p.Recombinator = adapter.TwoPointCrossover{}
	case "uniform":
		p.Recombinator = adapter.UniformCrossover{}
	case "none":
		p.Parents = 1
	default:
		return nil, fmt.Errorf("unknown crossover %q", o.crossover)
	}

	return p, nil
}

// initialPopulation scores population random genomes drawn from a stream
// that no generation uses.
func (o runOptions) initialPopulation(scorer domain.Scorer[adapter.Bitstring, adapter.Cases]) (m.Population[adapter.Bitstring, adapter.Cases], error) {
	rng := rand.New(rand.NewPCG(o.seed, ^uint64(0)))
	members := make([]m.Individual[adapter.Bitstring, adapter.Cases], o.population)

	for i := range members {
		genome := adapter.RandomBitstring(o.bits, rng)

		score, err := scorer.Apply(genome, rng)
		if err != nil {
			return m.Population[adapter.Bitstring, adapter.Cases]{}, fmt.Errorf("score initial genome %d: %w", i, err)
		}

		members[i] = m.NewIndividual(genome, score)
	}

	return m.NewPopulation(members), nil
}

func runEvolution(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	pipeline, err := opts.pipeline()
	if err != nil {
		return err
	}

	optimum, err := adapter.Optimum(pipeline.Scorer, opts.bits)
	if err != nil {
		return err
	}

	pop, err := opts.initialPopulation(pipeline.Scorer)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	start, err := domain.NewGeneration(pop, pipeline,
		domain.WithConfig(domain.Config{Workers: opts.workers, Seed: opts.seed}),
		domain.WithLogger(logger.With("component", "generation")),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := uiFactory(cmd)
	if err := ui.Start(
		controller.WithGenerations(opts.generations),
		controller.WithTitle("evolve "+opts.problem),
		controller.WithInterrupt(cancel),
	); err != nil {
		return err
	}
	defer ui.Close()

	ui.DisplayRunInfo(controller.RunInfo{
		RunID:       runID,
		Problem:     opts.problem,
		Selector:    opts.selector,
		Bits:        opts.bits,
		Population:  opts.population,
		Generations: opts.generations,
		Workers:     opts.workers,
		Seed:        opts.seed,
		Optimum:     float64(optimum),
	})

	logger.Info("run started",
		"problem", opts.problem,
		"selector", opts.selector,
		"population", opts.population,
		"generations", opts.generations,
		"seed", opts.seed,
	)

	stop := domain.MaxGenerations[adapter.Bitstring, adapter.Cases](opts.generations)
	if opts.stopAtOptimum {
		stop = domain.AnyOf(domain.Target[adapter.Bitstring](totalValue, float64(optimum)), stop)
	}

	began := time.Now()
	last := began

	final, runErr := domain.Run(ctx, start, stop, func(g *bitGeneration) {
		now := time.Now()
		ui.DisplayGeneration(reportOf(g, now.Sub(last)))
		last = now
	})

	summary := reportOf(final, time.Since(began))
	if runErr != nil {
		logger.Warn("run stopped", "generation", final.Number(), "error", runErr)
	} else {
		logger.Info("run finished",
			"generations", final.Number(),
			"best", summary.Summary.Best,
			"optimum", optimum,
			"duration", time.Since(began),
		)
	}

	summaryErr := ui.DisplaySummary(summary, runErr)

	// keep a failed run on screen until the user dismisses it
	ui.Wait()

	return summaryErr
}

func reportOf(g *bitGeneration, elapsed time.Duration) controller.GenerationReport {
	pop := g.Population()
	report := controller.GenerationReport{
		Number:   g.Number(),
		Summary:  domain.Summarize(pop, totalValue),
		Duration: elapsed,
	}

	best, err := domain.NewBest[adapter.Bitstring](m.CompareTotals[m.Score[int64]]).Select(pop, nil)
	if err == nil {
		report.Best = best.Genome().String()
	}

	return report
}

func totalValue(c adapter.Cases) float64 {
	total, ok := c.Total()
	if !ok {
		return 0
	}

	return total.Float()
}

// shiftedTotal is the fitness-proportional weight: the total plus one, so
// genomes with a zero total stay selectable.
func shiftedTotal(c adapter.Cases) float64 {
	return totalValue(c) + 1
}
