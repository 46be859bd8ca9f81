package pso

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Result is the outcome of a solve.
type Result struct {
	Score    float64
	Position vector.Vector
	// Rounds is the number of full sweeps performed.
	Rounds int
	// Evaluations counts objective calls made by this solve.
	Evaluations int64
	Duration    time.Duration
	// History holds the global best score at the start of every round.
	History []float64
}

// Solver runs particle swarm optimization over an in-memory swarm.
type Solver struct {
	cfg       Config
	objective *countingObjective
	rand      RandomSource
	sampler   sampler
	log       *slog.Logger

	mu    sync.Mutex // serializes Solve and Swarm
	swarm *Swarm
}

type countingObjective struct {
	fn    ObjectiveFunction
	calls atomic.Int64
}

func (c *countingObjective) Evaluate(v vector.Vector) float64 {
	c.calls.Add(1)
	return c.fn.Evaluate(v)
}

// New validates cfg, fills in defaults and samples the initial swarm.
func New(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Center.Dim() == 0 {
		cfg.Center = vector.Zero(cfg.Dimensions)
	}
	if cfg.Rand == nil {
		cfg.Rand = utils.NewRandSource(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Component("pso")
	}

	s := &Solver{
		cfg:       cfg,
		objective: &countingObjective{fn: cfg.Objective},
		rand:      cfg.Rand,
		sampler:   sampler{rand: cfg.Rand, center: cfg.Center, radius: cfg.Radius},
		log:       cfg.Logger,
	}
	if err := guard(func() {
		s.swarm = newSwarm(cfg.Density, s.sampler, s.objective, cfg.Variant == Inertia)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Solver) Config() Config { return s.cfg }

// Swarm returns a copy of the current swarm state.
func (s *Solver) Swarm() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swarm.snapshot()
}

// Solve advances the swarm and returns the best position found.
//
// Every worker gets budget/workers rounds, and each round is a full sweep of
// the swarm shared out over all workers, so (budget/workers)*workers sweeps
// run in total. Workers own fixed disjoint slot ranges; when workers exceeds
// the swarm size some of them idle.
func (s *Solver) Solve(budget, workers int) (Result, error) {
	if budget < 1 {
		return Result{}, &ConfigurationError{Field: "budget", Reason: "must be positive"}
	}
	if workers < 1 {
		return Result{}, &ConfigurationError{Field: "workers", Reason: "must be positive"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	calls := s.objective.calls.Load()
	rounds := (budget / workers) * workers

	s.log.Info("solve started",
		"variant", s.cfg.Variant.String(),
		"method", s.cfg.Method.String(),
		"density", s.swarm.Len(),
		"rounds", rounds,
		"workers", workers)

	history, err := s.run(rounds, workers)
	if err != nil {
		s.log.Error("solve aborted", "error", err)
		return Result{}, err
	}

	var idx int
	var score float64
	if err := guard(func() {
		idx, score = selectBest(s.swarm.positions, s.objective, s.cfg.Method)
	}); err != nil {
		return Result{}, &SolveError{Round: rounds, Err: err}
	}

	res := Result{
		Score:       score,
		Position:    s.swarm.positions[idx],
		Rounds:      rounds,
		Evaluations: s.objective.calls.Load() - calls,
		Duration:    time.Since(start),
		History:     history,
	}
	s.log.Info("solve finished",
		"score", res.Score,
		"position", res.Position.String(),
		"evaluations", res.Evaluations,
		"duration", res.Duration)
	if s.cfg.Observer != nil {
		s.cfg.Observer.SolveCompleted(res)
	}
	return res, nil
}

// span is a half-open range of particle slots owned by one worker.
type span struct {
	lo, hi int
}

// partition splits n slots into workers contiguous spans. The first n%workers
// spans hold one extra slot; spans past n are empty.
func partition(n, workers int) []span {
	spans := make([]span, workers)
	size, extra := n/workers, n%workers
	lo := 0
	for w := range spans {
		hi := lo + size
		if w < extra {
			hi++
		}
		spans[w] = span{lo: lo, hi: hi}
		lo = hi
	}
	return spans
}

// roundPlan is the read-only state handed to every worker for one round.
type roundPlan struct {
	round int
	// best is the global best position (basic variant).
	best vector.Vector
	// positions is the start-of-round position snapshot (inertia variant).
	positions []vector.Vector
}

// run executes rounds sweeps with a pool spawned once and joined at the end.
// The coordinator takes the global best snapshot before any worker touches
// the round, then waits for every worker before the next snapshot.
func (s *Solver) run(rounds, workers int) ([]float64, error) {
	history := make([]float64, 0, rounds)
	if rounds == 0 {
		return history, nil
	}

	spans := partition(s.swarm.Len(), workers)
	inboxes := make([]chan roundPlan, workers)
	done := make(chan error, workers)

	var g errgroup.Group
	for w := range inboxes {
		inboxes[w] = make(chan roundPlan, 1)
		inbox, sp := inboxes[w], spans[w]
		g.Go(func() error {
			return s.work(inbox, sp, done)
		})
	}

	var planErr error
	for r := 0; r < rounds; r++ {
		var plan roundPlan
		var score float64
		if err := guard(func() {
			plan, score = s.plan(r)
		}); err != nil {
			planErr = &SolveError{Round: r, Err: err}
			break
		}
		history = append(history, score)

		for _, inbox := range inboxes {
			inbox <- plan
		}
		failed := false
		for range inboxes {
			if err := <-done; err != nil {
				failed = true
			}
		}
		if failed {
			break
		}

		s.log.Debug("round completed", "round", r, "best", score)
		if s.cfg.Observer != nil {
			s.cfg.Observer.RoundCompleted(r, score)
		}
	}

	for _, inbox := range inboxes {
		close(inbox)
	}
	workErr := g.Wait()
	if planErr != nil {
		return nil, planErr
	}
	if workErr != nil {
		return nil, workErr
	}
	return history, nil
}

// plan snapshots the global best for round r.
func (s *Solver) plan(r int) (roundPlan, float64) {
	idx, score := selectBest(s.swarm.positions, s.objective, s.cfg.Method)
	plan := roundPlan{round: r, best: s.swarm.positions[idx]}
	if s.cfg.Variant == Inertia {
		plan.positions = append([]vector.Vector(nil), s.swarm.positions...)
	}
	return plan, score
}

// work processes rounds for one span until its inbox is closed. It answers
// every round exactly once on done and returns the first failure as a
// *SolveError.
func (s *Solver) work(inbox <-chan roundPlan, sp span, done chan<- error) error {
	var view []vector.Vector
	for plan := range inbox {
		err := guard(func() {
			if s.cfg.Variant == Inertia {
				view = append(view[:0], plan.positions...)
				s.sweepInertia(sp, view)
				return
			}
			for i := sp.lo; i < sp.hi; i++ {
				s.updateBasic(i, plan.best)
			}
		})
		done <- err
		if err != nil {
			return &SolveError{Round: plan.round, Err: err}
		}
	}
	return nil
}

// sweepInertia recomputes the global best before every particle. view holds
// the round snapshot for foreign slots and live positions for this span, so
// the worker never reads a slot another worker is writing.
func (s *Solver) sweepInertia(sp span, view []vector.Vector) {
	for i := sp.lo; i < sp.hi; i++ {
		idx, _ := selectBest(view, s.objective, s.cfg.Method)
		s.updateInertia(i, view[idx])
		view[i] = s.swarm.positions[i]
	}
}
