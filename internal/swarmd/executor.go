package swarmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/pso"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrRunExists       = errors.New("run already exists")
	ErrRunTerminal     = errors.New("run is terminal")
	ErrRunIDMissing    = errors.New("run_id is required")
	ErrRunNotStoppable = errors.New("run is already executing")
	ErrInvalidRunID    = errors.New("invalid run id")
	ErrInvalidSolver   = errors.New("invalid solver")
	ErrRateLimited     = errors.New("run admission rate exceeded")
)

// ExecutorOptions configures admission and reporting for a RunExecutor.
type ExecutorOptions struct {
	// MaxConcurrentRuns bounds how many solves execute at once; further runs
	// stay pending until a slot frees up.
	MaxConcurrentRuns int
	// RunsPerSecond limits run admission; 0 disables the limit.
	RunsPerSecond float64
	RunsBurst     int

	Collector *metrics.Collector
	Metrics   *metrics.Prometheus
	Notifier  *Notifier
	Logger    *slog.Logger
}

// OptionsFromConfig maps the server section of the configuration file.
func OptionsFromConfig(s config.Server) ExecutorOptions {
	return ExecutorOptions{
		MaxConcurrentRuns: s.MaxConcurrentRuns,
		RunsPerSecond:     s.RunsPerSecond,
		RunsBurst:         s.RunsBurst,
	}
}

// SubmitRequest describes a run to admit.
type SubmitRequest struct {
	RunID    string
	Solver   config.Solver
	Callback *Callback
}

// RunExecutor admits runs and executes them against the solver.
type RunExecutor struct {
	store   *RunStore
	opts    ExecutorOptions
	limiter *rate.Limiter
	slots   chan struct{}
	log     *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunExecutor(store *RunStore, opts ExecutorOptions) *RunExecutor {
	if opts.MaxConcurrentRuns <= 0 {
		opts.MaxConcurrentRuns = 1
	}
	if opts.Collector == nil {
		opts.Collector = metrics.NewCollector()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Component("executor")
	}

	limit := rate.Inf
	if opts.RunsPerSecond > 0 {
		limit = rate.Limit(opts.RunsPerSecond)
	}
	burst := opts.RunsBurst
	if burst <= 0 {
		burst = max(1, int(math.Ceil(opts.RunsPerSecond)))
	}

	return &RunExecutor{
		store:   store,
		opts:    opts,
		limiter: rate.NewLimiter(limit, burst),
		slots:   make(chan struct{}, opts.MaxConcurrentRuns),
		log:     opts.Logger,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Collector returns the trace collector runs report to.
func (e *RunExecutor) Collector() *metrics.Collector { return e.opts.Collector }

// Submit admits req and executes it in the background.
func (e *RunExecutor) Submit(req SubmitRequest) (*RunRecord, error) {
	rec, err := e.admit(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.track(rec.Run.ID, cancel)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.execute(ctx, rec.Run.ID)
	}()
	return rec, nil
}

// Run admits req and executes it on the calling goroutine. ctx only bounds
// the wait for a free slot; a solve that has started always finishes.
func (e *RunExecutor) Run(ctx context.Context, req SubmitRequest) (*RunRecord, error) {
	rec, err := e.admit(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	e.track(rec.Run.ID, cancel)

	e.wg.Add(1)
	defer e.wg.Done()
	e.execute(ctx, rec.Run.ID)

	final, ok := e.store.Get(rec.Run.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, rec.Run.ID)
	}
	return final, nil
}

func (e *RunExecutor) admit(req SubmitRequest) (*RunRecord, error) {
	if err := req.Solver.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSolver, err)
	}
	if !e.limiter.Allow() {
		if e.opts.Metrics != nil {
			e.opts.Metrics.RunRejected()
		}
		return nil, ErrRateLimited
	}
	rec, err := e.store.Create(req.RunID, req.Solver, req.Callback)
	if err != nil {
		return nil, err
	}
	e.log.Info("run admitted", "run_id", rec.Run.ID)
	return rec, nil
}

// Stop cancels a run that is still waiting for a slot. Executing runs cannot
// be interrupted.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, err := e.store.Transition(runID, models.RunStatusPending, models.RunStatusCancelled, "")
	if err != nil {
		cur, ok := e.store.Get(runID)
		switch {
		case !ok:
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		case cur.Run.Status == models.RunStatusRunning:
			return nil, fmt.Errorf("%w: %s", ErrRunNotStoppable, runID)
		case cur.Run.Status.Terminal():
			return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
		}
		return nil, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}

	e.log.Info("run cancelled", "run_id", runID)
	e.notify(rec)
	return rec, nil
}

// Shutdown cancels every pending run and waits for executing ones until ctx
// is done.
func (e *RunExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *RunExecutor) track(runID string, cancel context.CancelFunc) {
	e.mu.Lock()
	e.cancels[runID] = cancel
	e.mu.Unlock()
}

func (e *RunExecutor) untrack(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) execute(ctx context.Context, runID string) {
	defer e.untrack(runID)

	select {
	case e.slots <- struct{}{}:
	case <-ctx.Done():
		rec, err := e.store.Transition(runID, models.RunStatusPending, models.RunStatusCancelled, "cancelled before start")
		if err == nil {
			e.log.Info("run cancelled before start", "run_id", runID)
			e.notify(rec)
		}
		return
	}
	defer func() { <-e.slots }()

	rec, err := e.store.Transition(runID, models.RunStatusPending, models.RunStatusRunning, "")
	if err != nil {
		// Stopped while waiting for the slot.
		e.log.Debug("run no longer pending", "run_id", runID, "error", err)
		return
	}
	if m := e.opts.Metrics; m != nil {
		m.RunStarted()
		defer m.RunFinished()
	}

	e.log.Info("run started", "run_id", runID,
		"objective", rec.Solver.Objective,
		"variant", rec.Solver.Variant,
		"budget", rec.Solver.Budget,
		"workers", rec.Solver.Workers)

	result, solveErr := e.solve(runID, rec.Solver)
	if solveErr != nil {
		e.log.Error("run failed", "run_id", runID, "error", solveErr)
		if m := e.opts.Metrics; m != nil {
			m.SolveFailed(variantLabel(rec.Solver.Variant))
		}
	}

	final, err := e.store.Finish(runID, result, solveErr)
	if err != nil {
		e.log.Error("failed to record run outcome", "run_id", runID, "error", err)
		return
	}
	if solveErr == nil {
		e.log.Info("run completed", "run_id", runID,
			"score", result.Score,
			"rounds", result.Rounds,
			"evaluations", result.Evaluations)
	}
	e.notify(final)
}

func (e *RunExecutor) solve(runID string, s config.Solver) (*models.RunResult, error) {
	cfg, err := s.PSOConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger.Component("pso").With("run_id", runID)

	observers := []pso.Observer{e.opts.Collector.Observer(runID)}
	if e.opts.Metrics != nil {
		observers = append(observers, e.opts.Metrics.Observer(cfg.Variant.String(), s.Objective))
	}
	cfg.Observer = metrics.Tee(observers...)

	solver, err := pso.New(cfg)
	if err != nil {
		return nil, err
	}
	res, err := solver.Solve(s.Budget, s.Workers)
	if err != nil {
		return nil, err
	}
	return &models.RunResult{
		Score:       res.Score,
		Position:    res.Position.Components(),
		Rounds:      res.Rounds,
		Evaluations: res.Evaluations,
		Duration:    res.Duration,
	}, nil
}

func (e *RunExecutor) notify(rec *RunRecord) {
	if rec == nil || rec.Callback == nil || e.opts.Notifier == nil {
		return
	}
	e.opts.Notifier.Notify(rec.Callback, rec)
}

func variantLabel(name string) string {
	if v, err := pso.ParseVariant(name); err == nil {
		return v.String()
	}
	return name
}
