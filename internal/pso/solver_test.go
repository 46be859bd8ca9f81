package pso

import (
	"errors"
	"math"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

func testConfig(variant Variant, seed int64) Config {
	return Config{
		Dimensions: 3,
		Density:    24,
		Objective:  objective.Rastrigin{},
		Radius:     5.12,
		Method:     Minimize,
		Variant:    variant,
		Rand:       utils.NewRandSource(seed),
		Logger:     logger.Discard(),
	}
}

func newTestSolver(t *testing.T, cfg Config) *Solver {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func mustSolve(t *testing.T, s *Solver, budget, workers int) Result {
	t.Helper()
	res, err := s.Solve(budget, workers)
	if err != nil {
		t.Fatalf("Solve(%d, %d) failed: %v", budget, workers, err)
	}
	return res
}

func scores(obj ObjectiveFunction, positions []vector.Vector) []float64 {
	out := make([]float64, len(positions))
	for i, p := range positions {
		out[i] = obj.Evaluate(p)
	}
	return out
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"zero dimensions", func(c *Config) { c.Dimensions = 0 }, "dimensions"},
		{"negative density", func(c *Config) { c.Density = -1 }, "density"},
		{"zero radius", func(c *Config) { c.Radius = 0 }, "radius"},
		{"nan radius", func(c *Config) { c.Radius = math.NaN() }, "radius"},
		{"nil objective", func(c *Config) { c.Objective = nil }, "objective"},
		{"bad method", func(c *Config) { c.Method = Method(7) }, "method"},
		{"bad variant", func(c *Config) { c.Variant = Variant(7) }, "variant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(Basic, 1)
			tt.mod(&cfg)
			_, err := New(cfg)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected ConfigurationError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, ce.Field)
			}
		})
	}
}

func TestNewRejectsCenterOfWrongDimension(t *testing.T) {
	cfg := testConfig(Basic, 1)
	cfg.Center = vector.New(0, 0)
	_, err := New(cfg)
	var dm *vector.ErrDimensionMismatch
	if !errors.As(err, &dm) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
	if dm.Expected != 3 || dm.Actual != 2 {
		t.Errorf("Expected 3/2, got %d/%d", dm.Expected, dm.Actual)
	}
}

func TestNewDefaultsCenterToOrigin(t *testing.T) {
	s := newTestSolver(t, testConfig(Basic, 1))
	if c := s.Config().Center; !c.Equal(vector.Zero(3)) {
		t.Errorf("Expected origin, got %v", c)
	}
}

func TestSolveRejectsBadParameters(t *testing.T) {
	s := newTestSolver(t, testConfig(Basic, 1))
	var ce *ConfigurationError

	_, err := s.Solve(0, 1)
	if !errors.As(err, &ce) || ce.Field != "budget" {
		t.Errorf("Expected budget ConfigurationError, got %v", err)
	}

	_, err = s.Solve(10, 0)
	if !errors.As(err, &ce) || ce.Field != "workers" {
		t.Errorf("Expected workers ConfigurationError, got %v", err)
	}
}

func TestDegenerateScenarioLeavesParticleInPlace(t *testing.T) {
	cfg := Config{
		Dimensions: 2,
		Density:    1,
		Objective:  objective.Rastrigin{},
		Center:     vector.New(0, 0),
		Radius:     1,
		Rand:       utils.NewFixedSource(0.5),
		Logger:     logger.Discard(),
	}
	s := newTestSolver(t, cfg)
	origin := vector.New(0, 0)

	snap := s.Swarm()
	if snap.Len() != 1 || !snap.Positions[0].Equal(origin) {
		t.Fatalf("Expected one particle at origin, got %v", snap.Positions)
	}

	res := mustSolve(t, s, 1, 1)
	if res.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", res.Rounds)
	}
	if !res.Position.Equal(origin) {
		t.Errorf("Expected result at origin, got %v", res.Position)
	}
	if res.Score != 0 {
		t.Errorf("Expected score 0, got %v", res.Score)
	}
	if p := s.Swarm().Positions[0]; !p.Equal(origin) {
		t.Errorf("Expected particle at origin, got %v", p)
	}
}

func TestFinalScoreIsExtremal(t *testing.T) {
	for _, variant := range []Variant{Basic, Inertia} {
		for _, method := range []Method{Minimize, Maximize} {
			t.Run(variant.String()+"/"+method.String(), func(t *testing.T) {
				cfg := testConfig(variant, 11)
				cfg.Method = method
				s := newTestSolver(t, cfg)

				res := mustSolve(t, s, 8, 2)
				for i, sc := range scores(cfg.Objective, s.Swarm().Positions) {
					if method == Minimize && sc < res.Score {
						t.Errorf("slot %d scores %v, below result %v", i, sc, res.Score)
					}
					if method == Maximize && sc > res.Score {
						t.Errorf("slot %d scores %v, above result %v", i, sc, res.Score)
					}
				}
				if got := cfg.Objective.Evaluate(res.Position); got != res.Score {
					t.Errorf("Expected score %v for result position, got %v", res.Score, got)
				}
			})
		}
	}
}

func TestSwarmSizeInvariant(t *testing.T) {
	s := newTestSolver(t, testConfig(Inertia, 3))
	for i := 0; i < 3; i++ {
		mustSolve(t, s, 4, 3)
		snap := s.Swarm()
		if snap.Len() != 24 || len(snap.Bests) != 24 || len(snap.Velocities) != 24 {
			t.Errorf("Expected 24 slots, got %d positions %d bests %d velocities",
				snap.Len(), len(snap.Bests), len(snap.Velocities))
		}
	}

	basic := newTestSolver(t, testConfig(Basic, 3))
	mustSolve(t, basic, 4, 3)
	if n := basic.Swarm().Len(); n != 24 {
		t.Errorf("Expected 24 slots, got %d", n)
	}
	if v := basic.Swarm().Velocities; v != nil {
		t.Errorf("Expected no velocities for basic variant, got %d", len(v))
	}
}

func TestPersonalBestsNeverWorsen(t *testing.T) {
	for _, variant := range []Variant{Basic, Inertia} {
		t.Run(variant.String(), func(t *testing.T) {
			s := newTestSolver(t, testConfig(variant, 5))
			prev := s.Swarm().Bests
			for round := 0; round < 10; round++ {
				mustSolve(t, s, 2, 2)
				cur := s.Swarm().Bests
				for i := range cur {
					if cur[i].Score > prev[i].Score {
						t.Errorf("slot %d round %d: best worsened from %v to %v",
							i, round, prev[i].Score, cur[i].Score)
					}
				}
				prev = cur
			}
		})
	}
}

func TestPositionsStayInsideRadius(t *testing.T) {
	for _, variant := range []Variant{Basic, Inertia} {
		t.Run(variant.String(), func(t *testing.T) {
			cfg := testConfig(variant, 9)
			cfg.Center = vector.New(1, -2, 0.5)
			cfg.Radius = 0.75
			s := newTestSolver(t, cfg)

			mustSolve(t, s, 12, 3)
			for i, p := range s.Swarm().Positions {
				if d := p.Distance(cfg.Center); d > cfg.Radius*(1+1e-9) {
					t.Errorf("slot %d lies %v from center, radius %v", i, d, cfg.Radius)
				}
			}
		})
	}
}

func TestDeterministicWithSingleWorker(t *testing.T) {
	for _, variant := range []Variant{Basic, Inertia} {
		t.Run(variant.String(), func(t *testing.T) {
			run := func() (Result, Snapshot) {
				s := newTestSolver(t, testConfig(variant, 42))
				return mustSolve(t, s, 6, 1), s.Swarm()
			}
			r1, s1 := run()
			r2, s2 := run()

			if math.Float64bits(r1.Score) != math.Float64bits(r2.Score) {
				t.Errorf("Expected identical scores, got %v and %v", r1.Score, r2.Score)
			}
			if !r1.Position.Equal(r2.Position) {
				t.Errorf("Expected identical positions, got %v and %v", r1.Position, r2.Position)
			}
			if !reflect.DeepEqual(r1.History, r2.History) {
				t.Errorf("Expected identical history, got %v and %v", r1.History, r2.History)
			}
			for i := range s1.Positions {
				if !s1.Positions[i].Equal(s2.Positions[i]) {
					t.Errorf("slot %d: positions differ", i)
				}
				if !s1.Bests[i].Position.Equal(s2.Bests[i].Position) {
					t.Errorf("slot %d: personal bests differ", i)
				}
			}
		})
	}
}

func TestRoundsAndEvaluations(t *testing.T) {
	tests := []struct {
		budget, workers, rounds int
	}{
		{10, 4, 8},
		{10, 1, 10},
		{3, 4, 0},
		{16, 8, 16},
	}
	for _, tt := range tests {
		cfg := testConfig(Basic, 2)
		s := newTestSolver(t, cfg)
		res := mustSolve(t, s, tt.budget, tt.workers)
		if res.Rounds != tt.rounds || len(res.History) != tt.rounds {
			t.Errorf("budget %d workers %d: expected %d rounds, got %d (history %d)",
				tt.budget, tt.workers, tt.rounds, res.Rounds, len(res.History))
		}

		// one scan plus one evaluation per slot each round, then the final scan
		want := int64(tt.rounds*2*cfg.Density + cfg.Density)
		if res.Evaluations != want {
			t.Errorf("budget %d workers %d: expected %d evaluations, got %d",
				tt.budget, tt.workers, want, res.Evaluations)
		}
	}
}

func TestMoreWorkersThanParticles(t *testing.T) {
	cfg := testConfig(Inertia, 4)
	cfg.Density = 3
	s := newTestSolver(t, cfg)
	res := mustSolve(t, s, 16, 8)
	if res.Rounds != 16 {
		t.Errorf("Expected 16 rounds, got %d", res.Rounds)
	}
	if n := s.Swarm().Len(); n != 3 {
		t.Errorf("Expected 3 slots, got %d", n)
	}
}

func TestObjectivePanicAbortsSolve(t *testing.T) {
	// New spends one evaluation per slot. Every basic round then scans the
	// swarm once and evaluates one update per slot, so the threshold picks
	// whether the coordinator or the worker hits the panic.
	tests := []struct {
		name   string
		passes int
		round  int
	}{
		{"first update", 2, 0},
		{"second scan", 3, 1},
		{"second update", 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(Basic, 6)
			var calls atomic.Int64
			limit := int64(cfg.Density * tt.passes)
			boom := errors.New("boom")
			cfg.Objective = ObjectiveFunc(func(v vector.Vector) float64 {
				if calls.Add(1) > limit {
					panic(boom)
				}
				return v.Magnitude()
			})
			s := newTestSolver(t, cfg)

			_, err := s.Solve(10, 1)
			var se *SolveError
			if !errors.As(err, &se) {
				t.Fatalf("Expected SolveError, got %v", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("Expected error to wrap boom, got %v", err)
			}
			if se.Round != tt.round {
				t.Errorf("Expected failure in round %d, got %d", tt.round, se.Round)
			}
		})
	}
}

func TestWorkerFailureStopsLaterRounds(t *testing.T) {
	cfg := testConfig(Basic, 6)
	var calls atomic.Int64
	first := int64(cfg.Density*2 + 1)
	cfg.Objective = ObjectiveFunc(func(v vector.Vector) float64 {
		if calls.Add(1) == first {
			panic("bad slot")
		}
		return v.Magnitude()
	})
	obs := &recordingObserver{}
	cfg.Observer = obs
	s := newTestSolver(t, cfg)

	_, err := s.Solve(10, 2)
	var se *SolveError
	if !errors.As(err, &se) {
		t.Fatalf("Expected SolveError, got %v", err)
	}
	if se.Round != 0 {
		t.Errorf("Expected failure in round 0, got %d", se.Round)
	}
	if len(obs.rounds) != 0 || obs.final != nil {
		t.Errorf("Expected no notifications, got rounds %v final %v", obs.rounds, obs.final)
	}
}

func TestDimensionMismatchAbortsSolve(t *testing.T) {
	cfg := testConfig(Basic, 6)
	s := newTestSolver(t, cfg)
	// Corrupt one slot the way a broken caller could.
	s.swarm.bests[0].Position = vector.New(1, 2)

	_, err := s.Solve(2, 1)
	var dm *vector.ErrDimensionMismatch
	if !errors.As(err, &dm) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
}

type recordingObserver struct {
	rounds []int
	final  *Result
}

func (o *recordingObserver) RoundCompleted(round int, best float64) {
	o.rounds = append(o.rounds, round)
}

func (o *recordingObserver) SolveCompleted(res Result) { o.final = &res }

func TestObserverNotified(t *testing.T) {
	obs := &recordingObserver{}
	cfg := testConfig(Basic, 8)
	cfg.Observer = obs
	s := newTestSolver(t, cfg)

	res := mustSolve(t, s, 6, 2)
	if want := []int{0, 1, 2, 3, 4, 5}; !reflect.DeepEqual(obs.rounds, want) {
		t.Errorf("Expected rounds %v, got %v", want, obs.rounds)
	}
	if obs.final == nil {
		t.Fatal("Expected SolveCompleted to be called")
	}
	if obs.final.Score != res.Score {
		t.Errorf("Expected final score %v, got %v", res.Score, obs.final.Score)
	}
}

func TestInertiaSingleParticleOnlyImproves(t *testing.T) {
	cfg := testConfig(Inertia, 13)
	cfg.Density = 1
	s := newTestSolver(t, cfg)

	// The first round may pull an initial sample back onto the sphere.
	mustSolve(t, s, 1, 1)
	prev := cfg.Objective.Evaluate(s.Swarm().Positions[0])
	for i := 0; i < 20; i++ {
		mustSolve(t, s, 1, 1)
		cur := cfg.Objective.Evaluate(s.Swarm().Positions[0])
		if cur > prev {
			t.Errorf("solve %d: score worsened from %v to %v", i, prev, cur)
		}
		prev = cur
	}
}

// flatOutsideConfig places one inertia particle, and its velocity, at
// (0.72, 0.72), just outside the unit circle. A lone particle is always the
// global best and the flat objective rejects every refinement.
func flatOutsideConfig() Config {
	return Config{
		Dimensions: 2,
		Density:    1,
		Objective:  ObjectiveFunc(func(vector.Vector) float64 { return 1 }),
		Center:     vector.New(0, 0),
		Radius:     1,
		Variant:    Inertia,
		Rand:       utils.NewFixedSource(0.9),
		Logger:     logger.Discard(),
	}
}

func TestInertiaRejectedRefinementKeepsVelocity(t *testing.T) {
	s := newTestSolver(t, flatOutsideConfig())
	initial := s.Swarm().Velocities[0]
	if initial.Magnitude() == 0 {
		t.Fatal("Expected a non-zero initial velocity")
	}

	for i := 0; i < 5; i++ {
		mustSolve(t, s, 1, 1)
		if v := s.Swarm().Velocities[0]; !v.Equal(initial) {
			t.Fatalf("solve %d: expected velocity %v, got %v", i, initial, v)
		}
	}
}

func TestInertiaKeptPositionIsClamped(t *testing.T) {
	cfg := flatOutsideConfig()
	s := newTestSolver(t, cfg)
	start := s.Swarm().Positions[0]
	if d := start.Distance(cfg.Center); d <= cfg.Radius {
		t.Fatalf("Expected initial sample outside radius, got distance %v", d)
	}

	mustSolve(t, s, 1, 1)
	got := s.Swarm().Positions[0]
	if d := got.Distance(cfg.Center); d > cfg.Radius*(1+1e-9) {
		t.Errorf("Expected particle inside radius, got distance %v", d)
	}
	if want := s.sampler.clamp(start); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSolveImprovesOnSphere(t *testing.T) {
	cfg := testConfig(Basic, 21)
	cfg.Objective = objective.Sphere{}
	cfg.Density = 40
	s := newTestSolver(t, cfg)

	_, start := selectBest(s.Swarm().Positions, cfg.Objective, Minimize)

	mustSolve(t, s, 40, 4)
	best := math.Inf(1)
	for _, b := range s.Swarm().Bests {
		best = math.Min(best, b.Score)
	}
	if best > start {
		t.Errorf("Expected best %v to be no worse than start %v", best, start)
	}
}

func TestNaNObjectiveDoesNotAbort(t *testing.T) {
	cfg := testConfig(Basic, 1)
	cfg.Objective = ObjectiveFunc(func(v vector.Vector) float64 { return math.NaN() })
	s := newTestSolver(t, cfg)

	res := mustSolve(t, s, 2, 2)
	if !math.IsNaN(res.Score) {
		t.Errorf("Expected NaN score, got %v", res.Score)
	}
	if !res.Position.Equal(s.Swarm().Positions[0]) {
		t.Errorf("Expected first slot on all-NaN scores, got %v", res.Position)
	}
}
