package metrics

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// ConvergenceStrategy decides from a convergence trace whether a run has
// stopped making progress.
type ConvergenceStrategy interface {
	// CheckConvergence reports whether points show convergence and why.
	CheckConvergence(points []models.ConvergencePoint) (bool, string)
	Name() string
}

// ConvergenceConfig holds configuration for convergence detection
type ConvergenceConfig struct {
	// NoImprovementRounds is the number of rounds the best may stay unchanged.
	NoImprovementRounds int
	// ScoreTolerance is the largest score range still counted as a plateau.
	ScoreTolerance float64
	// MinRounds is the trace length below which nothing is reported.
	MinRounds int
	// PlateauRounds is the window the plateau check looks at.
	PlateauRounds int
}

// DefaultConvergenceConfig returns a default convergence configuration
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		NoImprovementRounds: 10,
		ScoreTolerance:      1e-6,
		MinRounds:           3,
		PlateauRounds:       10,
	}
}

// sameScore treats two NaN bests as equal.
func sameScore(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// NoImprovementStrategy converges when the best has not changed for
// NoImprovementRounds rounds. The global best only ever changes by
// improving, so this holds for both minimization and maximization.
type NoImprovementStrategy struct {
	config ConvergenceConfig
}

func NewNoImprovementStrategy(config ConvergenceConfig) *NoImprovementStrategy {
	return &NoImprovementStrategy{config: config}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) CheckConvergence(points []models.ConvergencePoint) (bool, string) {
	if len(points) < s.config.MinRounds || len(points) == 0 {
		return false, ""
	}

	last := len(points) - 1
	changed := 0
	for i := 1; i <= last; i++ {
		if !sameScore(points[i].Best, points[i-1].Best) {
			changed = i
		}
	}

	if stalled := last - changed; stalled >= s.config.NoImprovementRounds {
		return true, fmt.Sprintf("no improvement for %d rounds (best last changed at round %d)", stalled, points[changed].Round)
	}
	return false, ""
}

// PlateauStrategy converges when the last PlateauRounds bests lie within
// ScoreTolerance of each other.
type PlateauStrategy struct {
	config ConvergenceConfig
}

func NewPlateauStrategy(config ConvergenceConfig) *PlateauStrategy {
	return &PlateauStrategy{config: config}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) CheckConvergence(points []models.ConvergencePoint) (bool, string) {
	window := s.config.PlateauRounds
	if len(points) < s.config.MinRounds || window < 2 || len(points) < window {
		return false, ""
	}

	recent := points[len(points)-window:]
	lo, hi := recent[0].Best, recent[0].Best
	for _, p := range recent {
		if math.IsNaN(p.Best) || math.IsInf(p.Best, 0) {
			return false, ""
		}
		lo = math.Min(lo, p.Best)
		hi = math.Max(hi, p.Best)
	}

	if spread := hi - lo; spread <= s.config.ScoreTolerance {
		return true, fmt.Sprintf("best plateaued for %d rounds (range: %.6g)", window, spread)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any of its strategies does.
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

// NewCombinedStrategy combines the no-improvement and plateau checks.
func NewCombinedStrategy(config ConvergenceConfig) *CombinedStrategy {
	return &CombinedStrategy{
		strategies: []ConvergenceStrategy{
			NewNoImprovementStrategy(config),
			NewPlateauStrategy(config),
		},
	}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) CheckConvergence(points []models.ConvergencePoint) (bool, string) {
	for _, strategy := range s.strategies {
		if converged, reason := strategy.CheckConvergence(points); converged {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), reason)
		}
	}
	return false, ""
}

// AddStrategy adds a custom strategy to the combined strategy
func (s *CombinedStrategy) AddStrategy(strategy ConvergenceStrategy) {
	s.strategies = append(s.strategies, strategy)
}
