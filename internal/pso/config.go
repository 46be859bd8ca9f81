package pso

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// ObjectiveFunction scores a position. Implementations must be pure: the
// solver calls Evaluate from several workers at once on arbitrary positions.
type ObjectiveFunction interface {
	Evaluate(v vector.Vector) float64
}

// ObjectiveFunc adapts a plain function to ObjectiveFunction.
type ObjectiveFunc func(v vector.Vector) float64

func (f ObjectiveFunc) Evaluate(v vector.Vector) float64 { return f(v) }

// RandomSource yields uniform values in [0, 1). It is shared by all workers
// and must be safe for concurrent use.
type RandomSource interface {
	Float64() float64
}

// Observer receives progress notifications from a solve. Calls are made from
// the coordinating goroutine only.
type Observer interface {
	RoundCompleted(round int, best float64)
	SolveCompleted(res Result)
}

// Method selects whether lower or higher scores are better.
type Method int

const (
	Minimize Method = iota
	Maximize
)

func (m Method) String() string {
	switch m {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "minimize" or "maximize" (also "min"/"max").
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimize", "min", "":
		return Minimize, nil
	case "maximize", "max":
		return Maximize, nil
	}
	return 0, &ConfigurationError{Field: "method", Reason: fmt.Sprintf("unknown method %q (must be minimize or maximize)", s)}
}

// better reports whether candidate beats incumbent under m. NaN never beats
// anything, and anything that is not NaN beats NaN.
func (m Method) better(candidate, incumbent float64) bool {
	if math.IsNaN(candidate) {
		return false
	}
	if math.IsNaN(incumbent) {
		return true
	}
	if m == Maximize {
		return candidate > incumbent
	}
	return candidate < incumbent
}

// Variant selects the particle update rule.
type Variant int

const (
	Basic Variant = iota
	Inertia
)

func (v Variant) String() string {
	switch v {
	case Basic:
		return "basic"
	case Inertia:
		return "inertia"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant parses "basic" or "inertia" (alias "enhanced").
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "":
		return Basic, nil
	case "inertia", "enhanced":
		return Inertia, nil
	}
	return 0, &ConfigurationError{Field: "variant", Reason: fmt.Sprintf("unknown variant %q (must be basic or inertia)", s)}
}

const (
	DefaultDimensions = 5
	DefaultDensity    = 5000
	DefaultRadius     = 5.12
	DefaultBudget     = 2000
	DefaultWorkers    = 4
)

// Config holds solver construction parameters.
type Config struct {
	Dimensions int
	Density    int
	Objective  ObjectiveFunction
	// Center defaults to the zero vector of Dimensions when left empty.
	Center  vector.Vector
	Radius  float64
	Method  Method
	Variant Variant

	// Rand defaults to a time-seeded utils.RandSource.
	Rand RandomSource
	// Logger defaults to the package logger tagged component=pso.
	Logger   *slog.Logger
	Observer Observer
}

// DefaultConfig returns the configuration of the classic Rastrigin run.
func DefaultConfig() Config {
	return Config{
		Dimensions: DefaultDimensions,
		Density:    DefaultDensity,
		Objective:  objective.Rastrigin{},
		Radius:     DefaultRadius,
		Method:     Minimize,
		Variant:    Basic,
	}
}

// Validate checks the configuration. Center may be empty.
func (c Config) Validate() error {
	if c.Dimensions <= 0 {
		return &ConfigurationError{Field: "dimensions", Reason: fmt.Sprintf("must be positive, got %d", c.Dimensions)}
	}
	if c.Density <= 0 {
		return &ConfigurationError{Field: "density", Reason: fmt.Sprintf("must be positive, got %d", c.Density)}
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 1) {
		return &ConfigurationError{Field: "radius", Reason: fmt.Sprintf("must be positive and finite, got %v", c.Radius)}
	}
	if c.Objective == nil {
		return &ConfigurationError{Field: "objective", Reason: "is required"}
	}
	if c.Method != Minimize && c.Method != Maximize {
		return &ConfigurationError{Field: "method", Reason: c.Method.String()}
	}
	if c.Variant != Basic && c.Variant != Inertia {
		return &ConfigurationError{Field: "variant", Reason: c.Variant.String()}
	}
	if c.Center.Dim() != 0 {
		if err := c.Center.CheckDim(c.Dimensions); err != nil {
			return fmt.Errorf("center: %w", err)
		}
	}
	return nil
}
