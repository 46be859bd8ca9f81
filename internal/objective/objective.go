// Package objective provides the benchmark objective functions the solver can
// be pointed at by name.
//
// Every function is a pure function of its input and safe to call from many
// goroutines at once.
package objective

import (
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Function evaluates a position and returns its score.
type Function interface {
	Evaluate(v vector.Vector) float64
	Name() string
}

// Objective names accepted by New.
const (
	NameRastrigin  = "rastrigin"
	NameSphere     = "sphere"
	NameRosenbrock = "rosenbrock"
	NameAckley     = "ackley"
	NameStyblinski = "styblinski"
)

var registry = map[string]func() Function{
	NameRastrigin:  func() Function { return Rastrigin{} },
	NameSphere:     func() Function { return Sphere{} },
	NameRosenbrock: func() Function { return Rosenbrock{} },
	NameAckley:     func() Function { return Ackley{} },
	NameStyblinski: func() Function { return Styblinski{} },
}

// New creates an objective function from its name.
func New(name string) (Function, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, &UnknownObjectiveError{Name: name}
	}
	return ctor(), nil
}

// Names returns the registered objective names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownObjectiveError indicates an unknown objective name
type UnknownObjectiveError struct {
	Name string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective: " + e.Name
}

// Rastrigin is 10n + sum(x_i^2 - 10 cos(2 pi x_i)). Global minimum 0 at the origin.
type Rastrigin struct{}

func (Rastrigin) Name() string { return NameRastrigin }

func (Rastrigin) Evaluate(v vector.Vector) float64 {
	sum := 10 * float64(v.Dim())
	for i := 0; i < v.Dim(); i++ {
		x := v.At(i)
		sum += x*x - 10*math.Cos(2*math.Pi*x)
	}
	return sum
}

// Sphere is sum(x_i^2). Global minimum 0 at the origin.
type Sphere struct{}

func (Sphere) Name() string { return NameSphere }

func (Sphere) Evaluate(v vector.Vector) float64 {
	sum := 0.0
	for i := 0; i < v.Dim(); i++ {
		sum += v.At(i) * v.At(i)
	}
	return sum
}

// Rosenbrock is sum(100 (x_{i+1} - x_i^2)^2 + (1 - x_i)^2). Global minimum 0 at (1, ..., 1).
type Rosenbrock struct{}

func (Rosenbrock) Name() string { return NameRosenbrock }

func (Rosenbrock) Evaluate(v vector.Vector) float64 {
	sum := 0.0
	for i := 0; i+1 < v.Dim(); i++ {
		x, next := v.At(i), v.At(i+1)
		sum += 100*(next-x*x)*(next-x*x) + (1-x)*(1-x)
	}
	return sum
}

// Ackley is the n-dimensional Ackley function. Global minimum 0 at the origin.
type Ackley struct{}

func (Ackley) Name() string { return NameAckley }

func (Ackley) Evaluate(v vector.Vector) float64 {
	n := float64(v.Dim())
	if n == 0 {
		return 0
	}
	sumSq, sumCos := 0.0, 0.0
	for i := 0; i < v.Dim(); i++ {
		x := v.At(i)
		sumSq += x * x
		sumCos += math.Cos(2 * math.Pi * x)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
}

// Styblinski is the Styblinski-Tang function, sum(x^4 - 16x^2 + 5x) / 2.
// Global minimum about -39.16599n at x_i = -2.903534.
type Styblinski struct{}

func (Styblinski) Name() string { return NameStyblinski }

func (Styblinski) Evaluate(v vector.Vector) float64 {
	sum := 0.0
	for i := 0; i < v.Dim(); i++ {
		x := v.At(i)
		sum += math.Pow(x, 4) - 16*x*x + 5*x
	}
	return sum / 2
}
