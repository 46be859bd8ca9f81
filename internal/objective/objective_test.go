package objective

import (
	"errors"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

func TestNewObjectiveFunction(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			fn, err := New(name)
			if err != nil {
				t.Fatalf("Expected no error for %s, got %v", name, err)
			}
			if fn.Name() != name {
				t.Errorf("Expected name %s, got %s", name, fn.Name())
			}
		})
	}
}

func TestNewObjectiveFunctionUnknown(t *testing.T) {
	_, err := New("himmelblau")
	var unknown *UnknownObjectiveError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownObjectiveError, got %v", err)
	}
	if unknown.Name != "himmelblau" {
		t.Errorf("Expected name 'himmelblau', got '%s'", unknown.Name)
	}
}

func TestKnownOptima(t *testing.T) {
	tests := []struct {
		fn   Function
		at   vector.Vector
		want float64
	}{
		{Rastrigin{}, vector.Zero(5), 0},
		{Sphere{}, vector.Zero(3), 0},
		{Rosenbrock{}, vector.New(1, 1, 1, 1), 0},
		{Ackley{}, vector.Zero(2), 0},
		{Styblinski{}, vector.New(-2.903534, -2.903534), -78.33233},
	}
	for _, tt := range tests {
		t.Run(tt.fn.Name(), func(t *testing.T) {
			got := tt.fn.Evaluate(tt.at)
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("Expected %v at %v, got %v", tt.want, tt.at, got)
			}
		})
	}
}

func TestRastriginAwayFromOptimum(t *testing.T) {
	// x = 1 in one dimension: 10 + 1 - 10cos(2pi) = 1
	got := (Rastrigin{}).Evaluate(vector.New(1))
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected 1, got %v", got)
	}
	if (Rastrigin{}).Evaluate(vector.New(0.5, 0.5)) <= 0 {
		t.Error("Expected positive value away from the optimum")
	}
}

func TestSphereValue(t *testing.T) {
	if got := (Sphere{}).Evaluate(vector.New(1, 2, 3)); got != 14 {
		t.Errorf("Expected 14, got %v", got)
	}
}
