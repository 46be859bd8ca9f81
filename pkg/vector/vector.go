// Package vector provides an immutable fixed-dimension real vector.
//
// Every arithmetic operation returns a new Vector; the receiver is never
// modified, so vectors can be shared freely between goroutines.
//
// Binary operations require operands of equal dimension. A mismatch panics
// with *ErrDimensionMismatch, the same way shape errors are reported by
// numeric libraries; callers that run untrusted combinations recover it.
package vector

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDegenerateVector is returned by Unit for a zero-magnitude vector.
var ErrDegenerateVector = errors.New("cannot normalize zero-magnitude vector")

// ErrDimensionMismatch indicates operands of different dimensions.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Vector is an ordered sequence of float64 components.
type Vector struct {
	c []float64
}

// New creates a vector from the given components.
func New(components ...float64) Vector {
	c := make([]float64, len(components))
	copy(c, components)
	return Vector{c: c}
}

// Zero returns the zero vector of dimension din.
func Zero(din int) Vector {
	if din < 0 {
		din = 0
	}
	return Vector{c: make([]float64, din)}
}

// Fill returns a vector of dimension din whose components are produced by fn
// in index order.
func Fill(din int, fn func(i int) float64) Vector {
	v := Zero(din)
	for i := range v.c {
		v.c[i] = fn(i)
	}
	return v
}

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v.c) }

// At returns the i-th component.
func (v Vector) At(i int) float64 { return v.c[i] }

// Components returns a copy of the components.
func (v Vector) Components() []float64 {
	out := make([]float64, len(v.c))
	copy(out, v.c)
	return out
}

// CheckDim returns *ErrDimensionMismatch if v does not have dimension din.
func (v Vector) CheckDim(din int) error {
	if len(v.c) != din {
		return &ErrDimensionMismatch{Expected: din, Actual: len(v.c)}
	}
	return nil
}

func (v Vector) mustMatch(o Vector) {
	if len(v.c) != len(o.c) {
		panic(&ErrDimensionMismatch{Expected: len(v.c), Actual: len(o.c)})
	}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	v.mustMatch(o)
	out := Zero(len(v.c))
	for i, x := range v.c {
		out.c[i] = x + o.c[i]
	}
	return out
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	v.mustMatch(o)
	out := Zero(len(v.c))
	for i, x := range v.c {
		out.c[i] = x - o.c[i]
	}
	return out
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	out := Zero(len(v.c))
	for i, x := range v.c {
		out.c[i] = x * s
	}
	return out
}

// Map applies fn to every component in index order.
func (v Vector) Map(fn func(x float64) float64) Vector {
	out := Zero(len(v.c))
	for i, x := range v.c {
		out.c[i] = fn(x)
	}
	return out
}

// Magnitude returns the Euclidean norm.
func (v Vector) Magnitude() float64 {
	sum := 0.0
	for _, x := range v.c {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Distance returns |v - o|.
func (v Vector) Distance(o Vector) float64 {
	return v.Sub(o).Magnitude()
}

// Normalize returns the unit vector in the direction of v.
// A zero-magnitude vector normalizes to the zero vector.
func (v Vector) Normalize() Vector {
	m := v.Magnitude()
	if m == 0 {
		return Zero(len(v.c))
	}
	return v.Scale(1 / m)
}

// Unit is the strict form of Normalize: it fails with ErrDegenerateVector
// instead of falling back to the zero vector.
func (v Vector) Unit() (Vector, error) {
	if v.Magnitude() == 0 {
		return Vector{}, ErrDegenerateVector
	}
	return v.Normalize(), nil
}

// Equal reports exact component-wise equality. Vectors of different
// dimensions are never equal.
func (v Vector) Equal(o Vector) bool {
	if len(v.c) != len(o.c) {
		return false
	}
	for i, x := range v.c {
		if x != o.c[i] {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, x := range v.c {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g", x)
	}
	b.WriteByte(')')
	return b.String()
}
