package vector

import (
	"errors"
	"math"
	"testing"
)

func TestArithmetic(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, -5, 0.5)

	tests := []struct {
		name string
		got  Vector
		want Vector
	}{
		{"add", a.Add(b), New(5, -3, 3.5)},
		{"sub", a.Sub(b), New(-3, 7, 2.5)},
		{"scale", a.Scale(2), New(2, 4, 6)},
		{"map", a.Map(func(x float64) float64 { return -x }), New(-1, -2, -3)},
	}
	for _, tt := range tests {
		if !tt.got.Equal(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}

	// operands are untouched
	if !a.Equal(New(1, 2, 3)) || !b.Equal(New(4, -5, 0.5)) {
		t.Errorf("operands modified: a=%v b=%v", a, b)
	}
}

func TestNewCopiesInput(t *testing.T) {
	in := []float64{1, 2}
	v := New(in...)
	in[0] = 99
	if v.At(0) != 1 {
		t.Errorf("Expected 1, got %v", v.At(0))
	}

	out := v.Components()
	out[1] = 99
	if v.At(1) != 2 {
		t.Errorf("Expected 2, got %v", v.At(1))
	}
}

func TestDimensionMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected error panic value, got %T", r)
		}
		var dm *ErrDimensionMismatch
		if !errors.As(err, &dm) {
			t.Fatalf("expected ErrDimensionMismatch, got %v", err)
		}
		if dm.Expected != 2 || dm.Actual != 3 {
			t.Errorf("Expected 2/3, got %d/%d", dm.Expected, dm.Actual)
		}
	}()
	New(1, 2).Add(New(1, 2, 3))
}

func TestCheckDim(t *testing.T) {
	if err := New(1, 2).CheckDim(2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	var dm *ErrDimensionMismatch
	if err := New(1, 2).CheckDim(5); !errors.As(err, &dm) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMagnitudeAndNormalize(t *testing.T) {
	if got := New(3, 4).Magnitude(); got != 5 {
		t.Errorf("Expected 5, got %v", got)
	}

	for _, v := range []Vector{New(3, 4), New(1e-9, 0, 0), New(-7, 2, 1e6), New(0.1)} {
		if got := v.Normalize().Magnitude(); math.Abs(got-1) > 1e-12 {
			t.Errorf("|normalize(%v)| = %v, expected 1", v, got)
		}
	}
}

func TestNormalizeZeroFallsBackToZero(t *testing.T) {
	n := Zero(3).Normalize()
	if n.Dim() != 3 || !n.Equal(Zero(3)) {
		t.Errorf("Expected zero vector of dim 3, got %v", n)
	}

	if _, err := Zero(3).Unit(); !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}

	u, err := New(0, 2).Unit()
	if err != nil {
		t.Fatalf("Unit failed: %v", err)
	}
	if !u.Equal(New(0, 1)) {
		t.Errorf("Expected (0, 1), got %v", u)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Vector
		want bool
	}{
		{New(1, 2), New(1, 2), true},
		{New(1, 2), New(1, 2.0000001), false},
		{New(1, 2), New(1, 2, 0), false},
		{New(math.NaN()), New(math.NaN()), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFillAndDistance(t *testing.T) {
	v := Fill(3, func(i int) float64 { return float64(i) })
	if !v.Equal(New(0, 1, 2)) {
		t.Errorf("Expected (0, 1, 2), got %v", v)
	}
	if got := v.Distance(New(0, 0, 0)); math.Abs(got-math.Sqrt(5)) > 1e-12 {
		t.Errorf("Expected sqrt(5), got %v", got)
	}
	if got := v.String(); got != "(0, 1, 2)" {
		t.Errorf("Expected \"(0, 1, 2)\", got %q", got)
	}
}
