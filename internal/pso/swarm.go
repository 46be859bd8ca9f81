package pso

import (
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Best is the best position a particle slot has visited, with its score.
type Best struct {
	Score    float64
	Position vector.Vector
}

// Swarm holds the per-slot state of every particle. The slices are parallel
// and always have the same length. velocities is nil for the basic variant.
type Swarm struct {
	positions  []vector.Vector
	bests      []Best
	velocities []vector.Vector
}

// Len returns the number of particle slots.
func (s *Swarm) Len() int { return len(s.positions) }

// Snapshot is a read-only copy of the swarm state.
type Snapshot struct {
	Positions  []vector.Vector
	Bests      []Best
	Velocities []vector.Vector
}

// Len returns the number of particle slots.
func (s Snapshot) Len() int { return len(s.Positions) }

func (s *Swarm) snapshot() Snapshot {
	snap := Snapshot{
		Positions: append([]vector.Vector(nil), s.positions...),
		Bests:     append([]Best(nil), s.bests...),
	}
	if s.velocities != nil {
		snap.Velocities = append([]vector.Vector(nil), s.velocities...)
	}
	return snap
}

// sampler draws random vectors around a center.
type sampler struct {
	rand   RandomSource
	center vector.Vector
	radius float64
}

// noise returns a vector with every component uniform in [-1, 1).
func (s sampler) noise() vector.Vector {
	return vector.Fill(s.center.Dim(), func(int) float64 {
		return s.rand.Float64()*2 - 1
	})
}

// particle returns center + noise * (radius * u). The displacement is biased
// toward the center; it is not a uniform draw from the ball.
func (s sampler) particle() vector.Vector {
	n := s.noise()
	scale := s.radius * s.rand.Float64()
	return s.center.Add(n.Scale(scale))
}

// clamp projects v back onto the sphere of radius around center when it lies
// outside. A relative tolerance keeps the projection idempotent under
// floating-point rounding.
func (s sampler) clamp(v vector.Vector) vector.Vector {
	d := v.Sub(s.center)
	if d.Magnitude() > s.radius*(1+clampTolerance) {
		return d.Normalize().Scale(s.radius).Add(s.center)
	}
	return v
}

const clampTolerance = 1e-12

func newSwarm(density int, smp sampler, obj ObjectiveFunction, withVelocity bool) *Swarm {
	sw := &Swarm{
		positions: make([]vector.Vector, density),
		bests:     make([]Best, density),
	}
	if withVelocity {
		sw.velocities = make([]vector.Vector, density)
	}
	for i := 0; i < density; i++ {
		p := smp.particle()
		sw.positions[i] = p
		sw.bests[i] = Best{Score: obj.Evaluate(p), Position: p}
		if withVelocity {
			sw.velocities[i] = smp.particle()
		}
	}
	return sw
}
