package pso

import (
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Inertia rule coefficients.
const (
	refineBestWeight     = 0.2
	refineNoiseWeight    = 0.05
	refineVelocityWeight = 0.05
	exploreNoiseWeight   = 0.1
	explorePersonalPull  = 0.5
)

// updateBasic moves slot i toward its personal best and the global best g.
// The move is always taken; only the personal best is guarded.
func (s *Solver) updateBasic(i int, g vector.Vector) {
	sw := s.swarm
	p := sw.positions[i]
	pb := sw.bests[i].Position

	next := p.Add(s.sampler.noise()).
		Add(pb.Sub(p).Normalize()).
		Add(g.Sub(p).Normalize())
	next = s.sampler.clamp(next)

	score := s.objective.Evaluate(next)
	s.commit(i, next, score)
}

// updateInertia applies the velocity rule to slot i against global best g.
// A particle sitting exactly on g only takes a refinement step if it scores
// better and keeps its velocity; every other particle moves unconditionally
// and records its displacement direction as the new velocity.
func (s *Solver) updateInertia(i int, g vector.Vector) {
	sw := s.swarm
	p := sw.positions[i]
	pb := sw.bests[i].Position
	vel := sw.velocities[i]

	var next vector.Vector
	var score float64
	if p.Equal(g) {
		noise := s.sampler.noise()
		u := s.rand.Float64()
		refined := p.Add(pb.Sub(p).Normalize().Scale(refineBestWeight)).
			Add(noise.Scale(u * refineNoiseWeight)).
			Add(vel.Scale(refineVelocityWeight))
		refined = s.sampler.clamp(refined)

		// p may still be an initial sample outside the search sphere.
		kept := s.sampler.clamp(p)
		current := s.objective.Evaluate(kept)
		refinedScore := s.objective.Evaluate(refined)
		if s.cfg.Method.better(refinedScore, current) {
			next, score = refined, refinedScore
		} else {
			next, score = kept, current
		}
	} else {
		noise := s.sampler.noise()
		u := s.rand.Float64()
		next = p.Add(noise.Scale(u * exploreNoiseWeight)).
			Add(pb.Sub(p).Normalize().Scale(explorePersonalPull)).
			Add(g.Sub(p).Normalize()).
			Add(vel)
		next = s.sampler.clamp(next)
		score = s.objective.Evaluate(next)
		sw.velocities[i] = next.Sub(p).Normalize()
	}

	s.commit(i, next, score)
}

// commit stores the new position of slot i and promotes it to personal best
// when it scores strictly better.
func (s *Solver) commit(i int, next vector.Vector, score float64) {
	sw := s.swarm
	if s.cfg.Method.better(score, sw.bests[i].Score) {
		sw.bests[i] = Best{Score: score, Position: next}
	}
	sw.positions[i] = next
}
