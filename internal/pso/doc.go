// Package pso implements a particle swarm optimizer over vector.Vector
// positions.
//
// A Solver owns a swarm of density particles sampled around a center inside
// a radius. Each round it snapshots the global best, then a fixed pool of
// workers moves the particles of their own static partition toward their
// personal best and the global best with random exploration. Positions are
// clamped back onto the search sphere after every move. The only stop
// condition is the round budget handed to Solve.
//
// Two update rules are available:
//   - Basic: p + noise + dir(pb - p) + dir(g - p), applied unconditionally.
//   - Inertia: adds a per-slot velocity and a local refinement step for the
//     particle sitting on the global best.
//
// Usage:
//
//	cfg := pso.DefaultConfig()
//	cfg.Density = 200
//	solver, err := pso.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := solver.Solve(pso.DefaultBudget, pso.DefaultWorkers)
package pso
