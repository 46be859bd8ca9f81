package config

import (
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/pso"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Solver:   DefaultSolver(),
		Server: Server{
			HTTPAddr:          ":8080",
			GRPCAddr:          ":50051",
			MaxConcurrentRuns: 2,
			RunsPerSecond:     5,
			RunsBurst:         5,
		},
	}
}

// DefaultSolver returns the classic 5-dimensional Rastrigin run.
func DefaultSolver() Solver {
	return Solver{
		Dimensions: pso.DefaultDimensions,
		Density:    pso.DefaultDensity,
		Objective:  objective.NameRastrigin,
		Radius:     pso.DefaultRadius,
		Method:     pso.Minimize.String(),
		Variant:    pso.Basic.String(),
		Budget:     pso.DefaultBudget,
		Workers:    pso.DefaultWorkers,
	}
}
