package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/GoSim-25-26J-441/swarm-core/internal/pso"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

func main() {
	defaults := config.DefaultSolver()

	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
		din        = flag.Int("din", defaults.Dimensions, "number of dimensions")
		density    = flag.Int("density", defaults.Density, "number of particles")
		objName    = flag.String("objective", defaults.Objective, "objective function")
		radius     = flag.Float64("radius", defaults.Radius, "search radius around the center")
		method     = flag.String("method", defaults.Method, "minimize or maximize")
		variant    = flag.String("variant", defaults.Variant, "basic or inertia")
		budget     = flag.Int("budget", defaults.Budget, "iteration budget")
		workers    = flag.Int("workers", defaults.Workers, "number of parallel workers")
		seed       = flag.Int64("seed", 0, "random seed (0 seeds from the clock)")
	)
	flag.Parse()

	log := logger.NewText(*logLevel, os.Stderr)
	logger.SetDefault(log)

	solver := defaults
	if *configPath != "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		solver = cfg.Solver
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "din":
			solver.Dimensions = *din
			if len(solver.Center) != *din {
				solver.Center = nil
			}
		case "density":
			solver.Density = *density
		case "objective":
			solver.Objective = *objName
		case "radius":
			solver.Radius = *radius
		case "method":
			solver.Method = *method
		case "variant":
			solver.Variant = *variant
		case "budget":
			solver.Budget = *budget
		case "workers":
			solver.Workers = *workers
		case "seed":
			solver.Seed = *seed
		}
	})

	cfg, err := solver.PSOConfig()
	if err != nil {
		log.Error("invalid solver configuration", "error", err)
		os.Exit(2)
	}
	cfg.Logger = log.With("component", "pso")

	s, err := pso.New(cfg)
	if err != nil {
		log.Error("failed to build swarm", "error", err)
		os.Exit(1)
	}
	res, err := s.Solve(solver.Budget, solver.Workers)
	if err != nil {
		log.Error("solve failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("score:       %g\n", res.Score)
	fmt.Printf("position:    %s\n", res.Position)
	fmt.Printf("rounds:      %d\n", res.Rounds)
	fmt.Printf("evaluations: %d\n", res.Evaluations)
	fmt.Printf("elapsed:     %s\n", utils.FormatDuration(res.Duration))
}
