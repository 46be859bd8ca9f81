package config

import (
	"fmt"
	"math"
	"os"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/pso"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := cfg.Solver.Validate(); err != nil {
		return fmt.Errorf("solver validation failed: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}

	return nil
}

// validateServer validates the daemon settings
func validateServer(s *Server) error {
	if s.HTTPAddr == "" && s.GRPCAddr == "" {
		return fmt.Errorf("at least one of http_addr or grpc_addr must be set")
	}
	if s.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("max_concurrent_runs must be positive, got %d", s.MaxConcurrentRuns)
	}
	if s.RunsPerSecond < 0 || math.IsNaN(s.RunsPerSecond) {
		return fmt.Errorf("runs_per_second cannot be negative, got %v", s.RunsPerSecond)
	}
	if s.RunsBurst < 0 {
		return fmt.Errorf("runs_burst cannot be negative, got %d", s.RunsBurst)
	}
	return nil
}

// Validate checks every solver key, including that the objective, method and
// variant names are known.
func (s *Solver) Validate() error {
	if s.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", s.Dimensions)
	}
	if s.Density <= 0 {
		return fmt.Errorf("density must be positive, got %d", s.Density)
	}
	if !(s.Radius > 0) || math.IsInf(s.Radius, 1) {
		return fmt.Errorf("radius must be positive and finite, got %v", s.Radius)
	}
	if s.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %d", s.Budget)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	if len(s.Center) != 0 && len(s.Center) != s.Dimensions {
		return fmt.Errorf("center has %d components, dimensions is %d", len(s.Center), s.Dimensions)
	}
	if _, err := objective.New(s.Objective); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	if _, err := pso.ParseMethod(s.Method); err != nil {
		return err
	}
	if _, err := pso.ParseVariant(s.Variant); err != nil {
		return err
	}
	return nil
}

// PSOConfig validates s and converts it to a solver configuration. A zero seed
// gives a time-seeded random source.
func (s *Solver) PSOConfig() (pso.Config, error) {
	if err := s.Validate(); err != nil {
		return pso.Config{}, err
	}
	fn, _ := objective.New(s.Objective)
	method, _ := pso.ParseMethod(s.Method)
	variant, _ := pso.ParseVariant(s.Variant)

	cfg := pso.Config{
		Dimensions: s.Dimensions,
		Density:    s.Density,
		Objective:  fn,
		Radius:     s.Radius,
		Method:     method,
		Variant:    variant,
		Rand:       utils.NewRandSource(s.Seed),
	}
	if len(s.Center) != 0 {
		cfg.Center = vector.New(s.Center...)
	}
	return cfg, nil
}
