package config

// Config represents the swarm-core configuration file
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level,omitempty"`
	Solver   Solver `yaml:"solver" json:"solver"`
	Server   Server `yaml:"server" json:"server"`
}

// Solver describes one optimization run
type Solver struct {
	Dimensions int       `yaml:"dimensions" json:"dimensions"`
	Density    int       `yaml:"density" json:"density"`
	Objective  string    `yaml:"objective" json:"objective"`
	Center     []float64 `yaml:"center,omitempty" json:"center,omitempty"`
	Radius     float64   `yaml:"radius" json:"radius"`
	Method     string    `yaml:"method" json:"method"`   // minimize or maximize
	Variant    string    `yaml:"variant" json:"variant"` // basic or inertia
	Budget     int       `yaml:"budget" json:"budget"`
	Workers    int       `yaml:"workers" json:"workers"`
	Seed       int64     `yaml:"seed,omitempty" json:"seed,omitempty"` // 0 = time based
}

// Server configures the run daemon
type Server struct {
	HTTPAddr          string  `yaml:"http_addr" json:"http_addr"`
	GRPCAddr          string  `yaml:"grpc_addr" json:"grpc_addr"`
	MaxConcurrentRuns int     `yaml:"max_concurrent_runs" json:"max_concurrent_runs"`
	RunsPerSecond     float64 `yaml:"runs_per_second" json:"runs_per_second"` // 0 = unlimited
	RunsBurst         int     `yaml:"runs_burst,omitempty" json:"runs_burst,omitempty"`
}
