package models

import (
	"strings"
	"sync"
	"time"
)

// RunStatus represents the status of an optimization run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether no further transition can happen.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// ParseRunStatus parses a status name, case-insensitively.
func ParseRunStatus(s string) (RunStatus, bool) {
	switch st := RunStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return st, true
	}
	return "", false
}

// Run represents one optimization run
type Run struct {
	ID        string            `json:"id"`
	Status    RunStatus         `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	StartedAt time.Time         `json:"started_at,omitempty"`
	EndedAt   time.Time         `json:"ended_at,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Duration returns the wall time between start and end, or zero while the
// run has not finished.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// RunResult is the outcome of a completed run
type RunResult struct {
	Score       float64       `json:"score"`
	Position    []float64     `json:"position"`
	Rounds      int           `json:"rounds"`
	Evaluations int64         `json:"evaluations"`
	Duration    time.Duration `json:"duration"`
}

// ConvergencePoint is the global best score observed at the start of a round
type ConvergencePoint struct {
	Round     int       `json:"round"`
	Best      float64   `json:"best"`
	Timestamp time.Time `json:"timestamp"`
}

// Trace is the convergence history of a run (thread-safe)
type Trace struct {
	RunID  string
	points []ConvergencePoint
	mu     sync.RWMutex
}

// Add appends a point to the trace
func (t *Trace) Add(p ConvergencePoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = append(t.points, p)
}

// Points returns a copy of all points
func (t *Trace) Points() []ConvergencePoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ConvergencePoint, len(t.points))
	copy(out, t.points)
	return out
}

// Since returns a copy of the points from index from onward
func (t *Trace) Since(from int) []ConvergencePoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if from < 0 {
		from = 0
	}
	if from >= len(t.points) {
		return nil
	}
	out := make([]ConvergencePoint, len(t.points)-from)
	copy(out, t.points[from:])
	return out
}

// Len returns the number of points recorded
func (t *Trace) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}
