package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/pso"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// Collector keeps the convergence trace of every run in memory
type Collector struct {
	mu     sync.RWMutex
	traces map[string]*models.Trace
	now    func() time.Time
}

// NewCollector creates a new trace collector
func NewCollector() *Collector {
	return &Collector{
		traces: make(map[string]*models.Trace),
		now:    time.Now,
	}
}

// Record appends the best score of a round to the run's trace
func (c *Collector) Record(runID string, round int, best float64) {
	c.trace(runID).Add(models.ConvergencePoint{
		Round:     round,
		Best:      best,
		Timestamp: c.now(),
	})
}

// trace returns the trace for runID, creating it on first use
func (c *Collector) trace(runID string) *models.Trace {
	c.mu.RLock()
	tr, ok := c.traces[runID]
	c.mu.RUnlock()
	if ok {
		return tr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tr, ok = c.traces[runID]; !ok {
		tr = &models.Trace{RunID: runID}
		c.traces[runID] = tr
	}
	return tr
}

// Trace returns a copy of the points recorded for runID
func (c *Collector) Trace(runID string) []models.ConvergencePoint {
	c.mu.RLock()
	tr, ok := c.traces[runID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return tr.Points()
}

// Since returns the points recorded for runID starting at index from
func (c *Collector) Since(runID string, from int) []models.ConvergencePoint {
	c.mu.RLock()
	tr, ok := c.traces[runID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return tr.Since(from)
}

// Summary aggregates the best scores recorded for runID
func (c *Collector) Summary(runID string) utils.Summary {
	points := c.Trace(runID)
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Best
	}
	return utils.Summarize(values)
}

// Convergence runs strategy over the trace of runID. A nil strategy uses
// the combined default.
func (c *Collector) Convergence(runID string, strategy ConvergenceStrategy) (bool, string) {
	if strategy == nil {
		strategy = NewCombinedStrategy(DefaultConvergenceConfig())
	}
	return strategy.CheckConvergence(c.Trace(runID))
}

// RunIDs returns the runs that have a trace, sorted
func (c *Collector) RunIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.traces))
	for id := range c.traces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Forget drops the trace of runID
func (c *Collector) Forget(runID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.traces, runID)
}

// Observer returns a pso.Observer that records rounds into runID's trace
func (c *Collector) Observer(runID string) pso.Observer {
	c.trace(runID)
	return &traceObserver{collector: c, runID: runID}
}

type traceObserver struct {
	collector *Collector
	runID     string
}

func (o *traceObserver) RoundCompleted(round int, best float64) {
	o.collector.Record(o.runID, round, best)
}

func (o *traceObserver) SolveCompleted(pso.Result) {}
