package swarmd

import (
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

func smallSolver() config.Solver {
	return config.Solver{
		Dimensions: 2,
		Density:    10,
		Objective:  "sphere",
		Radius:     2,
		Method:     "minimize",
		Variant:    "basic",
		Budget:     4,
		Workers:    2,
		Seed:       1,
	}
}

func newTestExecutor(store *RunStore, opts ExecutorOptions) *RunExecutor {
	if opts.MaxConcurrentRuns == 0 {
		opts.MaxConcurrentRuns = 2
	}
	opts.Logger = logger.Discard()
	return NewRunExecutor(store, opts)
}

func waitForStatus(t *testing.T, store *RunStore, runID string, want models.RunStatus) *RunRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if !ok {
			t.Fatalf("run %s not found", runID)
		}
		if rec.Run.Status == want {
			return rec
		}
		if rec.Run.Status.Terminal() {
			t.Fatalf("run %s reached %s (error %q), want %s", runID, rec.Run.Status, rec.Run.Error, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for run %s to reach %s", runID, want)
	return nil
}
