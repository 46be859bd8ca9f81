package swarmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// Callback is the webhook notified when a run reaches a terminal status.
type Callback struct {
	URL    string
	Secret string
}

// RunRecord is a point-in-time copy of a stored run.
type RunRecord struct {
	Run      models.Run
	Solver   config.Solver
	Result   *models.RunResult
	Callback *Callback
}

type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]*RunRecord
	order []string
	now   func() time.Time
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func validateRunID(runID string) error {
	if strings.ContainsAny(runID, "/:? ") {
		return fmt.Errorf("%w: %q cannot contain '/', ':', '?' or spaces", ErrInvalidRunID, runID)
	}
	return nil
}

// Create stores a new pending run. An empty runID is replaced by a generated one.
func (s *RunStore) Create(runID string, solver config.Solver, cb *Callback) (*RunRecord, error) {
	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if err := validateRunID(runID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		Run: models.Run{
			ID:        runID,
			Status:    models.RunStatusPending,
			CreatedAt: s.now(),
		},
		Solver:   solver,
		Callback: cb,
	}
	s.runs[runID] = rec
	s.order = append(s.order, runID)
	out := *rec
	return &out, nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	out := *rec
	return &out, true
}

// List returns runs newest first, optionally filtered by status. An empty
// status matches every run.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out := make([]*RunRecord, 0, min(limit, len(s.order)))
	skipped := 0
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.runs[s.order[i]]
		if status != "" && rec.Run.Status != status {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out
}

// Transition moves a run from one status to another and fails when the run
// is not currently in from.
func (s *RunStore) Transition(runID string, from, to models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status != from {
		return nil, fmt.Errorf("run %s is %s, not %s", runID, rec.Run.Status, from)
	}

	s.setStatusLocked(rec, to, errMsg)
	out := *rec
	return &out, nil
}

// Finish records the outcome of an executing run.
func (s *RunStore) Finish(runID string, result *models.RunResult, runErr error) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if runErr != nil {
		s.setStatusLocked(rec, models.RunStatusFailed, runErr.Error())
	} else {
		rec.Result = result
		s.setStatusLocked(rec, models.RunStatusCompleted, "")
	}
	out := *rec
	return &out, nil
}

func (s *RunStore) setStatusLocked(rec *RunRecord, status models.RunStatus, errMsg string) {
	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	switch {
	case status == models.RunStatusRunning:
		if rec.Run.StartedAt.IsZero() {
			rec.Run.StartedAt = s.now()
		}
	case status.Terminal():
		rec.Run.EndedAt = s.now()
	}
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
