package swarmd

import (
	"errors"
	"testing"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

func TestRunStoreCreateGet(t *testing.T) {
	s := NewRunStore()
	rec, err := s.Create("", smallSolver(), nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Run.ID == "" {
		t.Fatalf("expected generated run id")
	}
	if rec.Run.Status != models.RunStatusPending {
		t.Fatalf("expected pending, got %s", rec.Run.Status)
	}
	if rec.Run.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, ok := s.Get(rec.Run.ID)
	if !ok {
		t.Fatalf("expected run to be found")
	}
	if got.Solver.Objective != "sphere" {
		t.Fatalf("expected solver to be stored, got %+v", got.Solver)
	}
}

func TestRunStoreCreateDuplicateAndInvalid(t *testing.T) {
	s := NewRunStore()
	if _, err := s.Create("run-1", smallSolver(), nil); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := s.Create("run-1", smallSolver(), nil); !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
	for _, id := range []string{"a/b", "a:stop", "a b"} {
		if _, err := s.Create(id, smallSolver(), nil); !errors.Is(err, ErrInvalidRunID) {
			t.Fatalf("%q: expected ErrInvalidRunID, got %v", id, err)
		}
	}
}

func TestRunStoreGetReturnsCopy(t *testing.T) {
	s := NewRunStore()
	rec, _ := s.Create("run-copy", smallSolver(), nil)
	rec.Run.Status = models.RunStatusFailed

	got, _ := s.Get("run-copy")
	if got.Run.Status != models.RunStatusPending {
		t.Fatalf("mutating a returned record must not change the store")
	}
}

func TestRunStoreTransition(t *testing.T) {
	s := NewRunStore()
	s.Create("run-t", smallSolver(), nil)

	rec, err := s.Transition("run-t", models.RunStatusPending, models.RunStatusRunning, "")
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if rec.Run.StartedAt.IsZero() {
		t.Fatalf("expected started_at to be set")
	}

	if _, err := s.Transition("run-t", models.RunStatusPending, models.RunStatusCancelled, ""); err == nil {
		t.Fatalf("expected transition from wrong status to fail")
	}
	if _, err := s.Transition("missing", models.RunStatusPending, models.RunStatusRunning, ""); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreFinish(t *testing.T) {
	s := NewRunStore()
	s.Create("ok", smallSolver(), nil)
	s.Create("bad", smallSolver(), nil)

	rec, err := s.Finish("ok", &models.RunResult{Score: 1.5, Rounds: 4}, nil)
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	if rec.Run.Status != models.RunStatusCompleted || rec.Result == nil || rec.Result.Score != 1.5 {
		t.Fatalf("unexpected completed record: %+v", rec)
	}
	if rec.Run.EndedAt.IsZero() {
		t.Fatalf("expected ended_at to be set")
	}

	rec, err = s.Finish("bad", nil, errors.New("solve aborted"))
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	if rec.Run.Status != models.RunStatusFailed || rec.Run.Error != "solve aborted" {
		t.Fatalf("unexpected failed record: %+v", rec.Run)
	}
}

func TestRunStoreListNewestFirstWithFilter(t *testing.T) {
	s := NewRunStore()
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		s.Create(id, smallSolver(), nil)
	}
	s.Finish("r2", &models.RunResult{}, nil)
	s.Finish("r4", &models.RunResult{}, nil)

	all := s.List(10, 0, "")
	if len(all) != 4 || all[0].Run.ID != "r4" || all[3].Run.ID != "r1" {
		t.Fatalf("unexpected order: %v", ids(all))
	}

	done := s.List(10, 0, models.RunStatusCompleted)
	if len(done) != 2 || done[0].Run.ID != "r4" || done[1].Run.ID != "r2" {
		t.Fatalf("unexpected completed runs: %v", ids(done))
	}

	page := s.List(2, 1, "")
	if len(page) != 2 || page[0].Run.ID != "r3" || page[1].Run.ID != "r2" {
		t.Fatalf("unexpected page: %v", ids(page))
	}
}

func ids(recs []*RunRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Run.ID
	}
	return out
}
