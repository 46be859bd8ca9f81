package swarmd

import (
	"math"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// jsonFloat maps values JSON cannot carry (NaN, ±Inf) to null.
func jsonFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func convertRunToJSON(rec *RunRecord) map[string]any {
	out := map[string]any{
		"id":                 rec.Run.ID,
		"status":             string(rec.Run.Status),
		"created_at_unix_ms": utils.UnixMs(rec.Run.CreatedAt),
		"started_at_unix_ms": utils.UnixMs(rec.Run.StartedAt),
		"ended_at_unix_ms":   utils.UnixMs(rec.Run.EndedAt),
		"duration_ms":        utils.DurationMs(rec.Run.Duration()),
		"error":              rec.Run.Error,
		"solver":             convertSolverToJSON(rec.Solver),
	}
	if rec.Result != nil {
		out["result"] = convertResultToJSON(rec.Result)
	}
	return out
}

func convertSolverToJSON(s config.Solver) map[string]any {
	out := map[string]any{
		"dimensions": s.Dimensions,
		"density":    s.Density,
		"objective":  s.Objective,
		"radius":     s.Radius,
		"method":     s.Method,
		"variant":    s.Variant,
		"budget":     s.Budget,
		"workers":    s.Workers,
		"seed":       s.Seed,
	}
	if len(s.Center) != 0 {
		out["center"] = s.Center
	}
	return out
}

func convertResultToJSON(res *models.RunResult) map[string]any {
	return map[string]any{
		"score":       jsonFloat(res.Score),
		"position":    res.Position,
		"rounds":      res.Rounds,
		"evaluations": res.Evaluations,
		"duration_ms": utils.DurationMs(res.Duration),
	}
}

func convertPointsToJSON(points []models.ConvergencePoint) []map[string]any {
	out := make([]map[string]any, 0, len(points))
	for _, p := range points {
		out = append(out, convertPointToJSON(p))
	}
	return out
}

func convertPointToJSON(p models.ConvergencePoint) map[string]any {
	return map[string]any{
		"round":     p.Round,
		"best":      jsonFloat(p.Best),
		"timestamp": p.Timestamp.Format(time.RFC3339Nano),
	}
}

func convertSummaryToJSON(s utils.Summary) map[string]any {
	return map[string]any{
		"count":  s.Count,
		"nan":    s.NaN,
		"min":    jsonFloat(s.Min),
		"max":    jsonFloat(s.Max),
		"mean":   jsonFloat(s.Mean),
		"stddev": jsonFloat(s.StdDev),
		"p50":    jsonFloat(s.P50),
	}
}
