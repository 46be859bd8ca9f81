package pso

import (
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// selectBest evaluates every position from scratch and returns the index and
// score of the extremal one. Ties go to the lowest index. positions must not
// be empty.
func selectBest(positions []vector.Vector, obj ObjectiveFunction, m Method) (int, float64) {
	best := -1
	var bestScore float64
	for i, p := range positions {
		score := obj.Evaluate(p)
		if best < 0 || m.better(score, bestScore) {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
