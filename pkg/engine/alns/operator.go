package alns

import (
	"math/rand"

	"github.com/lintang-b-s/Courierx/pkg/datastructure"
)

// RemovalOperator unassigns q requests from the solution.
type RemovalOperator func(problem *datastructure.Problem, solution *datastructure.Solution,
	q int, rng *rand.Rand) error

// InsertionOperator reinserts banked requests, up to q of them unless
// insertUnlimited lifts that limit; either way it stops after
// 2*min(q, bank) iterations. noise perturbs the insertion costs it ranks by.
type InsertionOperator func(problem *datastructure.Problem, solution *datastructure.Solution,
	q int, insertUnlimited bool, noise NoiseFunc, rng *rand.Rand) error

// NoiseFunc maps a feasible insertion cost to the value used for ranking.
type NoiseFunc func(cost float64) float64

// selectWithWeight draws an index by roulette wheel over cumulative
// weights; all-nonpositive weights degrade to a uniform draw.
func selectWithWeight(weights []float64, rng *rand.Rand) int {
	totalWeight := 0.0
	for _, w := range weights {
		if w > 0 {
			totalWeight += w
		}
	}
	if totalWeight <= 0 {
		return rng.Intn(len(weights))
	}

	randomValue := rng.Float64() * totalWeight
	cumulativeWeight := 0.0
	for i, w := range weights {
		if w > 0 {
			cumulativeWeight += w
		}
		if randomValue <= cumulativeWeight {
			return i
		}
	}
	return len(weights) - 1
}
