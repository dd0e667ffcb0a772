package alns

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePairValues(t *testing.T) {
	values := map[requestPair]float64{
		orderedPair(1, 2): 10,
		orderedPair(1, 3): 20,
		orderedPair(2, 3): 30,
	}
	normalizePairValues(values)
	require.InDelta(t, 0.0, values[orderedPair(1, 2)], 1e-9)
	require.InDelta(t, 0.5, values[orderedPair(1, 3)], 1e-9)
	require.InDelta(t, 1.0, values[orderedPair(2, 3)], 1e-9)
}

func TestNormalizePairValuesDegenerateRange(t *testing.T) {
	values := map[requestPair]float64{
		orderedPair(1, 2): 7,
		orderedPair(1, 3): 7,
	}
	normalizePairValues(values)
	require.Zero(t, values[orderedPair(1, 2)])
	require.Zero(t, values[orderedPair(1, 3)])
}

func TestPowIndexBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		idx := powIndex(rng, 6, 17)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 17)
	}
}

func TestRandomRemovalRemovesExactlyQ(t *testing.T) {
	problem := buildLineProblem(t, 2, 6, 100, testParams())
	solution := fullyAssigned(t, problem)

	rng := rand.New(rand.NewSource(42))
	require.NoError(t, RandomRemoval(problem, solution, 3, rng))
	require.Equal(t, 3, solution.RequestBankSize())
	require.Len(t, solution.AssignedRequestIds(), 3)
}

func TestRandomRemovalClampsToAssigned(t *testing.T) {
	problem := buildLineProblem(t, 2, 2, 100, testParams())
	solution := fullyAssigned(t, problem)

	rng := rand.New(rand.NewSource(1))
	require.NoError(t, RandomRemoval(problem, solution, 10, rng))
	require.Equal(t, 2, solution.RequestBankSize())
}

func TestWorstRemovalRemovesQ(t *testing.T) {
	problem := buildLineProblem(t, 2, 6, 100, testParams())
	solution := fullyAssigned(t, problem)

	rng := rand.New(rand.NewSource(42))
	require.NoError(t, WorstRemoval(problem, solution, 2, rng))
	require.Equal(t, 2, solution.RequestBankSize())
}

func TestShawRemovalRemovesQ(t *testing.T) {
	problem := buildLineProblem(t, 2, 6, 100, testParams())
	solution := fullyAssigned(t, problem)

	rng := rand.New(rand.NewSource(42))
	require.NoError(t, ShawRemoval(problem, solution, 4, rng))
	require.Equal(t, 4, solution.RequestBankSize())
}

func TestRemovalDeterminism(t *testing.T) {
	run := func(seed int64) []int {
		problem := buildLineProblem(t, 2, 8, 100, testParams())
		solution := fullyAssigned(t, problem)
		rng := rand.New(rand.NewSource(seed))
		require.NoError(t, ShawRemoval(problem, solution, 4, rng))
		return solution.RequestBankIds()
	}

	require.Equal(t, run(99), run(99))
}
