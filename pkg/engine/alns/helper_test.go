package alns

import (
	"math"
	"testing"

	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/stretchr/testify/require"
)

func testParams() *parameters.Parameters {
	params := parameters.Default()
	params.RemoveLowerBound = 1
	params.Epsilon = 1.0
	return params
}

// buildLineProblem lays pickup/delivery pairs along the x axis with wide
// windows, one pair per 10 units, and wires a homogeneous fleet.
func buildLineProblem(t *testing.T, vehicleNum, pairNum int, capacity float64,
	params *parameters.Parameters) *datastructure.Problem {
	t.Helper()

	problem := datastructure.NewProblem(params)

	type coord struct {
		id   int
		x, y float64
	}
	coords := make([]coord, 0)

	for i := 0; i < pairNum; i++ {
		pickId := 2*i + 1
		delId := 2*i + 2
		base := float64(10 * (i + 1))
		require.NoError(t, problem.AddNode(datastructure.NewNode(pickId, base, 0,
			0, 100000, 1, 10)))
		require.NoError(t, problem.AddNode(datastructure.NewNode(delId, base+5, 0,
			0, 100000, 1, -10)))
		coords = append(coords, coord{id: pickId, x: base}, coord{id: delId, x: base + 5})
	}

	vehicleIds := make([]int, 0, vehicleNum)
	nextNodeId := 2*pairNum + 1
	for vehicleId := 1; vehicleId <= vehicleNum; vehicleId++ {
		startId := nextNodeId
		endId := nextNodeId + 1
		nextNodeId += 2
		for _, depotId := range []int{startId, endId} {
			require.NoError(t, problem.AddNode(datastructure.NewNode(depotId, 0, 0,
				0, 1000000, 0, 0)))
			coords = append(coords, coord{id: depotId})
		}
		require.NoError(t, problem.AddVehicle(datastructure.NewVehicle(vehicleId, capacity, 1, startId, endId)))
		vehicleIds = append(vehicleIds, vehicleId)
	}

	for i := 0; i < len(coords); i++ {
		for j := i + 1; j < len(coords); j++ {
			problem.SetDistance(coords[i].id, coords[j].id,
				math.Hypot(coords[i].x-coords[j].x, coords[i].y-coords[j].y))
		}
	}

	for i := 0; i < pairNum; i++ {
		require.NoError(t, problem.AddRequest(datastructure.NewRequest(i+1,
			2*i+1, 2*i+2, 10, vehicleIds)))
	}
	return problem
}

func fullyAssigned(t *testing.T, problem *datastructure.Problem) *datastructure.Solution {
	t.Helper()
	solution := datastructure.NewSolution(problem)
	for _, requestId := range problem.RequestIds() {
		ok, err := solution.InsertOptimalIntoAny(requestId)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return solution
}

func identityNoise() NoiseFunc {
	return func(cost float64) float64 { return cost }
}
