package twostage

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testParams() *parameters.Parameters {
	params := parameters.Default()
	params.RemoveLowerBound = 1
	params.Epsilon = 1.0
	params.IterationNum = 200
	params.Tau = 50
	params.Theta = 500
	return params
}

type nodeSpec struct {
	id                        int
	x, y                      float64
	earliest, latest, service float64
	load                      float64
}

// buildProblem wires customers, a fleet of co-located depot clones at the
// origin, and Euclidean distances.
func buildProblem(t *testing.T, params *parameters.Parameters, vehicleNum int,
	capacity float64, depotLatest float64, customers []nodeSpec, requests [][2]int) *datastructure.Problem {
	t.Helper()

	problem := datastructure.NewProblem(params)
	coords := make(map[int][2]float64)
	maxId := 0
	for _, spec := range customers {
		require.NoError(t, problem.AddNode(datastructure.NewNode(spec.id, spec.x, spec.y,
			spec.earliest, spec.latest, spec.service, spec.load)))
		coords[spec.id] = [2]float64{spec.x, spec.y}
		if spec.id > maxId {
			maxId = spec.id
		}
	}

	vehicleIds := make([]int, 0, vehicleNum)
	nextNodeId := maxId + 1
	for vehicleId := 1; vehicleId <= vehicleNum; vehicleId++ {
		startId := nextNodeId
		endId := nextNodeId + 1
		nextNodeId += 2
		for _, depotId := range []int{startId, endId} {
			require.NoError(t, problem.AddNode(datastructure.NewNode(depotId, 0, 0,
				0, depotLatest, 0, 0)))
			coords[depotId] = [2]float64{0, 0}
		}
		require.NoError(t, problem.AddVehicle(datastructure.NewVehicle(vehicleId, capacity, 1, startId, endId)))
		vehicleIds = append(vehicleIds, vehicleId)
	}

	ids := make([]int, 0, len(coords))
	for id := range coords {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := coords[ids[i]], coords[ids[j]]
			problem.SetDistance(ids[i], ids[j], math.Hypot(a[0]-b[0], a[1]-b[1]))
		}
	}

	for i, pair := range requests {
		pickNode := problem.GetNode(pair[0])
		require.NoError(t, problem.AddRequest(datastructure.NewRequest(i+1,
			pair[0], pair[1], pickNode.GetLoad(), vehicleIds)))
	}
	return problem
}

// three requests whose pickup windows close before any vehicle could
// chain two of them, forcing one vehicle per request
func exclusiveRequestsProblem(t *testing.T, params *parameters.Parameters, vehicleNum int) *datastructure.Problem {
	customers := []nodeSpec{
		{id: 1, x: 10, y: 0, earliest: 0, latest: 10, service: 1, load: 10},
		{id: 2, x: 12, y: 0, earliest: 0, latest: 1000, service: 1, load: -10},
		{id: 3, x: 0, y: 10, earliest: 0, latest: 10, service: 1, load: 10},
		{id: 4, x: 0, y: 12, earliest: 0, latest: 1000, service: 1, load: -10},
		{id: 5, x: -10, y: 0, earliest: 0, latest: 10, service: 1, load: 10},
		{id: 6, x: -12, y: 0, earliest: 0, latest: 1000, service: 1, load: -10},
	}
	requests := [][2]int{{1, 2}, {3, 4}, {5, 6}}
	return buildProblem(t, params, vehicleNum, 50, 2000, customers, requests)
}

func TestGrowFleetAddsVehiclesUntilFeasible(t *testing.T) {
	problem := exclusiveRequestsProblem(t, testParams(), 1)
	solution := datastructure.NewSolution(problem)

	driver := NewDriver(zap.NewNop(), rand.New(rand.NewSource(1)))
	_, err := driver.growFleet(solution)
	require.NoError(t, err)

	require.Zero(t, solution.RequestBankSize())
	require.Equal(t, 3, solution.NumberOfRoutes())
	require.Equal(t, 3, solution.GetProblem().NumberOfVehicles())
}

func TestShrinkFleetKeepsExclusiveRequestsApart(t *testing.T) {
	problem := exclusiveRequestsProblem(t, testParams(), 1)
	solution := datastructure.NewSolution(problem)

	driver := NewDriver(zap.NewNop(), rand.New(rand.NewSource(1)))
	best, err := driver.ShrinkFleet(solution)
	require.NoError(t, err)

	require.Zero(t, best.RequestBankSize())
	require.Equal(t, 3, best.NumberOfRoutes())
}

func TestShrinkFleetDropsIdleVehicles(t *testing.T) {
	// all four requests fit one vehicle, the declared fleet of three shrinks
	customers := []nodeSpec{
		{id: 1, x: 10, y: 0, earliest: 0, latest: 10000, service: 1, load: 10},
		{id: 2, x: 15, y: 0, earliest: 0, latest: 10000, service: 1, load: -10},
		{id: 3, x: 20, y: 0, earliest: 0, latest: 10000, service: 1, load: 10},
		{id: 4, x: 25, y: 0, earliest: 0, latest: 10000, service: 1, load: -10},
		{id: 5, x: 30, y: 0, earliest: 0, latest: 10000, service: 1, load: 10},
		{id: 6, x: 35, y: 0, earliest: 0, latest: 10000, service: 1, load: -10},
		{id: 7, x: 40, y: 0, earliest: 0, latest: 10000, service: 1, load: 10},
		{id: 8, x: 45, y: 0, earliest: 0, latest: 10000, service: 1, load: -10},
	}
	requests := [][2]int{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	problem := buildProblem(t, testParams(), 3, 100, 100000, customers, requests)
	solution := datastructure.NewSolution(problem)

	driver := NewDriver(zap.NewNop(), rand.New(rand.NewSource(1)))
	best, err := driver.ShrinkFleet(solution)
	require.NoError(t, err)

	require.Zero(t, best.RequestBankSize())
	require.Equal(t, 1, best.NumberOfRoutes())
	require.Equal(t, 1, best.GetProblem().NumberOfVehicles())
}

func TestGrowFleetConvergenceError(t *testing.T) {
	// the pickup window closes before any vehicle can arrive
	customers := []nodeSpec{
		{id: 1, x: 100, y: 0, earliest: 0, latest: 5, service: 1, load: 10},
		{id: 2, x: 105, y: 0, earliest: 0, latest: 10000, service: 1, load: -10},
	}
	requests := [][2]int{{1, 2}}
	problem := buildProblem(t, testParams(), 1, 50, 100000, customers, requests)
	solution := datastructure.NewSolution(problem)

	driver := NewDriver(zap.NewNop(), rand.New(rand.NewSource(1)))
	_, err := driver.ShrinkFleet(solution)
	require.Error(t, err)
	require.True(t, util.HasCode(err, util.ErrConvergence))
}

func TestSolveDeterministicUnderSeed(t *testing.T) {
	run := func() (float64, int) {
		problem := exclusiveRequestsProblem(t, testParams(), 1)
		driver := NewDriver(zap.NewNop(), rand.New(rand.NewSource(42)))
		best, err := driver.Solve(datastructure.NewSolution(problem))
		require.NoError(t, err)
		return best.ObjectiveCost(), best.NumberOfRoutes()
	}

	cost1, vehicles1 := run()
	cost2, vehicles2 := run()
	require.Equal(t, cost1, cost2)
	require.Equal(t, vehicles1, vehicles2)
}
